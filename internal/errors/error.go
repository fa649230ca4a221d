package errors

import (
	"errors"
)

var (
	ErrEmptyAuth         = errors.New("missing authorization")
	ErrEmptySubject      = errors.New("missing subject")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrNoCartOwner       = errors.New("missing session id or authorization")
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartItemMissing   = errors.New("cart item not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrOutOfStock        = errors.New("inventory is out of stock")
)
