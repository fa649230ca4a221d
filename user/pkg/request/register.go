package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Register struct {
	Username string `validate:"required"          json:"username"`
	Email    string `validate:"required,email"    json:"email"`
	Password string `validate:"required,min=8"    json:"password"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("username", r.Username)
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R Register
	return json.Marshal(R(r))
}
