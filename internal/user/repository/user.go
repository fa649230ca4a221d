package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	inErrors "github.com/tradeyard/storefront/internal/user/errors"
)

type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InsertUserParams struct {
	Username string
	Email    string
	Password string
}

type Store interface {
	InsertUser(c context.Context, param InsertUserParams) (User, error)
	FindUserByEmail(c context.Context, email string) (*User, error)
}

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ Store = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const uniqueViolation = "23505"

func (r *UserRepository) InsertUser(
	c context.Context,
	param InsertUserParams,
) (User, error) {
	user := User{}
	err := r.pool.QueryRow(
		c,
		`INSERT INTO users (id, username, email, password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, username, email, password, created_at, updated_at`,
		uuid.New(), param.Username, param.Email, param.Password,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, inErrors.ErrEmailExists
		}
		return User{}, err
	}
	return user, nil
}

func (r *UserRepository) FindUserByEmail(
	c context.Context,
	email string,
) (*User, error) {
	user := User{}
	err := r.pool.QueryRow(
		c,
		`SELECT id, username, email, password, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
