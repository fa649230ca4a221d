package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradeyard/storefront/internal/config"
	"github.com/tradeyard/storefront/internal/constants"
	"github.com/tradeyard/storefront/internal/log"
	commonOtel "github.com/tradeyard/storefront/internal/otel"
	inErrors "github.com/tradeyard/storefront/internal/user/errors"
	"github.com/tradeyard/storefront/internal/user/otel"
	"github.com/tradeyard/storefront/internal/user/repository"
	"github.com/tradeyard/storefront/user/pkg/request"
	"github.com/tradeyard/storefront/user/pkg/response"
)

const tokenLifetime = 30 * time.Minute

type UserService struct {
	store  repository.Store
	config config.Application
}

func NewUserService(store repository.Store, config config.Application) UserService {
	return UserService{store: store, config: config}
}

func (s UserService) Register(
	c context.Context,
	param request.Register,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "UserService Register").
		Str(log.KEY_EMAIL, param.Email).
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KEY_PROCESS, "inserting user").Logger()
	logger.Info().Msg("inserting user")
	user, err := s.store.InsertUser(c, repository.InsertUserParams{
		Username: param.Username,
		Email:    param.Email,
		Password: string(hashed),
	})
	if err != nil {
		err = fmt.Errorf("failed inserting user with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Str(log.KEY_USER_ID, user.ID.String()).Msg("inserted user")

	return response.FromRepository(user), nil
}

// Login verifies credentials and issues a signed token. The user id is
// returned alongside so the caller can fold the anonymous session cart into
// the user's cart before responding.
func (s UserService) Login(
	c context.Context,
	param request.Login,
) (string, uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "UserService Login").
		Str(log.KEY_EMAIL, param.Email).
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "finding user by email").Logger()
	logger.Info().Msg("finding user by email")
	user, err := s.store.FindUserByEmail(c, param.Email)
	if err != nil {
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", uuid.Nil, err
	}
	if user == nil {
		commonOtel.RecordError(inErrors.ErrUserNotFound, span)
		logger.Error().Err(inErrors.ErrUserNotFound).Msg("user not found")
		return "", uuid.Nil, inErrors.ErrUserNotFound
	}
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KEY_PROCESS, "verifying password").Logger()
	logger.Info().Msg("verifying password")
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password))
	if err != nil {
		commonOtel.RecordError(inErrors.ErrPasswordMismatch, span)
		logger.Error().Err(inErrors.ErrPasswordMismatch).Msg("password mismatch")
		return "", uuid.Nil, inErrors.ErrPasswordMismatch
	}
	logger.Info().Msg("verified password")

	logger = logger.With().Str(log.KEY_PROCESS, "signing token").Logger()
	logger.Info().Msg("signing token")
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{constants.AUDIENCE_CUSTOMER},
		Issuer:    constants.APP_STOREFRONT_SERVICE,
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", uuid.Nil, err
	}
	logger.Info().Msg("signed token")

	return signed, user.ID, nil
}
