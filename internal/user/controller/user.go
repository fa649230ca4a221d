package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonHttp "github.com/tradeyard/storefront/internal/http"
	"github.com/tradeyard/storefront/internal/log"
	commonOtel "github.com/tradeyard/storefront/internal/otel"
	inErrors "github.com/tradeyard/storefront/internal/user/errors"
	"github.com/tradeyard/storefront/internal/user/otel"
	"github.com/tradeyard/storefront/internal/user/service"
	"github.com/tradeyard/storefront/user/pkg/request"
)

// CartMerger folds the anonymous session cart into the user's cart once
// credentials check out. Implemented by the cart service; failures are its
// own concern and never surface to the login response.
type CartMerger interface {
	MergeCartsOnLogin(c context.Context, userID uuid.UUID, sessionID string)
}

type UserController struct {
	service *service.UserService
	merger  CartMerger
}

func AttachUserController(router *mux.Router, service *service.UserService, merger CartMerger) {
	controller := UserController{service: service, merger: merger}

	sub := router.PathPrefix("/users").Subrouter()
	sub.HandleFunc("/register", controller.Register).Methods(http.MethodPost)
	sub.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
}

func (u UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "UserController Register").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding request body").Logger()
	reqBody := request.Register{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Object(log.KEY_REQUEST_BODY, reqBody).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "validating request body").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KEY_PROCESS, "registering user").Logger()
	logger.Info().Msg("registering user")
	c = logger.WithContext(c)
	user, err := u.service.Register(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrEmailExists) {
			statusCode = http.StatusBadRequest
		}
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("registered user")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully registered user",
		"data": map[string]interface{}{
			"user": user,
		},
	})
}

func (u UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "UserController Login").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "decoding request body").Logger()
	reqBody := request.Login{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Object(log.KEY_REQUEST_BODY, reqBody).Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "validating request body").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KEY_PROCESS, "logging in").Logger()
	logger.Info().Msg("logging in")
	c = logger.WithContext(c)
	token, userID, err := u.service.Login(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrUserNotFound) ||
			errors.Is(err, inErrors.ErrPasswordMismatch) {
			statusCode = http.StatusUnauthorized
		}
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KEY_USER_ID, userID.String()).Msg("logged in")

	// Best effort: a failed merge must never block a successful login.
	if sessionID := r.Header.Get(commonHttp.KEY_HEADER_SESSION_ID); sessionID != "" {
		logger = logger.With().
			Str(log.KEY_PROCESS, "merging session cart").
			Str(log.KEY_SESSION_ID, sessionID).
			Logger()
		logger.Info().Msg("merging session cart")
		u.merger.MergeCartsOnLogin(logger.WithContext(c), userID, sessionID)
	}

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully logged in",
		"data": map[string]interface{}{
			"token": token,
		},
	})
}
