package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tradeyard/storefront/internal/common"
	"github.com/tradeyard/storefront/internal/config"
	inErrors "github.com/tradeyard/storefront/internal/errors"
	inHttp "github.com/tradeyard/storefront/internal/http"
	"github.com/tradeyard/storefront/internal/log"
)

// Auth parses a bearer token when one is present and attaches it to the
// request context. Requests without an Authorization header pass through
// untouched so anonymous session carts keep working; a header that fails
// verification is rejected.
func Auth(cfg config.Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KEY_TAG, "middleware Auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			token = strings.TrimPrefix(token, "bearer ")
			jwtToken, err := common.VerifyToken(c, token, cfg)
			if err != nil {
				logger.Error().Err(err).Msg(inErrors.ErrTokenInvalid.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = common.AttachJwtTokenToContext(c, jwtToken)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
