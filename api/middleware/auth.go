package middleware

import (
	"net/http"
	"strings"

	"github.com/gestrans/gestrans-backend/api/responses"
	pkgAuth "github.com/gestrans/gestrans-backend/pkg/auth"
	"github.com/gestrans/gestrans-backend/pkg/config"
	pkgerrors "github.com/gestrans/gestrans-backend/pkg/errors"
	"github.com/gestrans/gestrans-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with its subject and role.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithSubject(r.Context(), claims.Subject)
			ctx = WithRole(ctx, claims.Role)
			if logg != nil {
				ctx = logg.WithSubject(ctx, claims.Subject)
				ctx = logg.WithField(ctx, "actor_role", string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
