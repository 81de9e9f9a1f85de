package middleware

import (
	"net/http"
	"strings"

	"github.com/jobtracker/jobtracker-backend/api/responses"
	pkgAuth "github.com/jobtracker/jobtracker-backend/pkg/auth"
	"github.com/jobtracker/jobtracker-backend/pkg/auth/session"
	"github.com/jobtracker/jobtracker-backend/pkg/config"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
)

type tokenParser func(cfg config.JWTConfig, token string) (*pkgAuth.AccessTokenClaims, error)

// Auth validates a bearer token, checks its session is still live and seeds
// the request context with the user and access ids.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, pkgAuth.ParseAccessToken, verifier, logg)
}

// RefreshAuth accepts expired tokens. The refresh token presented in the body
// is what proves the session, so no session lookup happens here.
func RefreshAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, pkgAuth.ParseAccessTokenAllowExpired, nil, logg)
}

func authenticate(cfg config.JWTConfig, parse tokenParser, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := parse(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			accessID := claims.AccessID()
			if accessID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), accessID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithAccessID(ctx, accessID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	// EventSource cannot set headers, so the stream endpoint also accepts a query token.
	if raw == "" && r.Method == http.MethodGet {
		return strings.TrimSpace(r.URL.Query().Get("access_token"))
	}
	return raw
}
