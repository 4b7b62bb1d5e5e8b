package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"contact-service/internal/httputil"
)

type contextKey string

// SubjectKey is the context key for the token subject
const SubjectKey contextKey = "subject"

// AdminMiddleware requires a bearer token carrying the admin role
func AdminMiddleware(secret []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				logger.WarnContext(r.Context(), "missing bearer token", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := ValidateToken(secret, raw)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid token", "error", err)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if claims.Role != RoleAdmin {
				logger.WarnContext(r.Context(), "token without admin role", "subject", claims.Subject)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject extracts the token subject from context
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}
