package middleware

import (
	"encoding/json"
	"net/http"

	"hexagonal-todo/pkg/auth"
	"hexagonal-todo/pkg/common"

	"go.uber.org/zap"
)

// Authenticate validates the bearer token and puts its subject in the
// request context. A nil validator disables authentication and the
// owner comes from the request body.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			claims, err := validator.ValidateToken(header)
			if err != nil {
				logger.Debug("Rejected token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				respondUnauthorized(w, err.Error())
				return
			}

			ctx := common.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="todo"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    http.StatusUnauthorized,
	})
}
