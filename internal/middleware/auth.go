package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"

	"go.uber.org/zap"
)

const PrincipalKey contextKey = "principal"

// Authenticator разрешает bearer-токен в Principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.Principal, error)
}

// Auth требует валидный bearer-токен и кладёт Principal в контекст запроса.
// Без токена или с невалидным/просроченным - 401, до хендлера запрос не доходит.
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, r, "требуется заголовок Authorization")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, r, "ожидается формат Bearer <token>")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				unauthorized(w, r, "пустой токен")
				return
			}

			principal, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn("HTTP: Невалидный токен",
					zap.Error(err),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, r, "невалидный или просроченный токен")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetPrincipal(ctx context.Context) (user.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(user.Principal)
	return principal, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}
