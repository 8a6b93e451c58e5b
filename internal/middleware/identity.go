package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/teamup-api/pkg/respond"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Identity извлекает личность вызывающего из заголовка X-User-ID.
// Сам заголовок проставляет внешний API-шлюз после проверки токена,
// здесь учетные данные не разбираются.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			respond.Error(w, r, http.StatusUnauthorized, "invalid user id")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity закрывает мутирующие маршруты от анонимных вызовов
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			respond.Error(w, r, http.StatusUnauthorized, "missing user identity")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
