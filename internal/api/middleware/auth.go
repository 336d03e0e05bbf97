package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/api/services"
	"github.com/rohits-web03/stashbox/internal/utils"
)

type contextKey string

const UserIDKey contextKey = "userID"

// UserIDFromContext returns the ID of the user the request was authenticated as.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Auth rejects requests without a valid session cookie.
func Auth(sessions *services.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie("token")
			if err != nil {
				unauthorized(w)
				return
			}

			userID, err := sessions.Parse(cookie.Value)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
}
