package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"romportal/pkg/requestcontext"
)

// AsActor returns middleware that stamps every request with an authenticated
// dashboard user, standing in for the auth middleware in handler tests.
func AsActor(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithUserID(r.Context(), userID)
			if role != "" {
				ctx = requestcontext.WithUserRole(ctx, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
