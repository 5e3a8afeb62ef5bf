package middleware

import (
	"net/http"

	"github.com/angelmondragon/courierdesk-backend/api/responses"
	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
)

// RequireRole rejects requests whose token does not carry role.
func RequireRole(role enums.MemberRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(role) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
