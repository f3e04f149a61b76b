package middleware

import (
	"net/http"

	"github.com/strataform/strataform-backend/api/responses"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/logger"
)

// RequireAdminRole gates a route on a minimum back-office role.
func RequireAdminRole(required enums.AdminRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := AdminRoleFromContext(r.Context())
			if !role.AtLeast(required) {
				err := pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role").
					WithDetails(map[string]string{"required_role": required.String()})
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
