package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
)

// RequireRole admits callers holding one of roles.
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: user role is '%s'", actor.Role))
		})
	}
}

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return RequireRole(jwt.RoleManager, jwt.RoleAdmin)(next)
}

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(jwt.RoleAdmin)(next)
}

// CanViewEmployee reports whether actor may read employeeID's records.
func CanViewEmployee(actor Actor, employeeID string) bool {
	return actor.EmployeeID == employeeID || actor.Role == jwt.RoleManager || actor.Role == jwt.RoleAdmin
}
