package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// Actor is the authenticated caller of a request.
type Actor struct {
	EmployeeID string
	Role       jwt.Role
}

// AuthRequired rejects requests without a valid access token and stores the
// caller's identity on the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.Unauthorized(w, "Invalid token")
				return
			}

			employeeID, ok := claims["employee_id"].(string)
			if !ok || employeeID == "" {
				response.Unauthorized(w, "Employee ID not found in token")
				return
			}

			role, _ := claims["role"].(string)
			if !jwt.Role(role).IsValid() {
				response.Forbidden(w, "Unknown role")
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, Actor{EmployeeID: employeeID, Role: jwt.Role(role)})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromContext returns the caller stored by AuthRequired.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
