package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
)

// actorFrom returns the authenticated caller, writing 401 when absent.
func actorFrom(w http.ResponseWriter, r *http.Request) (middleware.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return middleware.Actor{}, false
	}
	return actor, true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// periodFromQuery reads ?year=&month=, defaulting to the current month.
func periodFromQuery(r *http.Request, now time.Time) (year, month int) {
	return getIntQueryParam(r, "year", now.Year()), getIntQueryParam(r, "month", int(now.Month()))
}

// optionalQuery returns nil for an absent parameter.
func optionalQuery(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}
