package http

import (
	"io"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

type Handlers struct {
	Calendar   CalendarHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Payroll    PayrollHandler
	Events     EventHandler
}

func NewRouter(cfg RouterConfig, logger *slog.Logger, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE clients cannot send headers; the stream checks its own token.
		r.Get("/events/stream", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/resolve", h.Calendar.Resolve)
				r.Get("/non-working", h.Calendar.NonWorkingDays)

				// Admin only
				r.With(middleware.RequireAdmin).Put("/entries", h.Calendar.UpsertEntry)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/my/aggregate", h.Attendance.GetMyAggregate)

				r.With(middleware.RequireManager).Get("/employees/{id}/aggregate", h.Attendance.GetEmployeeAggregate)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/applications", func(r chi.Router) {
					r.Post("/", h.Leave.Submit)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Leave.GetApplication)
						r.Post("/approve", h.Leave.Approve)
						r.Post("/reject", h.Leave.Reject)
						r.Post("/cancel", h.Leave.Cancel)
					})
				})
				r.Get("/balance", h.Leave.GetMyBalance)

				r.With(middleware.RequireManager).Get("/employees/{id}/balance", h.Leave.GetEmployeeBalance)
			})

			r.Route("/payroll", func(r chi.Router) {
				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/recompute", h.Payroll.RecomputeMonth)
					r.Post("/employees/{id}/recompute", h.Payroll.RecomputeEmployee)
				})

				r.Get("/employees/{id}", h.Payroll.GetSummary)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.Events.Recent)
				r.Get("/token", h.Events.GetSSEToken)
			})
		})
	})
	return r
}

// NewLogger builds the process logger in the ECS layout used for requests.
func NewLogger(appName, env string, level slog.Level, w io.Writer) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("env", env),
	)
}
