/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: One logrus line per request
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the form frontend

ROUTE GROUPS:
  /api/session/*   Edit-mode login/logout
  /api/period      Pay-period dates
  /api/categories  Line item categories
  /api/workers/*   Roster, attendance, line items, salary
  /api/payroll/*   Whole-roster payslips and export
  /api/scenarios/* Demo data sets

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", EditTokenHeader},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Get("/period", h.GetPeriod)
		r.Get("/categories", h.ListCategories)

		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetWorker)
				r.Put("/", h.UpdateWorker)
				r.Delete("/", h.DeleteWorker)
				r.Get("/attendance", h.GetAttendance)
				r.Post("/attendance/{date}/toggle", h.ToggleAttendance)
				r.Get("/line-items", h.GetLineItems)
				r.Put("/line-items/{category}", h.PutLineItem)
				r.Get("/salary", h.GetSalary)
			})
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/", h.GetPayroll)
			r.Get("/export", h.ExportPayroll)
		})
	})

	return r
}
