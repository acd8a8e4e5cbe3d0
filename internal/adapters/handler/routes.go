package handler

import (
	"net/http"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/adapters/middleware"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/domain"
)

// Instrumenter wraps a route handler, typically to record metrics.
type Instrumenter interface {
	Instrument(route string, next http.Handler) http.Handler
}

type Routes struct {
	Auth         *AuthHandler
	Children     *ChildHandler
	History      *HistoryHandler
	Vaccinations *VaccinationHandler
	Health       *HealthHandler
	Middleware   *middleware.AuthMiddleware
	Metrics      http.Handler
	Instrumenter Instrumenter
}

var (
	anyRole    = []domain.Role{domain.RoleDoctor, domain.RolePatient}
	doctorOnly = []domain.Role{domain.RoleDoctor}
)

// NewServeMux registers every endpoint. Register and login are the only
// routes reachable without a session.
func NewServeMux(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		if rt.Instrumenter != nil {
			mux.Handle(pattern, rt.Instrumenter.Instrument(pattern, h))
			return
		}
		mux.Handle(pattern, h)
	}
	auth := func(roles []domain.Role, h http.HandlerFunc) http.HandlerFunc {
		return rt.Middleware.RequireRole(roles, h)
	}

	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /health/ready", rt.Health.Ready)
		mux.HandleFunc("GET /health/live", rt.Health.Live)
	}
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	handle("POST /register", rt.Auth.Register)
	handle("POST /login", rt.Auth.Login)
	handle("POST /logout", auth(anyRole, rt.Auth.Logout))
	handle("GET /me", auth(anyRole, rt.Auth.Me))

	handle("GET /schedule", auth(anyRole, rt.Vaccinations.Schedule))

	handle("POST /children/application-number", auth(doctorOnly, rt.Children.GenerateApplicationNumber))
	handle("GET /children", auth(anyRole, rt.Children.List))
	handle("GET /children/{number}", auth(anyRole, rt.Children.Get))
	handle("PUT /children/{number}", auth(doctorOnly, rt.Children.Save))
	handle("POST /children/{number}/delete-request", auth(doctorOnly, rt.Children.RequestDelete))
	handle("DELETE /children/{number}", auth(doctorOnly, rt.Children.Delete))

	handle("GET /children/{number}/visits", auth(anyRole, rt.History.List))
	handle("POST /children/{number}/visits", auth(doctorOnly, rt.History.Add))
	handle("GET /visits/{id}", auth(anyRole, rt.History.Get))
	handle("PUT /visits/{id}", auth(doctorOnly, rt.History.Update))
	handle("POST /visits/{id}/retract", auth(doctorOnly, rt.History.Retract))

	handle("GET /children/{number}/vaccinations", auth(anyRole, rt.Vaccinations.List))
	handle("GET /children/{number}/vaccinations/{vaccine}", auth(anyRole, rt.Vaccinations.Status))
	handle("PUT /children/{number}/vaccinations/{vaccine}", auth(doctorOnly, rt.Vaccinations.MarkDone))
	handle("DELETE /children/{number}/vaccinations/{vaccine}", auth(doctorOnly, rt.Vaccinations.MarkUndone))

	return mux
}
