package main

import (
	"fmt"
	"net/http"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/controllers"
	"github.com/blogem/expenseflow/metrics"
	appmiddleware "github.com/blogem/expenseflow/middleware"
)

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, auth appmiddleware.Authenticator, m *metrics.Metrics, logger *zap.Logger, secureCookies bool) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(appmiddleware.RequestLogger(logger, m))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second)) // 60 second timeout for SSO callbacks
	r.Use(middleware.Compress(5, "application/json", "text/csv"))

	r.Handle("/metrics", m.Handler())

	var sessionHandler func(http.Handler) http.Handler
	if ctrl.Auth.SSOEnabled() {
		// Session middleware holds the SSO state between login and callback
		handler, err := session.Sessioner(session.Options{
			Provider:       "memory",
			ProviderConfig: "",
			CookieName:     "expenseflow_sso",
			Secure:         secureCookies,
			Gclifetime:     600,
			Maxlifetime:    600,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session: %w", err)
		}
		sessionHandler = handler
	}

	r.Route("/api", func(r chi.Router) {
		// PUBLIC ROUTES (no authentication required)
		r.Get("/health", controllers.Health)
		r.Post("/auth/register", ctrl.Auth.Register)
		r.Post("/auth/login", ctrl.Auth.Login)

		if sessionHandler != nil {
			r.With(sessionHandler).Get("/auth/sso/login", ctrl.Auth.SSOLogin)
			r.With(sessionHandler).Get("/auth/sso/callback", ctrl.Auth.SSOCallback)
		}

		// PROTECTED ROUTES (authentication required)
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireAuth(auth))

			r.Get("/auth/me", ctrl.Auth.Me)

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", ctrl.Expenses.Create)
				r.Get("/mine", ctrl.Expenses.Mine)
				r.Get("/pending-approvals", ctrl.Expenses.PendingApprovals)
				r.Get("/stats", ctrl.Expenses.Stats)
				r.Get("/search", ctrl.Expenses.Search)
				r.Get("/{id}", ctrl.Expenses.Get)
				r.Patch("/{id}/status", ctrl.Expenses.UpdateStatus)
				r.Get("/{id}/receipt", ctrl.Expenses.Receipt)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", ctrl.Users.List)
				r.Post("/", ctrl.Users.Create)
				r.Get("/team", ctrl.Users.Team)
				r.Get("/by-role/{role}", ctrl.Users.ByRole)
				r.Get("/{id}", ctrl.Users.Get)
				r.Put("/{id}/manager", ctrl.Users.AssignManager)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/activity", ctrl.Reports.Activity)
				r.Get("/export", ctrl.Reports.Export)
			})
		})
	})

	return r, nil
}
