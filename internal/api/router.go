/**
 * @description
 * This file sets up the HTTP router for the engagement-service using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * logging, CORS, and authentication, and maps the routes to their
 * corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the engagement-service routes.
func NewRouter(h *Handler, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Engagement service is healthy"))
	})

	// Protected routes: every engagement operation is dietician-scoped.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))
		r.Use(RequireRole(RoleDietician))

		r.Post("/clients", h.handleCreateClient)
		r.Patch("/clients/{clientID}", h.handleUpdateClient)
		r.Delete("/clients/{clientID}", h.handleDeleteClient)
		r.Post("/clients/{clientID}/subscriptions", h.handleAssignPlan)
		r.Get("/clients/{clientID}/subscription", h.handleGetSubscription)
		r.Patch("/subscriptions/{subscriptionID}/payments", h.handleRecordPayment)
		r.Put("/subscriptions/{subscriptionID}/pause-state", h.handlePauseState)
		r.Get("/dashboard", h.handleDashboard)
	})

	return r
}
