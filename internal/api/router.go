// Package api is the development marketplace backend: a JSON API over the
// SQLite store serving the surface the frontend consumes.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/trznica/internal/logging"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.Middleware, middleware.Recoverer)

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db}
	balanceHandler := &BalanceHandler{DB: db}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public.
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Get("/items", itemsHandler.List)
	r.Get("/items/{id}", itemsHandler.Get)
	r.Get("/categories", itemsHandler.Categories)

	// Bearer token required.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))
		r.Get("/items/{id}/image", itemsHandler.GetImage)
		r.Post("/purchase/{id}", itemsHandler.Purchase)
		r.Get("/balance", balanceHandler.Get)
		r.Post("/balance", balanceHandler.Add)
	})

	return r
}
