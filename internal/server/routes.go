package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes returns the application router.
func SetupRoutes(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", h.ChatPage)
	r.Get("/health", h.Health)
	r.Get("/rooms", h.Rooms)
	r.Get("/ws", h.WebSocket)
	return r
}
