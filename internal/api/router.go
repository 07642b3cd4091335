package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(apiHandler *APIHandler, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(CORS(allowedOrigins))

	// All API routes live under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Stateless chat proxy
		r.Post("/chat", apiHandler.ChatHandler)

		// Conversation session API
		r.Post("/conversations", apiHandler.CreateConversationHandler)
		r.Get("/conversations", apiHandler.ListConversationsHandler)
		r.Get("/conversations/current", apiHandler.CurrentConversationHandler)
		r.Post("/conversations/clear", apiHandler.ClearCurrentConversationHandler)
		r.Post("/conversations/{conversationID}/select", apiHandler.SelectConversationHandler)
		r.Delete("/conversations/{conversationID}", apiHandler.DeleteConversationHandler)
		r.Post("/messages", apiHandler.PostMessageHandler)

		// Ancillary read endpoints
		r.Get("/dados-saude", apiHandler.HealthDataHandler)
		r.Get("/noticias-saude", apiHandler.NewsHandler)

		// Display-only profile record
		r.Get("/profile", apiHandler.GetProfileHandler)
		r.Put("/profile", apiHandler.PutProfileHandler)
		r.Delete("/profile", apiHandler.DeleteProfileHandler)
	})

	return r
}
