package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	historyHandler "github.com/nocodeinfolab/ledgersync/internal/http/history"
	"github.com/nocodeinfolab/ledgersync/internal/http/webhook"
)

func New(
	webhookV1 *webhook.Handler,
	historyV1 *historyHandler.Handler,
	webhookSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/webhook", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		if webhookSecret != "" {
			r.Use(RequireToken(webhookSecret))
		}

		webhookV1.Routes(r)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Route("/reconciliations", historyV1.Routes)
	})

	return router
}
