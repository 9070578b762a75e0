package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	chathandler "github.com/parleychat/parley/internal/handler/chat"
	modelshandler "github.com/parleychat/parley/internal/handler/models"
	streamhandler "github.com/parleychat/parley/internal/handler/stream"
	"github.com/parleychat/parley/internal/middleware"
	"github.com/parleychat/parley/internal/model/catalog"
	"github.com/parleychat/parley/internal/service/turn"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(logger zerolog.Logger, s store.Store, models catalog.Store, runner *turn.Runner) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	chatHandler := chathandler.New(s, models)
	modelsHandler := modelshandler.New(models)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		modelsHandler.RegisterRoutes(api)

		if runner != nil {
			streamHandler := streamhandler.New(runner)
			streamHandler.RegisterRoutes(api)
		} else {
			api.Post("/chat", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "model streaming unavailable")
			})
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
