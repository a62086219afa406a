package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qabot/internal/handlers"
	"qabot/internal/handlers/api"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Bot      handlers.Answerer
	Store    handlers.StoreInfo
	DB       handlers.Pinger     // Nil when Postgres is not used
	Gatherer prometheus.Gatherer // Nil disables /metrics
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	chatHandler := handlers.NewChatHandler(deps.Bot, s.Cfg)
	probeHandler := handlers.NewProbeHandler(deps.Store, deps.DB)
	answerHandler := api.NewAnswerHandler(deps.Bot, s.Cfg)

	// Probes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)

	if deps.Gatherer != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Chat
	s.App.Post("/ask", chatHandler.Ask)

	// JSON API
	apiGroup := s.App.Group("/api")
	apiGroup.Post("/answer", answerHandler.Answer)
}
