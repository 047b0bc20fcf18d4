package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"supplier-match/internal/config"
	"supplier-match/internal/matching"
	"supplier-match/internal/metrics"
	"supplier-match/internal/middleware"
	recHnd "supplier-match/internal/reconcile/handler"
	"supplier-match/server/http/handlers"
)

// NewRouter — rec может быть nil (метрики выключены), тогда /metrics не монтируется.
func NewRouter(cfg config.Config, logger zerolog.Logger, m *matching.Matcher, rec *metrics.Recorder) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit -> ratelimit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) << 20))

	// health-check и метрики без лимита запросов
	r.Get("/health", handlers.Health)
	if rec != nil {
		r.Get("/metrics", rec.Handler().ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

		var recorder recHnd.Recorder
		if rec != nil {
			recorder = rec
		}
		r.Post("/reconcile", recHnd.Reconcile(cfg, logger, m, recorder))

		r.Route("/match", func(r chi.Router) {
			r.Post("/tokenize", recHnd.Tokenize(m))
			r.Post("/similarity", recHnd.Similarity(m))
		})
	})

	return r
}
