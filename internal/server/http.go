// Package server wires the HTTP surface of the API service.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nbkbattle/nbk-battle/internal/battle"
	"github.com/nbkbattle/nbk-battle/internal/catalog"
	"github.com/nbkbattle/nbk-battle/internal/config"
	"github.com/nbkbattle/nbk-battle/internal/logging"
	"github.com/nbkbattle/nbk-battle/internal/results"
)

// Handlers collects the endpoint groups mounted on the API server.
type Handlers struct {
	Battle   *battle.HTTPHandlers
	BattleWS *battle.WSHandler
	Catalog  *catalog.HTTPHandlers
	Results  *results.HTTPHandlers
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	handlers Handlers,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if handlers.Catalog != nil {
		mux.HandleFunc("/v1/categories", handlers.Catalog.ListCategories)
	}

	if handlers.Battle != nil {
		mux.HandleFunc("/v1/drafts", handlers.Battle.CreateDraft)
		mux.HandleFunc("/v1/drafts/{id}", handlers.Battle.GetDraft)
		mux.HandleFunc("/v1/drafts/{id}/picks", handlers.Battle.Pick)
		mux.HandleFunc("/v1/sessions", handlers.Battle.CreateSession)
		mux.HandleFunc("/v1/sessions/{id}/board", handlers.Battle.GetBoard)
		mux.HandleFunc("/v1/sessions/{id}/cells/open", handlers.Battle.OpenCell)
		mux.HandleFunc("/v1/sessions/{id}/timer", handlers.Battle.SetTimer)
		mux.HandleFunc("/v1/sessions/{id}/reveal", handlers.Battle.Reveal)
		mux.HandleFunc("/v1/sessions/{id}/resolve", handlers.Battle.Resolve)
		mux.HandleFunc("/v1/sessions/{id}/powerups/use", handlers.Battle.UsePowerUp)
		mux.HandleFunc("/v1/sessions/{id}/finish", handlers.Battle.Finish)
		mux.HandleFunc("/v1/sessions/{id}", handlers.Battle.DeleteSession)
	}

	if handlers.BattleWS != nil {
		mux.HandleFunc("/ws/sessions", handlers.BattleWS.HandleWebSocket)
	} else {
		mux.HandleFunc("/ws/sessions", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "WebSocket handler not yet integrated", http.StatusNotImplemented)
		})
	}

	if handlers.Results != nil {
		mux.HandleFunc("/v1/results/recent", handlers.Results.Recent)
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsHandler(mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
