package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/auth"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/cache"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/config"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/handler"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/hub"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/registry"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/service"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/store"
	"github.com/Igorithmltd/muta-app-backend-sub001/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(log.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: cfg.Log.ServiceName,
	})
	logger := log.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting relay")

	if cfg.Auth.Secret == "" {
		logger.Fatal().Msg("auth.secret is required")
	}
	verifier := auth.NewJWTVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)

	// Message store
	msgStore, err := newMessageStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to initialize message store")
	}
	defer msgStore.Close()
	logger.Info().Str("driver", cfg.Store.Driver).Msg("message store ready")

	// Optional recent-message cache
	var recent *cache.RecentMessageCache
	if cfg.Redis.Enabled {
		recent, err = cache.NewRecentMessageCache(cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Str("address", cfg.Redis.Address).Msg("failed to connect to redis")
		}
		defer recent.Close()
		logger.Info().Str("address", cfg.Redis.Address).Msg("recent-message cache ready")
	}

	// Hub and registry
	wsHub := hub.NewHub()
	go wsHub.Run()

	userRegistry := registry.NewInMemoryRegistry()

	// Relay service
	relaySvc := service.NewRelayService(wsHub, userRegistry, msgStore, recent)

	// Handlers
	wsHandler := handler.NewWSHandler(wsHub, relaySvc, verifier, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(userRegistry, wsHub)

	router := mux.NewRouter()
	wsHandler.RegisterRoutes(router)
	httpHandler.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("relay listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down relay")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("relay stopped")
}

func newMessageStore(cfg *config.Config) (store.MessageStore, error) {
	switch cfg.Store.Driver {
	case "cassandra":
		return store.NewCassandraStore(cfg.Cassandra)
	case "kafka":
		return store.NewKafkaStore(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
