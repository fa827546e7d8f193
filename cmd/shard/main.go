// Command shard runs one shard process: it opens its backing mmap files,
// builds the graph engine over them, and serves the RPC surface until
// signaled to stop.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clusograph/shard/pkg/api"
	"github.com/clusograph/shard/pkg/config"
	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/logging"
	"github.com/clusograph/shard/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, overrides defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.ErrorLog("failed to load config", logging.Error(err))
		os.Exit(1)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel)).
		With(logging.Component("shard"), logging.String("shard_name", cfg.Name))

	logger.Info("opening storage", logging.Path(cfg.DataDir))
	store, err := storage.Open(cfg.DataDir, cfg.Name)
	if err != nil {
		logger.Error("failed to open storage", logging.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	stats := store.Statistics()
	logger.Info("storage opened",
		logging.Uint64("nodes_created", stats.NodesCreated),
		logging.Uint64("edges_created", stats.EdgesCreated),
	)

	maxVisited := cfg.MaxVisitedQueries
	if maxVisited <= 0 {
		maxVisited = 4096
	}
	engine := graphengine.New(store, maxVisited)

	server := api.NewServer(engine, cfg, logger)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", logging.Error(err))
		}
	}()

	logger.Info("listening", logging.String("addr", cfg.ListenAddr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}

	logger.Info("shard exited")
}
