// Command kvserver serves a key/value store over HTTP. Every request is
// funneled through one concurrent.Object that owns the backend connection.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KjellKod/concurrent"
	"github.com/KjellKod/concurrent/internal/config"
	"github.com/KjellKod/concurrent/internal/logger"
	"github.com/KjellKod/concurrent/pkg/metrics"
	"github.com/KjellKod/concurrent/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("kvserver exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		"addr", cfg.Server.Addr,
		"backend", cfg.Store.Backend,
		"log_level", cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	obs, err := metrics.New(cfg.Server.MetricsNamespace, reg)
	if err != nil {
		return err
	}

	backend, release, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("backend release failed", "error", err)
		}
	}()

	kv := store.Open(backend,
		concurrent.WithName("kv-"+cfg.Store.Backend),
		concurrent.WithLogger(log),
		concurrent.WithObserver(concurrent.NewCompositeObserver(obs, concurrent.NewLoggingObserver(log))),
	)

	app := &application{
		store:    kv,
		logger:   log,
		gatherer: reg,
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = kv.Close()
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", "error", err)
	}

	// Drain writes accepted before shutdown, then release the connection.
	pending := kv.Pending()
	if err := kv.Close(); err != nil {
		return err
	}
	log.Info("store closed", "drained", pending)
	return nil
}
