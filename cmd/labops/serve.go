package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/labops/go-sdk/pkg/alerts"
	"github.com/labops/go-sdk/pkg/config"
	"github.com/labops/go-sdk/pkg/dataset"
	"github.com/labops/go-sdk/pkg/dq"
	"github.com/labops/go-sdk/pkg/logger"
	"github.com/labops/go-sdk/pkg/metrics"
	"github.com/labops/go-sdk/pkg/server"
	"github.com/labops/go-sdk/pkg/server/ginadapter"
	"github.com/labops/go-sdk/pkg/types"
	"github.com/labops/go-sdk/pkg/watcher"
)

var (
	serveConfigPath  string
	serveDatasetPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the data quality and metrics HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "configuration YAML file")
	serveCmd.Flags().StringVarP(&serveDatasetPath, "data", "d", "", "specimen CSV to preload for the metrics endpoints")
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	zapConfig := logger.DefaultZapConfig()
	zapLogger, err := zapConfig.Build()
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	log := logger.NewZapLogger(zapLogger, &types.LoggerConfig{
		MinLevel: types.LogLevel(cfg.LogLevel),
	})
	logger.SetDefaultLogger(log)
	defer func() { _ = log.Flush() }()

	catalog := dq.NewCatalog()
	if cfg.RulesPath != "" {
		if _, err := catalog.LoadRulesFile(cfg.RulesPath); err != nil {
			return errors.Wrap(err, "load rules")
		}
	} else {
		catalog.AddRules(dq.SampleLabRules()...)
	}

	registry := prometheus.NewRegistry()
	notifier := alerts.NewNotifier(alerts.NotifierOptions{
		WebhookURL:   cfg.Alerts.WebhookURL,
		DryRun:       cfg.Alerts.DryRun,
		DashboardURL: cfg.Alerts.DashboardURL,
		Logger:       logger.New("alerts"),
	})

	srv := server.New(server.Options{
		Logger:       logger.New("server"),
		AccessLogger: zapLogger,
		Registry:     registry,
		Collector:    metrics.NewPrometheusCollector(registry),
		Catalog:      catalog,
		SLAHours:     cfg.SLAHours,
		Notifier:     notifier,
		RateLimit:    cfg.Server.RateLimit,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	if serveDatasetPath != "" {
		ds, err := dataset.ReadCSVFile(serveDatasetPath)
		if err != nil {
			return errors.Wrap(err, "preload dataset")
		}
		srv.SetDataset(ds)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RulesPath != "" {
		w, err := watcher.New(watcher.Options{
			Path:    cfg.RulesPath,
			Catalog: catalog,
			Logger:  logger.New("watcher"),
		})
		if err != nil {
			return errors.Wrap(err, "watch rules")
		}
		go func() { _ = w.Run(ctx) }()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	ginadapter.New(srv).RegisterRoutes(engine)

	httpServer := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", types.LogField{Key: "address", Value: cfg.Server.ListenAddr})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
