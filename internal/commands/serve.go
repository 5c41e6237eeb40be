package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/config"
	"github.com/agewise-dev/agewise/internal/connections"
	"github.com/agewise-dev/agewise/internal/jobs"
	"github.com/agewise-dev/agewise/internal/logger"
	"github.com/agewise-dev/agewise/internal/report"
	"github.com/agewise-dev/agewise/internal/server"
	"github.com/agewise-dev/agewise/internal/source"
)

func newServeCommand() *cobra.Command {
	var configPath string
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the report API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, dev)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "agewise.yaml", "config file path")
	cmd.Flags().BoolVar(&dev, "dev", false, "use human-readable console logging")

	return cmd
}

func runServe(configPath string, dev bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := buildLogger(dev)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := connections.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer store.Close()

	direct := source.NewClient(cfg.Provider.BaseURL, time.Duration(cfg.Provider.Timeout), log)

	var cached report.Source
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		cached = source.NewCached(direct, rdb, log)
	}

	jobStore := jobs.NewStore()
	queue := jobs.NewQueue(cfg.Server.QueueSize, jobStore)

	srv := server.New(server.Options{
		Direct:      direct,
		Cached:      cached,
		Connections: store,
		Queue:       queue,
		JobStore:    jobStore,
		Log:         log,
		OutputDir:   cfg.Report.OutputDir,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx, cfg.Server.WorkerCount, srv.RunReport)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("queue shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return logger.NewDevelopment("agewise")
	}
	return logger.New("agewise")
}
