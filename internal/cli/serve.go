package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/feedlog/internal/api"
	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/metrics"
)

type ServeCmd struct {
	Address string `help:"Listen address, overriding the config file."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	cfg := ctx.Config.Server
	if c.Address != "" {
		cfg.Address = c.Address
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	ctx.Service.Subscribe(metrics.ObserveFeedingEvent)
	ctx.PerformAutomaticBackup()

	srv := api.NewServer(cfg, ctx.Service, ctx.Store)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.GracefulTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
