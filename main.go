package main

import (
	"bitwise74/devdoc-api/app"
	"bitwise74/devdoc-api/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := app.MakeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	d, err := app.NewDeps(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.App.SweepNow {
		n, err := d.Janitor.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("failed to sweep orphaned uploads, %w", err)
		}

		zap.L().Info("Sweep finished", zap.Int("removed", n))
		return nil
	}

	if err := d.Janitor.Start(cfg.Storage.SweepSchedule); err != nil {
		return err
	}
	defer d.Janitor.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Host.Port),
		Handler:           app.NewRouter(ctx, d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr), zap.Bool("tls", cfg.Host.SSL.Enabled))

		if cfg.Host.SSL.Enabled {
			errCh <- srv.ListenAndServeTLS(cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
			return
		}

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly, %w", err)
	}

	return nil
}
