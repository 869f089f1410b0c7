package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/frasal/image_describer/internal/config"
	v1 "github.com/frasal/image_describer/internal/controller/http/v1"
	"github.com/frasal/image_describer/internal/describe"
	"github.com/frasal/image_describer/internal/orchestrator"
	"github.com/frasal/image_describer/internal/report"
	"github.com/frasal/image_describer/internal/storage"
	"github.com/frasal/image_describer/internal/tracker"
	"golang.org/x/sync/errgroup"
)

const bucketCheckTimeout = 10 * time.Second

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting app",
		slog.String("temp_dir", a.cfg.App.TempDirectory),
		slog.String("storage_endpoint", a.cfg.Storage.Endpoint),
		slog.String("storage_bucket", a.cfg.Storage.Bucket),
		slog.String("describe_url", a.cfg.Describe.URL),
	)

	if err := os.MkdirAll(a.cfg.App.TempDirectory, 0o755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	storageClient, err := storage.New(a.log, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	bucketCtx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	if err := storageClient.EnsureBucket(bucketCtx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}

	describeClient := describe.New(a.log, a.cfg.Describe)
	requestTracker := tracker.New(a.log)

	orch := orchestrator.New(
		a.log,
		a.cfg.App.TempDirectory,
		requestTracker,
		storageClient,
		storageClient,
		describeClient,
	)

	imagesHandler := v1.NewImagesHandler(orch, requestTracker)
	browserHandler := v1.NewBrowserHandler(a.log, storageClient, report.New())
	server := v1.NewServer(a.cfg.HTTP, imagesHandler, browserHandler)

	return a.runServer(ctx, server)
}

func (a *App) runServer(ctx context.Context, server *v1.Server) error {
	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "app stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "app stopped gracefully")

	return nil
}
