package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/loader"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/page"
	"github.com/Zachkp/portfolio/internal/server"
	"github.com/Zachkp/portfolio/internal/telemetry"
	"github.com/Zachkp/portfolio/internal/tracking"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Live personal portfolio page",
		Long: `Serves a portfolio page built from a page skeleton and two JSON documents:
a biography and an ordered list of projects. Configuration comes from the
environment (and a .env file when present).`,
		Args:         cobra.NoArgs,
		RunE:         runServe,
		SilenceUsage: true,
	}
	root.AddCommand(serve, newCheckCmd())
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEndpoint, "portfolio")
	if err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	skeleton, err := loadSkeleton(cfg)
	if err != nil {
		return err
	}
	deps, err := pageDeps(cfg, logger)
	if err != nil {
		return err
	}

	var tracker *tracking.Tracker
	if cfg.TrackingDB != "" {
		tracker, err = tracking.Open(ctx, cfg.TrackingDB, logger)
		if err != nil {
			return err
		}
		defer tracker.Close()
		go tracker.RunCleanup(ctx, 24*time.Hour)
	}
	if cfg.AdminToken == "" {
		logger.Info("Admin routes disabled; set ADMIN_TOKEN to enable")
	}

	pages := page.NewStore(cfg.SessionTTL, cfg.MaxPages, logger)
	go pages.Run(ctx, cfg.SweepInterval)

	srv := server.New(server.Options{
		Skeleton:   skeleton,
		PageDeps:   deps,
		Pages:      pages,
		Tracker:    tracker,
		AdminToken: cfg.AdminToken,
		SiteRoot:   cfg.SiteRoot,
		Logger:     logger,
	})
	return srv.Run(ctx, cfg.Addr())
}

// loadSkeleton reads the page skeleton and checks it has every element the
// page components need.
func loadSkeleton(cfg *config.Config) ([]byte, error) {
	path := filepath.Join(cfg.SiteRoot, cfg.SkeletonPath)
	skeleton, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skeleton: %w", err)
	}
	if err := checkSkeleton(skeleton); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return skeleton, nil
}

func pageDeps(cfg *config.Config, logger *zap.Logger) (page.Deps, error) {
	messageIllegal, err := cfg.MessagePattern()
	if err != nil {
		return page.Deps{}, err
	}
	fetcher, err := newLoader(cfg, logger)
	if err != nil {
		return page.Deps{}, err
	}
	return page.Deps{
		Fetcher:        fetcher,
		AboutMeSource:  cfg.AboutMeSource,
		ProjectsSource: cfg.ProjectsSource,
		MessageIllegal: messageIllegal,
		Logger:         logger,
	}, nil
}

func newLoader(cfg *config.Config, logger *zap.Logger) (*loader.Loader, error) {
	opts := []loader.Option{loader.WithLogger(logger)}
	if cfg.DataBaseURL != "" {
		base, err := url.Parse(cfg.DataBaseURL)
		if err != nil {
			return nil, fmt.Errorf("DATA_BASE_URL: %w", err)
		}
		opts = append(opts, loader.WithBaseURL(base))
	} else {
		opts = append(opts, loader.WithFS(os.DirFS(cfg.SiteRoot)))
	}
	return loader.New(opts...), nil
}
