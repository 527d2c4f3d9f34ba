package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kotoba-reader/kotoba/internal/assets"
	"github.com/kotoba-reader/kotoba/internal/bootstrap"
	"github.com/kotoba-reader/kotoba/internal/config"
	"github.com/kotoba-reader/kotoba/internal/database"
	"github.com/kotoba-reader/kotoba/internal/dictionary"
	"github.com/kotoba-reader/kotoba/internal/furigana"
	"github.com/kotoba-reader/kotoba/internal/japanese"
	"github.com/kotoba-reader/kotoba/internal/lookup"
	"github.com/kotoba-reader/kotoba/internal/server"
	"github.com/kotoba-reader/kotoba/internal/story"
	"github.com/kotoba-reader/kotoba/schemas"
)

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "kotoba-server",
		Short:         "Kotoba dictionary, furigana and story HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debugMode)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: debugMode,
	})))
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	app, srv, err := newApp(cfg)
	if err != nil {
		return fmt.Errorf("newApp() > %w", err)
	}

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// newApp wires every component and registers their lifecycle hooks.
func newApp(cfg *config.Config) (*bootstrap.App, *http.Server, error) {
	app := bootstrap.New()

	maxStrategy, err := cfg.Analyzer.MaxStrategy()
	if err != nil {
		return nil, nil, fmt.Errorf("cfg.Analyzer.MaxStrategy() > %w", err)
	}
	dict := dictionary.NewService(cfg.Dictionary.Path, dictionary.WithLimits(dictionary.Limits{
		MaxResults: cfg.Dictionary.MaxResults,
		MaxSenses:  cfg.Dictionary.MaxSenses,
		MaxGlosses: cfg.Dictionary.MaxGlosses,
	}))
	analyzer := japanese.NewAnalyzer(
		japanese.WithMaxStrategy(maxStrategy),
		japanese.WithUserDictionary(cfg.Analyzer.UserDictionary),
	)

	// Both resources degrade on failure, so warming them never blocks startup.
	app.AddStartupHook("dictionary", func(ctx context.Context) error {
		if _, err := dict.Index(ctx); err != nil {
			slog.Warn("dictionary warm-up failed", "error", err)
		}
		return nil
	})
	app.AddStartupHook("analyzer", func(ctx context.Context) error {
		if err := analyzer.Warm(ctx); err != nil {
			slog.Warn("analyzer warm-up failed, lower tiers will be used", "error", err)
		}
		return nil
	})

	var stories story.Repository
	if cfg.Database.Enabled {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		app.AddStartupHook("database", func(ctx context.Context) error {
			if err := database.WaitReady(ctx, db, cfg.Database.ConnectAttempts, time.Second); err != nil {
				return err
			}
			return database.Migrate(ctx, db, schemas.Migrations())
		})
		app.AddShutdownHook("database", func(context.Context) error {
			return db.Close()
		})
		stories = story.NewDBRepository(db)
	}

	page, err := assets.ParseReaderTemplate(cfg.Server.ReaderTemplate)
	if err != nil {
		return nil, nil, fmt.Errorf("assets.ParseReaderTemplate() > %w", err)
	}

	handler := server.NewHandler(
		lookup.NewService(analyzer, dict),
		furigana.NewAnnotator(analyzer),
		analyzer,
		dict,
		stories,
		server.WithReaderTemplate(page),
	)
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Logging(server.CORS(
			h2c.NewHandler(handler.Routes(), &http2.Server{}),
			cfg.Server.CORS.AllowedOrigins,
		)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app, srv, nil
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
