package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/phenrril/kitos/internal/app"
	"github.com/phenrril/kitos/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	cmd := &cli.Command{
		Name:  "kitos",
		Usage: "KITOS configurator backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "skip-seed", Usage: "do not write default categories and launch designs on start"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API (default)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "skip-seed", Usage: "do not write default categories and launch designs on start"},
				},
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					a, cleanup, err := bootstrap(ctx)
					if err != nil {
						return err
					}
					defer cleanup()
					if err := a.Migrate(); err != nil {
						return err
					}
					zlog.Info().Msg("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Migrate and write default categories and launch designs",
				Action: func(ctx context.Context, c *cli.Command) error {
					a, cleanup, err := bootstrap(ctx)
					if err != nil {
						return err
					}
					defer cleanup()
					if err := a.MigrateAndSeed(ctx); err != nil {
						return err
					}
					zlog.Info().Msg("seed complete")
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		zlog.Fatal().Err(err).Msg("kitos")
	}
}

func setupLogger(cfg *config.Config) {
	if cfg.LogFormat == "console" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		zlog.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// bootstrap loads config, opens the database and builds the app.
func bootstrap(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	setupLogger(cfg)

	db, err := app.OpenDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.NewApp(ctx, cfg, db)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			zlog.Warn().Err(err).Msg("close app")
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return a, cleanup, nil
}

func serve(ctx context.Context, c *cli.Command) error {
	a, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.Bool("skip-seed") {
		err = a.Migrate()
	} else {
		err = a.MigrateAndSeed(ctx)
	}
	if err != nil {
		return err
	}

	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", server.Addr).Str("storage", a.Blobs.Name()).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	zlog.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}
