package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/belowevolve/filmmates/pkg/filmmates/auth"
	"github.com/belowevolve/filmmates/pkg/filmmates/config"
	"github.com/belowevolve/filmmates/pkg/filmmates/database"
	"github.com/belowevolve/filmmates/pkg/filmmates/logging"
	"github.com/belowevolve/filmmates/pkg/filmmates/models"
	"github.com/belowevolve/filmmates/pkg/filmmates/server"
	"github.com/belowevolve/filmmates/pkg/filmmates/tmdb"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "filmmates.toml",
		Sources: cli.EnvVars("FILMMATES_CONFIG"),
	}
}

func main() {
	app := &cli.Command{
		Name:  "filmmates-server",
		Usage: "Shared movie watchlists backed by TMDb",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run migrations and start the HTTP server",
				Flags:  []cli.Flag{configFlag()},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema and exit",
				Flags:  []cli.Flag{configFlag()},
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal("application error", "err", err)
	}
}

// setup loads configuration, builds the logger and opens a migrated database.
func setup(cmd *cli.Command) (*config.Config, *log.Logger, *gorm.DB, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.New(os.Stderr, cfg.Log.Level)

	db, err := database.Open(cfg.Database.Path, logging.Component(logger, "db"))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}
	logger.Info("database migrations completed", "path", cfg.Database.Path)

	return cfg, logger, db, nil
}

func migrate(_ context.Context, cmd *cli.Command) error {
	_, _, db, err := setup(cmd)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, db, err := setup(cmd)
	if err != nil {
		return err
	}

	if cfg.TMDB.APIKey == "" {
		logger.Warn("TMDB_API_KEY is not set; movie search is disabled")
	}
	catalog := tmdb.New(tmdb.Options{
		APIKey:   cfg.TMDB.APIKey,
		BaseURL:  cfg.TMDB.BaseURL,
		Language: cfg.TMDB.Language,
	}, logging.Component(logger, "tmdb"))

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		DB:      db,
		Tokens:  auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration),
		Catalog: catalog,
		Logger:  logger,
		SiteURL: cfg.Server.SiteURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting Film Mates server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
