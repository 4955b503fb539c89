package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/config"
	"github.com/blogem/expenseflow/controllers"
	"github.com/blogem/expenseflow/database"
	"github.com/blogem/expenseflow/logging"
	"github.com/blogem/expenseflow/metrics"
	"github.com/blogem/expenseflow/notifier"
	"github.com/blogem/expenseflow/repositories"
	"github.com/blogem/expenseflow/services"
	"github.com/blogem/expenseflow/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "expenseflow",
		Short:         "Expense submission and approval service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, serve)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, func(ctx context.Context, app *application) error {
					version, err := database.MigrationVersion(ctx, app.db)
					if err != nil {
						return err
					}
					app.logger.Info("Database is up to date", zap.Int64("version", version))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create demo users and expenses in an empty database",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), configPath, seed)
			},
		},
	)

	return root
}

// application is everything a command needs, built from the configuration
type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *database.DB
	repos    *repositories.Repositories
	services *services.Services
	metrics  *metrics.Metrics
}

// withApp builds the application, runs fn and tears everything down again
func withApp(ctx context.Context, configPath string, fn func(ctx context.Context, app *application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(ctx, database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("Failed to initialize database", zap.Error(err))
		return err
	}
	defer db.Close()

	blobs, err := storage.NewLocalBlobStore(cfg.Storage.ReceiptDir, cfg.Storage.MaxReceiptSize, logger)
	if err != nil {
		return err
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	notifiers := notifier.Multi{notifier.NewLogNotifier(logger)}
	if cfg.SMTP.Host != "" {
		notifiers = append(notifiers, notifier.NewSMTPNotifier(notifier.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger))
	}

	m := metrics.New()
	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(repos, services.Dependencies{
		Blobs:          blobs,
		Notifier:       notifiers,
		Tokens:         authenticator.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Metrics:        m,
		Logger:         logger,
		Location:       loc,
		MaxReceiptSize: cfg.Storage.MaxReceiptSize,
	})

	return fn(ctx, &application{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		repos:    repos,
		services: srvs,
		metrics:  m,
	})
}

// serve runs the HTTP server until SIGINT or SIGTERM
func serve(ctx context.Context, app *application) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sso authenticator.Provider
	oidcCfg := authenticator.OpenIDConfig{
		IssuerURL:    app.cfg.OIDC.IssuerURL,
		ClientID:     app.cfg.OIDC.ClientID,
		ClientSecret: app.cfg.OIDC.ClientSecret,
		CallbackURL:  app.cfg.OIDC.CallbackURL,
	}
	if oidcCfg.Enabled() {
		provider, err := authenticator.NewOpenIDProvider(ctx, oidcCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize SSO provider: %w", err)
		}
		sso = provider
	}

	ctrl := controllers.NewControllers(app.services, sso, app.cfg.Storage.MaxReceiptSize, app.logger)

	// Set up router
	r, err := setupRouter(ctrl, app.services.Users, app.metrics, app.logger, app.cfg.Server.SecureCookies)
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	srv := &http.Server{
		Addr:         app.cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  app.cfg.Server.ReadTimeout,
		WriteTimeout: app.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("ExpenseFlow starting",
			zap.String("addr", srv.Addr),
			zap.String("database", app.cfg.Database.Driver),
			zap.Bool("sso", sso != nil))
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

	app.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
