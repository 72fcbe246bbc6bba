package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/filestore"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/migrations"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
	"github.com/vadimbarashkov/shortlink/pkg/shortcode"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
	pgrepo "github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
)

type urlStore interface {
	Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)
	RetrieveAndUpdateStats(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAll(ctx context.Context) ([]*entity.URL, error)
	Close() error
}

type App struct {
	cfg     *config.Config
	logger  *httplog.Logger
	store   urlStore
	useCase *usecase.URLUseCase
	handler http.Handler
}

// New wires the store selected by cfg.Storage.Driver, the use case and the router.
// The caller owns the returned App and must Close it unless Run is used.
func New(ctx context.Context, cfg *config.Config, logger *httplog.Logger) (*App, error) {
	const op = "app.New"

	generate, err := shortcode.New(cfg.ShortCode.Generator, cfg.ShortCode.Length)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create short code generator: %w", op, err)
	}

	store, err := newStore(ctx, cfg, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uc := usecase.New(store, generate)

	return &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		useCase: uc,
		handler: delivery.NewRouter(logger, uc, cfg.BaseURL),
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (urlStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dsn := cfg.Postgres.DSN()

		db, err := postgres.New(
			ctx,
			dsn,
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := postgres.RunMigrations(migrations.FS, dsn); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		return pgrepo.NewURLRepository(db), nil
	default:
		store, err := filestore.New(
			cfg.Storage.DataDir,
			logger,
			filestore.WithURLsFile(cfg.Storage.URLsFile),
			filestore.WithClicksFile(cfg.Storage.ClicksFile),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}

		return store, nil
	}
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// Report returns the dashboard report without counting any visits.
func (a *App) Report(ctx context.Context) (entity.Report, error) {
	return a.useCase.GetDashboard(ctx)
}

func (a *App) Close() error {
	const op = "app.App.Close"

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("%s: failed to close store: %w", op, err)
	}

	return nil
}

// Run serves HTTP until ctx is done, then shuts the server down and closes the store.
func (a *App) Run(ctx context.Context) error {
	const op = "app.App.Run"

	server := &http.Server{
		Addr:           a.cfg.HTTPServer.Addr(),
		Handler:        a.handler,
		ReadTimeout:    a.cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   a.cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    a.cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: a.cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting server",
			slog.String("addr", server.Addr),
			slog.String("env", a.cfg.Env),
			slog.String("storage", a.cfg.Storage.Driver),
		)

		var err error

		switch a.cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(a.cfg.HTTPServer.CertFile, a.cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		a.logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	err := g.Wait()

	if closeErr := a.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	return err
}
