package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/neomorfeo/keyledger/internal/adapter/bolt"
	"github.com/neomorfeo/keyledger/internal/adapter/clipboard"
	"github.com/neomorfeo/keyledger/internal/adapter/file"
	"github.com/neomorfeo/keyledger/internal/adapter/fsm"
	"github.com/neomorfeo/keyledger/internal/adapter/httpbackend"
	oteladapter "github.com/neomorfeo/keyledger/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/keyledger/internal/adapter/river"
	"github.com/neomorfeo/keyledger/internal/adapter/sqlite"
	"github.com/neomorfeo/keyledger/internal/app"
	"github.com/neomorfeo/keyledger/internal/config"
	"github.com/neomorfeo/keyledger/internal/domain"
	"github.com/neomorfeo/keyledger/internal/i18n"
)

// cli holds the process-wide state shared by all commands.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile string
	cfg        config.Config

	svc     *app.KeyService
	jobs    *riveradapter.Client
	closers []func(context.Context) error
}

// setup loads configuration and initializes logging, strings and telemetry.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd, c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level})))

	if err := i18n.Init(cfg.Language); err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	providers, err := oteladapter.Setup(cmd.Context(), oteladapter.NewConfig(version, cfg.Telemetry.Environment, cfg.Telemetry.Exporter))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	c.closers = append(c.closers, providers.Shutdown)
	return nil
}

// service builds the key service on first use.
func (c *cli) service(ctx context.Context) (*app.KeyService, error) {
	if c.svc != nil {
		return c.svc, nil
	}

	backend, err := c.openBackend()
	if err != nil {
		return nil, err
	}

	publisher, err := c.openPublisher(ctx)
	if err != nil {
		return nil, err
	}

	store := app.NewStore(oteladapter.NewTracingBackend(backend), app.StoreOptions{
		MaxAttempts: c.cfg.Append.MaxAttempts,
	})
	c.svc = app.NewKeyService(
		app.NewGenerator(),
		store,
		oteladapter.NewTracingPublisher(publisher),
		fsm.New(),
		clipboard.New(),
	)
	return c.svc, nil
}

func (c *cli) openBackend() (domain.Backend, error) {
	switch c.cfg.Backend.Driver {
	case config.DriverHTTP:
		return httpbackend.New(c.cfg.Backend.URL), nil
	case config.DriverFile:
		return file.New(c.cfg.Backend.Path), nil
	case config.DriverSQLite:
		db, err := oteladapter.OpenDB(c.cfg.Backend.DSN)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		c.closers = append(c.closers, func(context.Context) error { return db.Close() })
		b, err := sqlite.NewFromDB(db)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		return b, nil
	case config.DriverBolt:
		b, err := bolt.New(c.cfg.Backend.DSN, 0o600)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func(context.Context) error { return b.Close() })
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported backend driver %q", c.cfg.Backend.Driver)
	}
}

// openPublisher enqueues events in River when a job database is configured
// and logs them inline otherwise.
func (c *cli) openPublisher(ctx context.Context) (domain.EventPublisher, error) {
	if c.cfg.Jobs.DSN == "" {
		return riveradapter.LogPublisher{}, nil
	}

	db, err := oteladapter.OpenDB(c.cfg.Jobs.DSN)
	if err != nil {
		return nil, fmt.Errorf("jobs database: %w", err)
	}
	c.closers = append(c.closers, func(context.Context) error { return db.Close() })

	client, err := riveradapter.Setup(ctx, db, riveradapter.Options{})
	if err != nil {
		return nil, fmt.Errorf("river: %w", err)
	}
	c.jobs = client
	return riveradapter.NewPublisher(client), nil
}

// close releases resources in reverse order of acquisition.
func (c *cli) close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// alertError is shown to the user as a localized alert.
type alertError struct {
	messageID string
	err       error
}

func (e *alertError) Error() string {
	return i18n.T(e.messageID, map[string]any{"Error": e.err.Error()})
}

func (e *alertError) Unwrap() error {
	return e.err
}
