// Package cli holds the application-level state shared by every mosaic
// subcommand: loaded configuration, the structured logger, and the
// session database connection.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mosaicwm/mosaic/internal/config"
	"github.com/mosaicwm/mosaic/internal/logging"
	"github.com/mosaicwm/mosaic/internal/session"
)

// App bundles the dependencies every subcommand needs: nothing here is
// a package-level global, so tests can construct as many independent
// Apps as they like.
type App struct {
	Config *config.Config
	DB     *sql.DB

	rotator *logging.LogRotator
}

// NewApp loads configuration, wires up logging, and opens the session
// database, in that order since logging and session paths both derive
// from the loaded config.
func NewApp(ctx context.Context) (*App, context.Context, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, ctx, fmt.Errorf("cli: new config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, ctx, fmt.Errorf("cli: load config: %w", err)
	}
	cfg := mgr.Get()

	logger, rotator, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Dir:      cfg.Logging.Dir,
		FileName: cfg.Logging.FileName,
	})
	if err != nil {
		return nil, ctx, fmt.Errorf("cli: init logging: %w", err)
	}
	ctx = logging.WithContext(ctx, logger)
	ctx = logging.WithComponent(ctx, "cli")

	db, err := session.Open(ctx, cfg.Session.Path)
	if err != nil {
		return nil, ctx, fmt.Errorf("cli: open session store: %w", err)
	}

	return &App{Config: cfg, DB: db, rotator: rotator}, ctx, nil
}

// Close releases the session database and any rotating log file.
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = session.Close(a.DB)
	}
	if a.rotator != nil {
		_ = a.rotator.Close()
	}
	return err
}
