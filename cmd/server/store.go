package main

import (
	"context"
	"fmt"

	"github.com/Rrens/pain-mapper/internal/config"
	"github.com/Rrens/pain-mapper/internal/domain"
	"github.com/Rrens/pain-mapper/internal/repository/postgres"
	"github.com/Rrens/pain-mapper/internal/repository/sqlite"
	"github.com/rs/zerolog/log"
)

// store bundles the repositories of one database driver
type store struct {
	sessions    domain.SessionRepository
	painPoints  domain.PainPointRepository
	history     domain.HistoryRepository
	suggestions domain.SuggestionRepository
	tx          domain.Transactor
	ping        func(ctx context.Context) error
	close       func()
}

func (s *store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// openStore connects to the configured database and applies migrations
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite store")

		return &store{
			sessions:    sqlite.NewSessionRepository(db),
			painPoints:  sqlite.NewPainPointRepository(db),
			history:     sqlite.NewHistoryRepository(db),
			suggestions: sqlite.NewSuggestionRepository(db),
			tx:          db,
			ping:        db.Ping,
			close:       func() { db.Close() },
		}, nil

	case config.DriverPostgres:
		if err := postgres.RunMigrations(cfg.DSN()); err != nil {
			return nil, err
		}
		db, err := postgres.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("Using PostgreSQL store")

		return &store{
			sessions:    postgres.NewSessionRepository(db),
			painPoints:  postgres.NewPainPointRepository(db),
			history:     postgres.NewHistoryRepository(db),
			suggestions: postgres.NewSuggestionRepository(db),
			tx:          db,
			ping:        db.Ping,
			close:       db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
}
