// Package postgres keeps session tokens in a shared Postgres table, one row
// per profile, for panel hosts that run on more than one machine.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	dsn         string
	profile     string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	db          *pgxpool.Pool
}

func NewStorage(host, port, user, password, name, profile string) *Storage {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, port),
		Path:   name,
	}
	return &Storage{
		dsn:     dsn.String(),
		profile: profile,
	}
}

func (s *Storage) poolConfig() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if s.MaxConns > 0 {
		config.MaxConns = int32(s.MaxConns)
	}
	// idle connections kept open between commands
	if s.MinConns > 0 {
		config.MinConns = min(int32(s.MinConns), config.MaxConns)
	}
	if s.MaxIdleTime > 0 {
		config.MaxConnIdleTime = s.MaxIdleTime
	}
	return config, nil
}

func (s *Storage) Connect(ctx context.Context) error {
	config, err := s.poolConfig()
	if err != nil {
		return err
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	s.db = db

	return nil
}

// Migrate creates the session table when it does not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS panel_sessions (
			profile    text PRIMARY KEY,
			token      text NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`
	_, err := s.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to migrate panel_sessions: %w", err)
	}
	return nil
}

func (s *Storage) Close(ctx context.Context) {
	if s.db != nil {
		s.db.Close()
	}
}
