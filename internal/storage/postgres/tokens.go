package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndreyChufelin/kbpanel/internal/storage"
	"github.com/jackc/pgx/v5"
)

func (s *Storage) Token(ctx context.Context) (string, error) {
	query := `
		SELECT token
		FROM panel_sessions
		WHERE profile = $1`

	var token string
	err := s.db.QueryRow(ctx, query, s.profile).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNoToken
		}
		return "", fmt.Errorf("failed to query session token: %w", err)
	}

	return token, nil
}

func (s *Storage) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return storage.ErrEmptyToken
	}

	query := `
		INSERT INTO panel_sessions (profile, token, updated_at)
		VALUES (@profile, @token, now())
		ON CONFLICT (profile) DO UPDATE
		SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at`
	args := pgx.NamedArgs{
		"profile": s.profile,
		"token":   token,
	}

	_, err := s.db.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}

	return nil
}

func (s *Storage) ClearToken(ctx context.Context) error {
	query := `
		DELETE FROM panel_sessions
		WHERE profile = $1`
	_, err := s.db.Exec(ctx, query, s.profile)
	if err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}

	return nil
}
