package storage

import (
	"context"
	"errors"
)

// TokenKey is the local storage key the session token lives under.
const TokenKey = "token"

var (
	ErrNoToken    = errors.New("no session token")
	ErrEmptyToken = errors.New("empty session token")
)

// TokenStore persists the panel's session token. Token returns ErrNoToken
// when the user is anonymous.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}
