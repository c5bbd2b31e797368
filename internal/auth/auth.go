// Package auth decorates outgoing calls with the panel's session token and
// reports authorization failures.
//
// Every outgoing request carries "Authorization: jwt <token>" while a token is
// stored. A 401 or 403 answer publishes an Unauthorized signal and is still
// handed back to the caller unchanged; nothing is retried or swallowed.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/AndreyChufelin/kbpanel/internal/logger"
	"github.com/AndreyChufelin/kbpanel/internal/storage"
)

const (
	Scheme = "jwt"

	HeaderAuthorization   = "Authorization"
	MetadataAuthorization = "authorization"
)

// Unauthorized is broadcast whenever a call is answered with 401 or 403.
type Unauthorized struct {
	Status int
	Method string
	Target string
}

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Publisher interface {
	Publish(Unauthorized)
}

func IsUnauthorized(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func Credential(token string) string {
	return Scheme + " " + token
}

func lookupToken(ctx context.Context, tokens TokenSource, log *logger.Logger) (string, bool) {
	if tokens == nil {
		return "", false
	}
	token, err := tokens.Token(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNoToken) && log != nil {
			log.Warn("failed to read session token, sending request anonymously", "error", err)
		}
		return "", false
	}
	return token, token != ""
}

func publish(signals Publisher, log *logger.Logger, evt Unauthorized) {
	if log != nil {
		log.Warn("unauthorized response", "status", evt.Status, "method", evt.Method, "target", evt.Target)
	}
	if signals != nil {
		signals.Publish(evt)
	}
}
