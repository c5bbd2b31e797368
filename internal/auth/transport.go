package auth

import (
	"net/http"

	"github.com/AndreyChufelin/kbpanel/internal/logger"
)

// Transport is an http.RoundTripper that adds the session credential to
// requests and publishes Unauthorized on 401/403 responses.
type Transport struct {
	Base    http.RoundTripper
	Tokens  TokenSource
	Signals Publisher
	Logger  *logger.Logger
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token, ok := lookupToken(req.Context(), t.Tokens, t.Logger); ok {
		req = req.Clone(req.Context())
		req.Header.Set(HeaderAuthorization, Credential(token))
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if IsUnauthorized(resp.StatusCode) {
		publish(t.Signals, t.Logger, Unauthorized{
			Status: resp.StatusCode,
			Method: req.Method,
			Target: req.URL.String(),
		})
	}

	return resp, nil
}

// WrapClient returns a copy of base whose transport goes through the auth
// Transport. A nil base uses http.DefaultClient settings.
func WrapClient(base *http.Client, tokens TokenSource, signals Publisher, log *logger.Logger) *http.Client {
	client := &http.Client{}
	if base != nil {
		*client = *base
	}
	client.Transport = &Transport{
		Base:    client.Transport,
		Tokens:  tokens,
		Signals: signals,
		Logger:  log,
	}
	return client
}
