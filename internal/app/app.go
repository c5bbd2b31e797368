// Package app composes the panel: navigation, the authenticated HTTP client
// and the signal that sends the user back to the login page.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/AndreyChufelin/kbpanel/internal/api"
	"github.com/AndreyChufelin/kbpanel/internal/auth"
	"github.com/AndreyChufelin/kbpanel/internal/config"
	"github.com/AndreyChufelin/kbpanel/internal/content"
	"github.com/AndreyChufelin/kbpanel/internal/errmsg"
	"github.com/AndreyChufelin/kbpanel/internal/events"
	"github.com/AndreyChufelin/kbpanel/internal/logger"
	"github.com/AndreyChufelin/kbpanel/internal/markdown"
	"github.com/AndreyChufelin/kbpanel/internal/router"
	"github.com/AndreyChufelin/kbpanel/internal/storage"
	"github.com/AndreyChufelin/kbpanel/internal/toast"
)

type App struct {
	Content   content.Resolver
	Signals   *events.Bus[auth.Unauthorized]
	Navigator *router.Navigator
	Tokens    storage.TokenStore
	HTTP      *http.Client
	API       *api.Client
	Markdown  *markdown.Renderer
	Toasts    *toast.Toaster

	logger      *logger.Logger
	grpc        *auth.GRPCClient
	unsubscribe func()
}

type Options struct {
	// ToastSink receives toasts; nil writes them nowhere.
	ToastSink toast.Sink
	// Transport is the base round tripper under the auth transport.
	Transport http.RoundTripper
}

func New(cfg config.Config, tokens storage.TokenStore, log *logger.Logger, opts Options) (*App, error) {
	c := content.NewResolver(cfg.Content.URLPrefix)

	table, err := router.NewDefaultTable(c)
	if err != nil {
		return nil, fmt.Errorf("failed to build state table: %w", err)
	}

	a := &App{
		logger:    log,
		Content:   c,
		Signals:   events.NewBus[auth.Unauthorized](),
		Navigator: router.NewNavigator(table),
		Tokens:    tokens,
		Markdown: markdown.New(markdown.Options{
			Style:   cfg.Markdown.Style,
			Classes: cfg.Markdown.Classes,
		}),
		Toasts: toast.NewToaster(toast.DefaultConfig(c), opts.ToastSink, nil),
	}

	a.HTTP = auth.WrapClient(&http.Client{
		Timeout:   cfg.Upstream.Timeout,
		Transport: opts.Transport,
	}, tokens, a.Signals, log)

	if cfg.Upstream.BaseURL != "" {
		a.API, err = api.NewClient(cfg.Upstream.BaseURL, a.HTTP)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Upstream.GRPCHost != "" {
		a.grpc = auth.NewGRPCClient(log, cfg.Upstream.GRPCHost, cfg.Upstream.GRPCPort, tokens, a.Signals)
		err = a.grpc.Start()
		if err != nil {
			return nil, err
		}
	}

	a.Navigator.OnTransition(func(from, to router.Match) {
		log.Debug("state changed", "from", from.State, "to", to.State, "url", to.URL)
	})
	a.unsubscribe = a.Signals.Subscribe(a.signOut)

	return a, nil
}

func (a *App) signOut(evt auth.Unauthorized) {
	changed, err := a.Navigator.TransitionTo(router.StateLogin, nil)
	if err != nil {
		a.logger.Error("failed to navigate to login", "error", err)
		return
	}
	if changed {
		a.logger.Info("session rejected, navigated to login", "status", evt.Status, "target", evt.Target)
	}
}

// GRPC returns the authenticated upstream gRPC client, or nil when none is
// configured.
func (a *App) GRPC() *auth.GRPCClient {
	return a.grpc
}

// UpstreamHealth reports the serving status of the gRPC upstream. A rejected
// session sends the panel to login like any other call.
func (a *App) UpstreamHealth(ctx context.Context) (string, error) {
	if a.grpc == nil {
		return "", ErrNoUpstream
	}
	status, err := a.grpc.Health(ctx, "")
	if err != nil {
		return "", err
	}
	return status.String(), nil
}

// Notify shows err as an error toast. API errors are flattened with errmsg.
func (a *App) Notify(err error) {
	if err == nil {
		return
	}
	if rerr, ok := api.AsResponseError(err); ok {
		msg := errmsg.Messages(rerr.Response())
		a.Toasts.Error(msg.StatusText, msg.Info)
		return
	}
	a.Toasts.Error("Error", err.Error())
}

// ErrNoUpstream is returned by operations that need the knowledge-base API
// when none is configured.
var ErrNoUpstream = errors.New("no upstream api configured")

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.grpc != nil {
		return a.grpc.Close()
	}
	return nil
}
