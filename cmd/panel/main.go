package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndreyChufelin/kbpanel/internal/config"
	"github.com/AndreyChufelin/kbpanel/internal/content"
	"github.com/AndreyChufelin/kbpanel/internal/logger"
	"github.com/AndreyChufelin/kbpanel/internal/markdown"
	"github.com/AndreyChufelin/kbpanel/internal/router"
	"github.com/AndreyChufelin/kbpanel/internal/server/rest"
	"github.com/AndreyChufelin/kbpanel/internal/toast"
)

func main() {
	defer handleExit()

	path := os.Getenv("KBPANEL_CONFIG")
	if path == "" {
		path = "configs/config-panel.toml"
	}
	config, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, config.Log.Level, config.Log.Format)

	c := content.NewResolver(config.Content.URLPrefix)
	states, err := router.NewDefaultTable(c)
	if err != nil {
		log.Fatal("failed to build state table", "error", err)
	}

	opts := []rest.Option{
		rest.WithTimeouts(config.REST.IdleTimeout, config.REST.ReadTimeout, config.REST.WriteTimeout),
	}
	if config.Content.Dir != "" {
		opts = append(opts, rest.WithStatic(config.Content.URLPrefix, config.Content.Dir))
	}
	if config.RateLimiter.Enabled {
		opts = append(opts, rest.WithRateLimit(config.RateLimiter.Limit))
	}

	restServer := rest.NewServer(
		config.REST.Host,
		config.REST.Port,
		log,
		states,
		markdown.New(markdown.Options{Style: config.Markdown.Style, Classes: config.Markdown.Classes}),
		toast.DefaultConfig(c),
		opts...,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := restServer.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down rest server", "error", err)
		}
	}()

	err = restServer.Start()
	if err != nil {
		stop()
		log.Fatal("failed to start rest server", "error", err)
	}
}

// handleExit turns a logger.Exit panic into the process exit code after the
// deferred cleanup of main has run.
func handleExit() {
	if e := recover(); e != nil {
		if exit, ok := e.(logger.Exit); ok {
			os.Exit(exit.Code)
		}
		panic(e)
	}
}
