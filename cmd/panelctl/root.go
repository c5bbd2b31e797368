package main

import (
	"context"
	"fmt"
	"io"

	"github.com/AndreyChufelin/kbpanel/internal/app"
	"github.com/AndreyChufelin/kbpanel/internal/config"
	"github.com/AndreyChufelin/kbpanel/internal/logger"
	"github.com/AndreyChufelin/kbpanel/internal/storage"
	"github.com/AndreyChufelin/kbpanel/internal/storage/file"
	"github.com/AndreyChufelin/kbpanel/internal/storage/postgres"
	"github.com/AndreyChufelin/kbpanel/internal/toast"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	verbose    bool
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "panelctl",
		Short:         "Knowledge-base admin panel client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (TOML); defaults plus KBPANEL_* env when empty")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.getCmd(),
		c.healthCmd(),
		c.resolveCmd(),
		c.statesCmd(),
		c.renderCmd(),
	)
	return root
}

func (c *cli) loadConfig() (config.Config, error) {
	return config.LoadConfig(c.configPath)
}

func (c *cli) logger(cfg config.Config) *logger.Logger {
	level := cfg.Log.Level
	if c.verbose {
		level = "debug"
	}
	return logger.New(c.stderr, level, cfg.Log.Format)
}

// openTokens returns the configured token store and a function releasing it.
func openTokens(ctx context.Context, cfg config.Config) (storage.TokenStore, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db := postgres.NewStorage(
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Name,
			cfg.Storage.Profile,
		)
		db.MaxConns = cfg.DB.MaxOpenConns
		db.MinConns = cfg.DB.MaxIdleConns
		db.MaxIdleTime = cfg.DB.MaxIdleTime
		err := db.Connect(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create connection with database: %w", err)
		}
		err = db.Migrate(ctx)
		if err != nil {
			db.Close(ctx)
			return nil, nil, err
		}
		return db, func() { db.Close(ctx) }, nil
	default:
		return file.NewStorage(cfg.Storage.Path), func() {}, nil
	}
}

// withApp builds the panel app for one command run.
func (c *cli) withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	tokens, release, err := openTokens(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	a, err := app.New(cfg, tokens, c.logger(cfg), app.Options{
		ToastSink: toast.WriterSink{W: c.stderr},
	})
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
