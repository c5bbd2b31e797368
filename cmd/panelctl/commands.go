package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AndreyChufelin/kbpanel/internal/app"
	"github.com/AndreyChufelin/kbpanel/internal/router"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Tokens.SetToken(cmd.Context(), token); err != nil {
					return err
				}
				a.Toasts.Success("", "Signed in.")
				fmt.Fprintln(c.stdout, a.Navigator.Current().URL)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token issued by the knowledge-base API")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Tokens.ClearToken(cmd.Context()); err != nil {
					return err
				}
				if _, err := a.Navigator.TransitionTo(router.StateLogin, nil); err != nil {
					return err
				}
				fmt.Fprintln(c.stdout, a.Navigator.Current().URL)
				return nil
			})
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "GET a knowledge-base API path with the stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if a.API == nil {
					return app.ErrNoUpstream
				}

				var body json.RawMessage
				err := a.API.Get(cmd.Context(), args[0], &body)
				if err != nil {
					a.Notify(err)
					fmt.Fprintf(c.stderr, "state: %s\n", a.Navigator.Current().URL)
					return err
				}

				var out bytes.Buffer
				if err := json.Indent(&out, body, "", "  "); err != nil {
					out.Reset()
					out.Write(body)
				}
				fmt.Fprintln(c.stdout, out.String())
				return nil
			})
		},
	}
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the gRPC upstream with the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				status, err := a.UpstreamHealth(cmd.Context())
				if err != nil {
					a.Notify(err)
					fmt.Fprintf(c.stderr, "state: %s\n", a.Navigator.Current().URL)
					return err
				}
				fmt.Fprintln(c.stdout, status)
				return nil
			})
		},
	}
}

func (c *cli) resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Show the navigation state a panel URL resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				m, _ := a.Navigator.Navigate(args[0])
				return writeJSON(c.stdout, m)
			})
		},
	}
}

func (c *cli) statesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List the panel's navigation states",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				table := a.Navigator.Table()
				for _, s := range table.States() {
					kind := ""
					if s.Abstract {
						kind = " (abstract)"
					}
					fmt.Fprintf(c.stdout, "%-24s %s%s\n", s.Name, s.URL, kind)
				}
				fmt.Fprintf(c.stdout, "otherwise -> %s\n", table.Otherwise())
				return nil
			})
		},
	}
}

func (c *cli) renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <file|->",
		Short: "Render a markdown file to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source []byte
			var err error
			if args[0] == "-" {
				source, err = io.ReadAll(cmd.InOrStdin())
			} else {
				source, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read markdown: %w", err)
			}

			return c.withApp(cmd.Context(), func(a *app.App) error {
				html, err := a.Markdown.Render(source)
				if err != nil {
					return err
				}
				_, err = c.stdout.Write(html)
				return err
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
