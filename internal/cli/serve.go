package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/api"
)

// addServeCommands adds the HTTP API commands.
func addServeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newTokenCmd(app))
}

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal and analytics over HTTP",
		Long: `Serve the JSON API. Every /api route needs a bearer token signed with
server.jwt_secret; issue one with 'tradejournal token'. /health and /metrics
are public.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				app.Config.Server.Address = addr
			}
			if err := app.Config.ValidateServer(); err != nil {
				output.Error("Cannot serve: %v", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := app.Open(ctx); err != nil {
				return err
			}
			defer app.Close()

			srv := api.NewServer(app.Config.Server, api.Deps{
				Analytics:  app.Analytics,
				Trades:     app.Trades,
				Strategies: app.Strategies,
				Journal:    app.Journal,
				Metrics:    app.Metrics,
				Logger:     app.Logger,
			})
			output.Info("Listening on http://%s", app.Config.Server.Address)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.address)")
	return cmd
}

func newTokenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for --user",
		Example: `  tradejournal token --user alice --ttl 720h
  curl -H "Authorization: Bearer $(tradejournal token)" localhost:8080/api/analytics/summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.ValidateServer(); err != nil {
				output.Error("Cannot issue token: %v", err)
				return err
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := api.NewAuthenticator(app.Config.Server.JWTSecret).IssueToken(app.UserID, ttl)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]any{
					"token":     token,
					"user":      app.UserID,
					"expiresAt": app.now().Add(ttl).UTC(),
				})
			}
			output.Println(token)
			return nil
		},
	}
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}
