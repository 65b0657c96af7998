package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trade-journal/internal/models"
	"trade-journal/internal/strategy"
)

// addStrategyCommands adds strategy commands.
func addStrategyCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "strategy",
		Aliases: []string{"strategies"},
		Short:   "Manage strategies and their performance snapshots",
	}

	cmd.AddCommand(newStrategyAddCmd(app))
	cmd.AddCommand(newStrategyListCmd(app))
	cmd.AddCommand(newStrategyEditCmd(app))
	cmd.AddCommand(newStrategyDeleteCmd(app))
	cmd.AddCommand(newStrategyRecomputeCmd(app))

	rootCmd.AddCommand(cmd)
}

func newStrategyAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Create a strategy",
		Example: `  tradejournal strategy add "Opening Range Breakout" --asset-class equities --rules "first 15m range"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			in := strategy.Input{Name: args[0]}
			in.AssetClass, _ = cmd.Flags().GetString("asset-class")
			in.Rules, _ = cmd.Flags().GetString("rules")
			status, _ := cmd.Flags().GetString("status")
			in.Status = models.StrategyStatus(strings.ToLower(status))

			st, err := app.Strategies.Create(ctx, app.UserID, in)
			if err != nil {
				output.Error("Failed to create strategy: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(st)
			}
			output.Success("✓ Strategy created: %s", st.Name)
			output.Printf("  ID: %s\n", st.ID)
			return nil
		},
	}
	cmd.Flags().String("asset-class", "", "asset class traded")
	cmd.Flags().String("rules", "", "entry and exit rules")
	cmd.Flags().String("status", string(models.StrategyActive), "active or paused")
	return cmd
}

func newStrategyEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <strategy-id>",
		Short: "Edit a strategy's name, rules or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			patch := strategy.Patch{
				Name:       stringFlag(cmd, "name"),
				AssetClass: stringFlag(cmd, "asset-class"),
				Rules:      stringFlag(cmd, "rules"),
			}
			if status := stringFlag(cmd, "status"); status != nil {
				s := models.StrategyStatus(strings.ToLower(*status))
				patch.Status = &s
			}

			st, err := app.Strategies.Update(ctx, app.UserID, args[0], patch)
			if err != nil {
				output.Error("Failed to update strategy: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(st)
			}
			output.Success("✓ Strategy updated: %s", st.Name)
			return nil
		},
	}
	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("asset-class", "", "asset class traded")
	cmd.Flags().String("rules", "", "entry and exit rules")
	cmd.Flags().String("status", "", "active or paused")
	return cmd
}

func newStrategyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List strategies with their cached performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			list, err := app.Strategies.List(ctx, app.UserID)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(list)
			}
			if len(list) == 0 {
				output.Info("No strategies yet. Create one with 'tradejournal strategy add <name>'.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Status", "Trades", "Win %", "PF", "Avg R:R", "Max DD", "Net P&L")
			for _, st := range list {
				p := st.Performance
				table.AddRow(
					st.ID,
					TruncateString(st.Name, 24),
					string(st.Status),
					fmt.Sprintf("%d", p.TotalTrades),
					fmt.Sprintf("%.1f", p.WinRate),
					FormatRatio(p.ProfitFactor),
					FormatRiskReward(p.AvgRiskReward),
					FormatMoney(p.MaxDrawdown),
					output.FormatPnL(p.NetPnL),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newStrategyDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <strategy-id>",
		Short: "Delete a strategy with no trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if err := app.Strategies.Delete(ctx, app.UserID, args[0]); err != nil {
				output.Error("Failed to delete strategy: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Strategy %s deleted", args[0])
			return nil
		},
	}
}

func newStrategyRecomputeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute [strategy-id]",
		Short: "Rebuild performance snapshots from trade history",
		Long:  "Rebuild one strategy's performance snapshot, or every strategy's when no ID is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if len(args) == 0 {
				n, err := app.Strategies.RecomputeAll(ctx, app.UserID)
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(map[string]int{"recomputed": n})
				}
				output.Success("✓ Recomputed %d strategies", n)
				return nil
			}

			snap, err := app.Strategies.Recompute(ctx, app.UserID, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(snap)
			}
			output.Success("✓ Recomputed %s", args[0])
			output.Printf("  Trades: %d  Win: %.1f%%  PF: %s  R:R: %s  Net: %s\n",
				snap.TotalTrades, snap.WinRate, FormatRatio(snap.ProfitFactor),
				FormatRiskReward(snap.AvgRiskReward), output.FormatPnL(snap.NetPnL))
			return nil
		},
	}
}
