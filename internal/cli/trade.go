package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
	"trade-journal/internal/trades"
)

// addTradeCommands adds trade commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and manage trades",
		Long:  "Record trades, close them, and import or export them as CSV.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeEditCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeExportCmd(app))
	cmd.AddCommand(newTradeImportCmd(app))

	rootCmd.AddCommand(cmd)
}

func addTradeFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("side", "LONG", "LONG or SHORT")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("qty", 0, "quantity")
	cmd.Flags().Float64("stop", 0, "stop-loss price")
	cmd.Flags().Float64("target", 0, "target price")
	cmd.Flags().Float64("fees", 0, "total fees")
	cmd.Flags().Float64("exit", 0, "exit price")
	cmd.Flags().String("entry-date", "", "entry time (default now)")
	cmd.Flags().String("exit-date", "", "exit time; with --exit closes the trade")
	cmd.Flags().String("strategy", "", "strategy ID")
	cmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("emotion", "", "mood at entry: "+emotionList())
}

func emotionList() string {
	names := make([]string, len(models.Emotions))
	for i, e := range models.Emotions {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Record a trade",
		Long: `Record a new trade. Give --exit and --exit-date to record a closed
trade; P&L is computed from the prices, quantity and fees.`,
		Example: `  tradejournal trade add AAPL --entry 100 --qty 10 --stop 95
  tradejournal trade add ES --side short --entry 5300 --qty 1 --exit 5280 --exit-date "2024-05-06 15:30" --strategy 01HX...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			loc := app.Config.Location()
			in := trades.Input{Symbol: args[0]}
			side, _ := cmd.Flags().GetString("side")
			in.Side = models.TradeSide(strings.ToUpper(side))
			in.EntryPrice, _ = cmd.Flags().GetFloat64("entry")
			in.Quantity, _ = cmd.Flags().GetFloat64("qty")
			in.StopLoss, _ = cmd.Flags().GetFloat64("stop")
			in.Fees, _ = cmd.Flags().GetFloat64("fees")
			in.Target = floatFlag(cmd, "target")
			in.ExitPrice = floatFlag(cmd, "exit")
			in.StrategyID, _ = cmd.Flags().GetString("strategy")
			in.Tags, _ = cmd.Flags().GetStringSlice("tag")
			in.Notes, _ = cmd.Flags().GetString("notes")
			emotion, _ := cmd.Flags().GetString("emotion")
			in.Emotion = models.Emotion(strings.ToLower(emotion))

			entry, err := timeFlag(cmd, "entry-date", loc)
			if err != nil {
				return err
			}
			if entry != nil {
				in.EntryDate = *entry
			}
			if in.ExitDate, err = timeFlag(cmd, "exit-date", loc); err != nil {
				return err
			}

			t, err := app.Trades.Create(ctx, app.UserID, in)
			if err != nil {
				output.Error("Failed to record trade: %v", err)
				return err
			}
			return printTrade(output, app, t, "Trade recorded")
		},
	}
	addTradeFieldFlags(cmd)
	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <trade-id>",
		Short: "Close an open trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			patch := trades.Patch{ExitPrice: floatFlag(cmd, "exit"), Fees: floatFlag(cmd, "fees")}
			if patch.ExitPrice == nil {
				return apperrors.NewValidationError("exit", nil, "--exit is required")
			}
			if patch.ExitDate, err = timeFlag(cmd, "exit-date", app.Config.Location()); err != nil {
				return err
			}
			if patch.ExitDate == nil {
				now := app.now()
				patch.ExitDate = &now
			}

			t, err := app.Trades.Update(ctx, app.UserID, args[0], patch)
			if err != nil {
				output.Error("Failed to close trade: %v", err)
				return err
			}
			return printTrade(output, app, t, "Trade closed")
		},
	}
	cmd.Flags().Float64("exit", 0, "exit price")
	cmd.Flags().String("exit-date", "", "exit time (default now)")
	cmd.Flags().Float64("fees", 0, "total fees, replacing the recorded value")
	return cmd
}

func newTradeEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <trade-id>",
		Short: "Edit a trade",
		Long: `Edit the fields given as flags. Strategy snapshots are recomputed when
a closed trade's outcome changes. --clear-exit removes a partial exit from an
open trade; closed trades cannot be reopened.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			loc := app.Config.Location()
			patch := trades.Patch{
				EntryPrice: floatFlag(cmd, "entry"),
				Quantity:   floatFlag(cmd, "qty"),
				StopLoss:   floatFlag(cmd, "stop"),
				Target:     floatFlag(cmd, "target"),
				Fees:       floatFlag(cmd, "fees"),
				ExitPrice:  floatFlag(cmd, "exit"),
				StrategyID: stringFlag(cmd, "strategy"),
				Notes:      stringFlag(cmd, "notes"),
			}
			patch.ClearExit, _ = cmd.Flags().GetBool("clear-exit")
			if side := stringFlag(cmd, "side"); side != nil {
				s := models.TradeSide(strings.ToUpper(*side))
				patch.Side = &s
			}
			if emotion := stringFlag(cmd, "emotion"); emotion != nil {
				e := models.Emotion(strings.ToLower(*emotion))
				patch.Emotion = &e
			}
			if cmd.Flags().Changed("tag") {
				patch.Tags, _ = cmd.Flags().GetStringSlice("tag")
			}
			if patch.EntryDate, err = timeFlag(cmd, "entry-date", loc); err != nil {
				return err
			}
			if patch.ExitDate, err = timeFlag(cmd, "exit-date", loc); err != nil {
				return err
			}

			t, err := app.Trades.Update(ctx, app.UserID, args[0], patch)
			if err != nil {
				output.Error("Failed to update trade: %v", err)
				return err
			}
			return printTrade(output, app, t, "Trade updated")
		},
	}
	addTradeFieldFlags(cmd)
	cmd.Flags().Bool("clear-exit", false, "remove the exit from an open trade")
	return cmd
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if err := app.Trades.Delete(ctx, app.UserID, args[0]); err != nil {
				output.Error("Failed to delete trade: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade %s deleted", args[0])
			return nil
		},
	}
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			t, err := app.Trades.Get(ctx, app.UserID, args[0])
			if err != nil {
				return err
			}
			return printTrade(output, app, t, "Trade "+t.ID)
		},
	}
}

func printTrade(output *Output, app *App, t *models.Trade, title string) error {
	if output.IsJSON() {
		return output.JSON(t)
	}
	loc := app.Config.Location()
	output.Success("✓ %s", title)
	output.Printf("  ID:       %s\n", t.ID)
	output.Printf("  Symbol:   %s %s x %g @ %s\n", t.Symbol, t.Side, t.Quantity, FormatMoney(t.EntryPrice))
	output.Printf("  Entered:  %s\n", FormatDateTime(t.EntryDate, loc))
	output.Printf("  Stop:     %s\n", FormatMoney(t.StopLoss))
	if t.ExitPrice != nil {
		output.Printf("  Exit:     %s\n", FormatMoney(*t.ExitPrice))
	}
	if t.IsClosed() {
		output.Printf("  Closed:   %s (%s)\n", FormatDateTime(*t.ExitDate, loc), FormatDuration(t.ExitDate.Sub(t.EntryDate)))
		output.Printf("  P&L:      %s (%s)\n", output.FormatPnL(t.PnL), output.FormatChange(t.PnLPercentage))
	} else {
		output.Printf("  Status:   %s\n", t.Status)
	}
	if t.StrategyID != "" {
		output.Printf("  Strategy: %s\n", t.StrategyID)
	}
	if len(t.Tags) > 0 {
		output.Printf("  Tags:     %s\n", strings.Join(t.Tags, ", "))
	}
	return nil
}

func addTradeFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("status", "", "OPEN or CLOSED")
	cmd.Flags().String("symbol", "", "only this symbol")
	cmd.Flags().String("strategy", "", "only this strategy ID")
	cmd.Flags().StringSlice("tag", nil, "trades carrying any of these tags")
	cmd.Flags().Int("limit", 0, "maximum trades (0 for all)")
}

func tradeFilterFlags(cmd *cobra.Command) (store.TradeFilter, error) {
	var f store.TradeFilter
	status, _ := cmd.Flags().GetString("status")
	f.Status = models.TradeStatus(strings.ToUpper(status))
	if f.Status != "" && f.Status != models.StatusOpen && f.Status != models.StatusClosed {
		return f, apperrors.NewValidationError("status", status, "status must be OPEN or CLOSED")
	}
	symbol, _ := cmd.Flags().GetString("symbol")
	f.Symbol = strings.ToUpper(symbol)
	f.StrategyID, _ = cmd.Flags().GetString("strategy")
	f.Tags, _ = cmd.Flags().GetStringSlice("tag")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	if f.Limit < 0 {
		return f, apperrors.NewValidationError("limit", f.Limit, "limit cannot be negative")
	}
	return f, nil
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			filter, err := tradeFilterFlags(cmd)
			if err != nil {
				return err
			}
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			list, err := app.Trades.List(ctx, app.UserID, filter)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(list)
			}
			if len(list) == 0 {
				output.Info("No trades recorded.")
				return nil
			}

			loc := app.Config.Location()
			table := NewTable(output, "ID", "Entered", "Symbol", "Side", "Qty", "Entry", "Exit", "P&L", "Status")
			for _, t := range list {
				exit, pnl := "-", "-"
				if t.ExitPrice != nil {
					exit = FormatMoney(*t.ExitPrice)
				}
				if t.IsClosed() {
					pnl = output.FormatPnL(t.PnL)
				}
				table.AddRow(
					t.ID,
					FormatDate(t.EntryDate, loc),
					t.Symbol,
					string(t.Side),
					fmt.Sprintf("%g", t.Quantity),
					FormatMoney(t.EntryPrice),
					exit,
					pnl,
					string(t.Status),
				)
			}
			table.Render()
			return nil
		},
	}
	addTradeFilterFlags(cmd)
	return cmd
}

func newTradeExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades as CSV",
		Example: `  tradejournal trade export --status closed > trades.csv
  tradejournal trade export --file trades.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := tradeFilterFlags(cmd)
			if err != nil {
				return err
			}
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			list, err := app.Trades.List(ctx, app.UserID, filter)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				return writeTradesCSV(cmd.OutOrStdout(), list)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			defer f.Close()
			if err := writeTradesCSV(f, list); err != nil {
				return err
			}
			NewOutput(cmd).Success("✓ Exported %d trades to %s", len(list), path)
			return nil
		},
	}
	addTradeFilterFlags(cmd)
	cmd.Flags().String("file", "", "write to this file instead of stdout")
	return cmd
}

func newTradeImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import trades from CSV",
		Long: `Import trades from a CSV file with the columns written by 'trade export'.
The id, status and pnl columns are ignored and recomputed. Rows are imported
one at a time; a failing row stops the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := readTradesCSV(f)
			if err != nil {
				return err
			}
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			loc := app.Config.Location()
			imported := make([]string, 0, len(rows))
			for i, row := range rows {
				in, err := row.input(loc)
				if err == nil {
					var t *models.Trade
					if t, err = app.Trades.Create(ctx, app.UserID, in); err == nil {
						imported = append(imported, t.ID)
						continue
					}
				}
				output.Error("Row %d: %v", i+2, err)
				return fmt.Errorf("import stopped after %d trades: %w", len(imported), err)
			}

			if output.IsJSON() {
				return output.JSON(map[string]any{"imported": imported})
			}
			output.Success("✓ Imported %d trades", len(imported))
			return nil
		},
	}
}
