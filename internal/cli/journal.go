package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trade-journal/internal/journal"
	"trade-journal/internal/models"
	"trade-journal/internal/store"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal management",
		Long:  "Record how you felt and what you learned, optionally linked to a trade.",
	}

	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalEditCmd(app))
	cmd.AddCommand(newJournalDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newJournalAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Write a journal entry",
		Example: `  tradejournal journal add "Chased the open, ignored my plan" --emotion greedy --stress 7
  tradejournal journal add "Clean execution" --emotion disciplined --stress 2 --trade 01HX...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			in := journal.Input{Content: args[0]}
			emotion, _ := cmd.Flags().GetString("emotion")
			in.Emotion = models.Emotion(strings.ToLower(emotion))
			in.StressLevel, _ = cmd.Flags().GetInt("stress")
			in.Profitability, _ = cmd.Flags().GetFloat64("profitability")
			in.TradeID, _ = cmd.Flags().GetString("trade")
			in.Tags, _ = cmd.Flags().GetStringSlice("tag")
			date, err := timeFlag(cmd, "date", app.Config.Location())
			if err != nil {
				return err
			}
			if date != nil {
				in.Date = *date
			}

			e, err := app.Journal.Create(ctx, app.UserID, in)
			if err != nil {
				output.Error("Failed to save entry: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(e)
			}
			output.Success("✓ Journal entry saved")
			output.Printf("  ID: %s\n", e.ID)
			return nil
		},
	}
	cmd.Flags().String("emotion", string(models.EmotionNeutral), "mood: "+emotionList())
	cmd.Flags().Int("stress", journal.MinStress, fmt.Sprintf("stress level %d-%d", journal.MinStress, journal.MaxStress))
	cmd.Flags().Float64("profitability", 0, "self-reported P&L for the session")
	cmd.Flags().String("trade", "", "link to a trade ID")
	cmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	cmd.Flags().String("date", "", "entry date (default now)")
	return cmd
}

func newJournalEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <entry-id>",
		Short: "Edit a journal entry",
		Long:  "Edit the fields given as flags. --trade \"\" unlinks the entry from its trade.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			patch := journal.Patch{
				Content:       stringFlag(cmd, "content"),
				TradeID:       stringFlag(cmd, "trade"),
				Profitability: floatFlag(cmd, "profitability"),
			}
			if emotion := stringFlag(cmd, "emotion"); emotion != nil {
				e := models.Emotion(strings.ToLower(*emotion))
				patch.Emotion = &e
			}
			if cmd.Flags().Changed("stress") {
				stress, _ := cmd.Flags().GetInt("stress")
				patch.StressLevel = &stress
			}
			if cmd.Flags().Changed("tag") {
				patch.Tags, _ = cmd.Flags().GetStringSlice("tag")
			}
			if patch.Date, err = timeFlag(cmd, "date", app.Config.Location()); err != nil {
				return err
			}

			e, err := app.Journal.Update(ctx, app.UserID, args[0], patch)
			if err != nil {
				output.Error("Failed to update entry: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(e)
			}
			output.Success("✓ Journal entry updated")
			return nil
		},
	}
	cmd.Flags().String("content", "", "entry text")
	cmd.Flags().String("emotion", "", "mood: "+emotionList())
	cmd.Flags().Int("stress", 0, "stress level")
	cmd.Flags().Float64("profitability", 0, "self-reported P&L for the session")
	cmd.Flags().String("trade", "", "link to a trade ID")
	cmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	cmd.Flags().String("date", "", "entry date")
	return cmd
}

func newJournalDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if err := app.Journal.Delete(ctx, app.UserID, args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Journal entry %s deleted", args[0])
			return nil
		},
	}
}

func newJournalListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"search"},
		Short:   "List journal entries",
		Example: `  tradejournal journal list --emotion anxious
  tradejournal journal list --tag fomo --from 2024-05-01 --to 2024-05-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			loc := app.Config.Location()
			window, err := windowFlags(cmd, loc)
			if err != nil {
				return err
			}
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			filter := store.JournalFilter{PopulateTrade: true}
			if window != nil {
				filter.From, filter.To = window.From, window.To
			}
			emotion, _ := cmd.Flags().GetString("emotion")
			filter.Emotion = models.Emotion(strings.ToLower(emotion))
			filter.Tags, _ = cmd.Flags().GetStringSlice("tag")
			filter.TradeID, _ = cmd.Flags().GetString("trade")
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			entries, err := app.Journal.List(ctx, app.UserID, filter)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(entries)
			}
			if len(entries) == 0 {
				output.Info("No journal entries found.")
				return nil
			}

			for _, e := range entries {
				output.Bold("%s  %s  stress %d/%d", FormatDateTime(e.Date, loc), e.Emotion, e.StressLevel, journal.MaxStress)
				if e.Trade != nil {
					line := fmt.Sprintf("  Trade: %s %s", e.Trade.Symbol, e.Trade.Side)
					if e.Trade.IsClosed() {
						line += "  " + output.FormatPnL(e.Trade.PnL)
					}
					output.Println(line)
				}
				output.Printf("  %s\n", e.Content)
				if len(e.Tags) > 0 {
					output.Dim("  #%s", strings.Join(e.Tags, " #"))
				}
				output.Println()
			}
			return nil
		},
	}
	addWindowFlags(cmd)
	cmd.Flags().String("emotion", "", "only this mood")
	cmd.Flags().StringSlice("tag", nil, "entries carrying any of these tags")
	cmd.Flags().String("trade", "", "only entries linked to this trade")
	cmd.Flags().Int("limit", 0, "maximum entries (0 for all)")
	return cmd
}
