package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// addAnalyticsCommands adds the performance analytics commands.
func addAnalyticsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "analytics",
		Aliases: []string{"stats"},
		Short:   "Performance analytics over closed trades",
		Long: `Performance analytics over closed trades. Every view takes an optional
--from/--to window; without one it covers all time.`,
	}

	cmd.AddCommand(newSummaryCmd(app))
	cmd.AddCommand(newEquityCmd(app))
	cmd.AddCommand(newTrendCmd(app))
	cmd.AddCommand(newStrategyRowsCmd(app))
	cmd.AddCommand(newPsychologyCmd(app))
	cmd.AddCommand(newHeatmapCmd(app))
	cmd.AddCommand(newDashboardCmd(app))

	rootCmd.AddCommand(cmd)
}

// windowCmd builds a command that runs one windowed analytics query.
func windowCmd(app *App, use, short string, run func(cmd *cobra.Command, out *Output, window *models.DateRange) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := windowFlags(cmd, app.Config.Location())
			if err != nil {
				return err
			}
			return run(cmd, NewOutput(cmd), window)
		},
	}
	addWindowFlags(cmd)
	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	return windowCmd(app, "summary", "Win rate, profit factor and drawdown, with change vs the previous period",
		func(cmd *cobra.Command, output *Output, window *models.DateRange) error {
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			cmp, err := app.Analytics.Compare(ctx, app.UserID, window)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(cmp)
			}
			printComparison(output, app, cmp)
			return nil
		})
}

func printComparison(output *Output, app *App, cmp *models.MetricsComparison) {
	loc := app.Config.Location()
	if cmp.Window != nil {
		output.Bold("Performance %s to %s", FormatDate(cmp.Window.From, loc), FormatDate(cmp.Window.To, loc))
	} else {
		output.Bold("Performance (all time)")
	}

	c, d := cmp.Current, cmp.Changes
	withChange := cmp.Previous != nil
	row := func(label, value string, change float64) {
		if withChange {
			output.Printf("  %-15s %-14s %s\n", label, value, output.FormatChange(change))
		} else {
			output.Printf("  %-15s %s\n", label, value)
		}
	}
	row("Total P&L:", output.FormatPnL(c.TotalPnL), d.TotalPnL)
	row("Trades:", fmt.Sprintf("%d (%dW/%dL)", c.TotalTrades, c.Wins, c.Losses), d.TotalTrades)
	row("Win Rate:", fmt.Sprintf("%.1f%%", c.WinRate), d.WinRate)
	row("Profit Factor:", FormatRatio(c.ProfitFactor), d.ProfitFactor)
	row("Avg Profit:", FormatMoney(c.AvgProfit), d.AvgProfit)
	row("Max Drawdown:", FormatMoney(c.MaxDrawdown), d.MaxDrawdown)

	if withChange && cmp.PreviousWindow != nil {
		output.Dim("  vs %s to %s", FormatDate(cmp.PreviousWindow.From, loc), FormatDate(cmp.PreviousWindow.To, loc))
	}
}

func newEquityCmd(app *App) *cobra.Command {
	cmd := windowCmd(app, "equity", "Cumulative P&L after each closed trade",
		func(cmd *cobra.Command, output *Output, window *models.DateRange) error {
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			points, err := app.Analytics.EquityCurve(ctx, app.UserID, window)
			if err != nil {
				return err
			}

			if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
				return writeEquityCSV(cmd.OutOrStdout(), points)
			}
			if output.IsJSON() {
				return output.JSON(points)
			}
			if len(points) == 0 {
				output.Info("No closed trades in this period.")
				return nil
			}

			loc := app.Config.Location()
			table := NewTable(output, "Closed", "Equity")
			for _, p := range points {
				table.AddRow(FormatDateTime(p.Date, loc), output.FormatPnL(p.Value))
			}
			table.Render()
			return nil
		})
	cmd.Flags().Bool("csv", false, "write the curve as CSV")
	return cmd
}

func newTrendCmd(app *App) *cobra.Command {
	return windowCmd(app, "trend", "Monthly win rate and profit factor",
		func(cmd *cobra.Command, output *Output, window *models.DateRange) error {
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			points, err := app.Analytics.MonthlyTrend(ctx, app.UserID, window)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(points)
			}
			if len(points) == 0 {
				output.Info("No closed trades in this period.")
				return nil
			}

			table := NewTable(output, "Month", "Trades", "Win %", "PF")
			for _, p := range points {
				table.AddRow(p.Period, fmt.Sprintf("%d", p.Trades), fmt.Sprintf("%.1f", p.WinRate), FormatRatio(p.ProfitFactor))
			}
			table.Render()
			return nil
		})
}

func newStrategyRowsCmd(app *App) *cobra.Command {
	return windowCmd(app, "strategies", "Compare strategies over the window",
		func(cmd *cobra.Command, output *Output, window *models.DateRange) error {
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			rows, err := app.Analytics.StrategyPerformance(ctx, app.UserID, window)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(rows)
			}
			if len(rows) == 0 {
				output.Info("No strategies yet.")
				return nil
			}

			table := NewTable(output, "Strategy", "Trades", "Win %", "PF", "Avg R:R", "Max DD", "Net P&L")
			for _, r := range rows {
				table.AddRow(
					TruncateString(r.StrategyName, 24),
					fmt.Sprintf("%d", r.TotalTrades),
					fmt.Sprintf("%.1f", r.WinRate),
					FormatRatio(r.ProfitFactor),
					FormatRiskReward(r.AvgRiskReward),
					FormatMoney(r.MaxDrawdown),
					output.FormatPnL(r.NetPnL),
				)
			}
			table.Render()
			return nil
		})
}

func newPsychologyCmd(app *App) *cobra.Command {
	return windowCmd(app, "psychology", "How mood and stress relate to P&L",
		func(cmd *cobra.Command, output *Output, window *models.DateRange) error {
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			ins, err := app.Analytics.Psychology(ctx, app.UserID, window)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(ins)
			}
			printPsychology(output, ins)
			return nil
		})
}

func printPsychology(output *Output, ins *models.PsychologyInsights) {
	if len(ins.Rows) == 0 {
		output.Info("No journal entries or mood-tagged trades yet.")
		return
	}
	if ins.Source == models.SourceJournal {
		output.Bold("Psychology (%d journal entries)", ins.TotalEntries)
		output.Printf("  Mindset score: %.0f%%\n", ins.MindsetScore)
		output.Printf("  Dominant mood: %s\n", ins.DominantMood)
	} else {
		output.Bold("Psychology (from trade moods)")
	}
	output.Println()

	table := NewTable(output, "Mood", "Count", "Avg P&L", "Avg Stress")
	for _, r := range ins.Rows {
		stress := "-"
		if ins.Source == models.SourceJournal {
			stress = fmt.Sprintf("%.1f", r.AvgStressLevel)
		}
		table.AddRow(string(r.Emotion), fmt.Sprintf("%d", r.Count), output.FormatPnL(r.AvgPnL), stress)
	}
	table.Render()
}

func newHeatmapCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Daily P&L calendar for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			loc := app.Config.Location()
			now := app.now().In(loc)

			year, _ := cmd.Flags().GetInt("year")
			if year == 0 {
				year = now.Year()
			}
			m, _ := cmd.Flags().GetInt("month")
			if m == 0 {
				m = int(now.Month())
			}
			if m < 1 || m > 12 {
				return apperrors.NewValidationError("month", m, "month must be 1-12")
			}
			month := time.Month(m)

			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			cells, err := app.Analytics.Heatmap(ctx, app.UserID, year, month)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]any{"year": year, "month": m, "cells": cells})
			}
			renderCalendar(output, year, month, analytics.FillHeatmap(year, month, loc, cells))
			return nil
		},
	}
	cmd.Flags().Int("year", 0, "year (default current)")
	cmd.Flags().Int("month", 0, "month 1-12 (default current)")
	return cmd
}

// renderCalendar prints a Monday-first month grid of daily P&L.
func renderCalendar(output *Output, year int, month time.Month, days []models.HeatmapCell) {
	const cellWidth = 10
	output.Bold("%s %d", month, year)

	header := make([]string, 0, 7)
	for _, d := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		header = append(header, fmt.Sprintf("%-*s", cellWidth, d))
	}
	output.Println(output.DimText(strings.TrimRight(strings.Join(header, ""), " ")))

	var total float64
	var line strings.Builder
	offset := (int(days[0].Date.Weekday()) + 6) % 7
	line.WriteString(strings.Repeat(" ", offset*cellWidth))

	for i, c := range days {
		text := fmt.Sprintf("%2d", c.Day)
		if c.Count > 0 {
			text += " " + compactPnL(c.Value)
			total += c.Value
		}
		cell := fmt.Sprintf("%-*s", cellWidth, text)
		switch {
		case c.Count > 0 && c.Value > 0:
			cell = output.Green(cell)
		case c.Count > 0 && c.Value < 0:
			cell = output.Red(cell)
		case c.Count == 0:
			cell = output.DimText(cell)
		}
		line.WriteString(cell)

		if (offset+i+1)%7 == 0 || i == len(days)-1 {
			output.Println(strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	output.Println()
	output.Printf("  Month P&L: %s\n", output.FormatPnL(total))
}

// compactPnL keeps calendar cells narrow: 1234 -> +1.2k.
func compactPnL(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v >= 1000 {
		return fmt.Sprintf("%s%.1fk", sign, v/1000)
	}
	return fmt.Sprintf("%s%.0f", sign, v)
}

func newDashboardCmd(app *App) *cobra.Command {
	return windowCmd(app, "dashboard", "Every analytics view at once",
		func(cmd *cobra.Command, output *Output, window *models.DateRange) error {
			ctx, cancel, err := app.withStore(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			d, err := app.Analytics.Dashboard(ctx, app.UserID, window)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(d)
			}

			printComparison(output, app, d.Metrics)
			output.Println()
			if n := len(d.Equity); n > 0 {
				output.Printf("  Equity:          %s after %d trades\n", output.FormatPnL(d.Equity[n-1].Value), n)
			}
			if n := len(d.Trend); n > 0 {
				last := d.Trend[n-1]
				output.Printf("  Latest month:    %s  %.1f%% win, PF %s\n", last.Period, last.WinRate, FormatRatio(last.ProfitFactor))
			}
			if len(d.Strategies) > 0 {
				best := d.Strategies[0]
				for _, r := range d.Strategies[1:] {
					if r.NetPnL > best.NetPnL {
						best = r
					}
				}
				output.Printf("  Best strategy:   %s (%s)\n", best.StrategyName, output.FormatPnL(best.NetPnL))
			}
			output.Println()
			printPsychology(output, d.Psychology)
			return nil
		})
}
