package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			examples := []struct {
				title    string
				commands []string
			}{
				{
					title: "Set Up a Strategy",
					commands: []string{
						`tradejournal strategy add "ORB" --rules "break of 15m range"`,
						"tradejournal strategy list        # ID and cached performance",
					},
				},
				{
					title: "Record Trades",
					commands: []string{
						"tradejournal trade add AAPL --entry 190 --qty 50 --stop 187 --strategy <id>",
						"tradejournal trade close <trade-id> --exit 196",
						"tradejournal trade import fills.csv  # columns from 'trade export'",
					},
				},
				{
					title: "End of Day Review",
					commands: []string{
						"tradejournal journal add \"Held winners, cut losers\" --emotion disciplined --stress 3",
						"tradejournal analytics summary --from 2024-05-01 --to 2024-05-31",
						"tradejournal analytics heatmap   # this month's P&L calendar",
						"tradejournal analytics psychology",
					},
				},
				{
					title: "Serve the API",
					commands: []string{
						"TJ_JWT_SECRET=... tradejournal serve",
						"tradejournal token --ttl 720h    # bearer token for --user",
					},
				},
			}

			if output.IsJSON() {
				all := make(map[string][]string, len(examples))
				for _, ex := range examples {
					all[ex.title] = ex.commands
				}
				return output.JSON(all)
			}

			output.Bold("Common Workflow Examples")
			output.Println()
			for _, ex := range examples {
				output.Bold(ex.title)
				for _, c := range ex.commands {
					command, comment, found := strings.Cut(c, "#")
					if found {
						output.Printf("  %s %s\n", output.Cyan(strings.TrimSpace(command)), output.DimText(strings.TrimSpace(comment)))
					} else {
						output.Printf("  %s\n", output.Cyan(c))
					}
				}
				output.Println()
			}
			return nil
		},
	}
}
