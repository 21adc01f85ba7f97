package cli

import (
	"fmt"
	"strings"
	"time"

	"datepick/internal/calendar"

	"github.com/spf13/cobra"
)

func newGridCmd(app *App) *cobra.Command {
	var month, year int
	var text bool

	cmd := &cobra.Command{
		Use:   "grid [YYYY-MM]",
		Short: "Lay out a month as Sunday-first week rows",
		Args:  cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
datepick grid 2024-03
datepick grid --month 2 --year 2026 --text
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			y, m := now.Year(), int(now.Month())-1
			if len(args) == 1 {
				py, pm, err := calendar.ParseYearMonth(args[0])
				if err != nil {
					return writeErr(cmd, errUsage("%v", err))
				}
				y, m = py, pm
			}
			if cmd.Flags().Changed("month") {
				if month < 1 || month > 12 {
					return writeErr(cmd, errUsage("invalid --month %d (expected 1..12)", month))
				}
				m = month - 1
			}
			if cmd.Flags().Changed("year") {
				y = year
			}

			g := calendar.Layout(m, y)
			if text {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), g.Text())
				return err
			}

			prevM, prevY := app.policy().Step(calendar.NavPrevMonth, g.Month, g.Year)
			nextM, nextY := app.policy().Step(calendar.NavNextMonth, g.Month, g.Year)
			return writeOut(cmd, app, map[string]any{
				"data": g,
				"_hints": []string{
					fmt.Sprintf("datepick grid %04d-%02d", prevY, prevM+1),
					fmt.Sprintf("datepick grid %04d-%02d", nextY, nextM+1),
				},
			})
		},
	}

	cmd.Flags().IntVar(&month, "month", 0, "Month (1..12)")
	cmd.Flags().IntVar(&year, "year", 0, "Year")
	cmd.Flags().BoolVar(&text, "text", false, "Print a plain text calendar instead of JSON/EDN")
	return cmd
}
