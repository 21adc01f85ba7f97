package cli

import (
	"errors"
	"time"

	"datepick/internal/calendar"
	"datepick/internal/store"
	"datepick/internal/widget"

	"github.com/spf13/cobra"
)

func newPickCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "pick FIELD",
		Short: "Select a date into a stored field without the UI",
		Long: `Select a date into a stored field without the UI.

The picker is driven exactly as a click would drive it: it is opened on the
field, rendered on the date's month and the day is selected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.ValidFieldName(args[0])
			if err != nil {
				return writeErr(cmd, errUsage("%v", err))
			}
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			y, m, d, err := calendar.ParseISO(date)
			if err != nil {
				return writeErr(cmd, errUsage("--date: %v", err))
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			doc := widget.NewDocument()
			w := widget.New(widget.Options{Policy: app.policy(), Logger: app.log})
			w.Open(doc, st.Target(name))
			w.Render(doc, m, y)
			value, ok := w.Select(doc, d)
			if !ok {
				return writeErr(cmd, errUsage("day %d is not in %s", d, date))
			}

			fv, err := st.Field(cmd.Context(), name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if fv.Value != value {
				return writeErr(cmd, errors.New("pick: field was not written"))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   fv,
				"_hints": []string{"datepick fields history " + name},
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to select (YYYY-MM-DD; default today)")
	return cmd
}
