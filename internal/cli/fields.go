package cli

import (
	"errors"

	"datepick/internal/store"

	"github.com/spf13/cobra"
)

func newFieldsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Inspect and clear stored field values",
	}
	cmd.AddCommand(newFieldsListCmd(app))
	cmd.AddCommand(newFieldsGetCmd(app))
	cmd.AddCommand(newFieldsClearCmd(app))
	cmd.AddCommand(newFieldsHistoryCmd(app))
	return cmd
}

func newFieldsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			fields, err := st.Fields(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": fields})
		},
	}
}

func newFieldsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show one stored field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			fv, err := st.Field(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, fieldErr(args[0], err))
			}
			return writeOut(cmd, app, map[string]any{"data": fv})
		},
	}
}

func newFieldsClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear NAME",
		Short: "Delete a stored field value (history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			if err := st.ClearField(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, fieldErr(args[0], err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"name": args[0], "cleared": true}})
		},
	}
}

func newFieldsHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history NAME",
		Short: "Show the most recent selections written to a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			hist, err := st.History(cmd.Context(), args[0], limit)
			if err != nil {
				return writeErr(cmd, fieldErr(args[0], err))
			}
			return writeOut(cmd, app, map[string]any{"data": hist})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries (newest first)")
	return cmd
}

func fieldErr(name string, err error) error {
	switch {
	case errors.Is(err, store.ErrFieldNotFound):
		return errNotFound("field", name)
	case errors.Is(err, store.ErrInvalidFieldName):
		return errUsage("%v", err)
	}
	return err
}
