package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"datepick/internal/calendar"
	"datepick/internal/config"
	"datepick/internal/format"
	"datepick/internal/logging"
	"datepick/internal/store"
	"datepick/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	DBPath     string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg config.AppConfig
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "datepick",
		Short:        "Calendar date picker (TUI, web and scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive picker
  datepick

  # Lay out a month (shortcut for: datepick grid 2024-03)
  datepick 2024-03

  # Write a date into a stored field
  datepick pick start --date 2024-03-05

  # Serve the picker in a browser
  datepick web
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd.ErrOrStderr())
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("DATEPICK_CONFIG", ""), "Path to config.yaml (default: user config dir)")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "Path to the field store (overrides store.path and DATEPICK_DB)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DATEPICK_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error; overrides config)")

	cmd.AddCommand(newGridCmd(app))
	cmd.AddCommand(newPickCmd(app))
	cmd.AddCommand(newFieldsCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// setup loads configuration and initializes logging. Log output goes to w
// (stderr) so it never mixes with command output.
func (app *App) setup(w io.Writer) error {
	if err := format.Validate(app.Format); err != nil {
		return usageError{msg: err.Error()}
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if p := strings.TrimSpace(app.DBPath); p != "" {
		cfg.Store.Path = p
	}
	if lvl := strings.TrimSpace(app.LogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}
	app.cfg = cfg
	app.log = logging.Init(logging.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Writer:    w,
	})
	return nil
}

func (app *App) policy() calendar.WrapPolicy {
	return calendar.PolicyFor(app.cfg.Calendar.CarryYear)
}

func (app *App) openStore(ctx context.Context) (*store.Store, error) {
	path, err := app.cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	app.log.Debug("store opened", "path", path)
	return st, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, err := app.openStore(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()

	// The alt screen owns the terminal; only the log file (if any) gets logs.
	log := logging.Init(logging.Options{
		Level:  app.cfg.Logging.Level,
		Format: "json",
		File:   app.cfg.Logging.File,
		Writer: io.Discard,
	})
	return tui.Run(tui.Options{
		Fields: app.cfg.TUI.Fields,
		Policy: app.policy(),
		Store:  st,
		Theme:  app.cfg.TUI.Theme,
		Logger: log,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
