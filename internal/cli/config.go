package cli

import (
	"errors"
	"fmt"
	"os"

	"datepick/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file + environment + flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"data": configView(app.cfg)})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": p}})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := os.Stat(p); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config already exists: %s (use --force to overwrite)", p))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return writeErr(cmd, err)
			}
			if err := config.Save(p, config.Defaults()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"path": p, "written": true},
				"_hints": []string{"datepick config show"},
			})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

func configPath(app *App) (string, error) {
	if app.ConfigPath != "" {
		return app.ConfigPath, nil
	}
	return config.Path()
}

// configView mirrors the YAML keys so JSON/EDN output matches the file.
func configView(c config.AppConfig) map[string]any {
	return map[string]any{
		"config_version": c.ConfigVersion,
		"calendar":       map[string]any{"carry_year": c.Calendar.CarryYear},
		"store":          map[string]any{"path": c.Store.Path},
		"web":            map[string]any{"addr": c.Web.Addr, "open": c.Web.Open},
		"tui":            map[string]any{"fields": c.TUI.Fields, "theme": c.TUI.Theme},
		"logging": map[string]any{
			"level":  c.Logging.Level,
			"format": c.Logging.Format,
			"source": c.Logging.Source,
			"file":   c.Logging.File,
		},
	}
}
