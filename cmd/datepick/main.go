package main

import (
	"os"
	"strings"

	"datepick/internal/calendar"
	"datepick/internal/cli"
)

func isYearMonth(s string) bool {
	_, _, err := calendar.ParseYearMonth(strings.TrimSpace(s))
	return err == nil
}

// rewriteMonthShortcutArgs turns `datepick YYYY-MM` into
// `datepick grid YYYY-MM`. Cobra treats the first positional token as a
// subcommand, so argv is rewritten before parsing; persistent flags may come
// first.
func rewriteMonthShortcutArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config":    true,
		"--db":        true,
		"--format":    true,
		"--log-level": true,
	}

	insertAt := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "grid")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isYearMonth(argv[i+1]) {
				return insertAt(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			// Unknown and bool flags take no value; --flag=value is one token.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isYearMonth(a) {
			return insertAt(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteMonthShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
