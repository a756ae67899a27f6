package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Long: `List the bundled themes and any YAML themes in the themes directory.
The active theme is marked with *.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := theme.ListAvailableThemes(config.ThemesDir())
		if err != nil {
			logger.Warn("failed to read themes directory", "error", err)
		}

		for _, t := range themes {
			mark := " "
			if t.Name == cfg.Theme.Name {
				mark = "*"
			}
			source := "bundled"
			if !t.IsBundled {
				source = t.Path
			}
			fmt.Printf("%s %-16s %s\n", mark, t.Name, source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}
