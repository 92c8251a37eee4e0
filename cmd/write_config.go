package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/ebbieaden/ensdapp/config"
	"github.com/ebbieaden/ensdapp/ui"
)

var ConfigOverwrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the settings ensdapp runs with",
	Long:  ``,
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings as toml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		return showConfig(appUI, cfg, path)
	},
}

var writeConfigCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the effective settings to the config file",
	Long: `Writes the settings ensdapp currently runs with, defaults and env vars and
flags included, to --config or the default config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		return writeConfig(cfg, path, ConfigOverwrite)
	},
}

// showConfig prints c as toml nested under the file it would be saved to.
// Leading whitespace keeps the output valid toml.
func showConfig(u ui.UI, c config.Config, path string) error {
	u.Info("# %s", path)
	return c.Write(u.Indent().Writer())
}

func writeConfig(c config.Config, path string, overwrite bool) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil && !overwrite {
		return fmt.Errorf("%s already exists, use --overwrite to replace it", expanded)
	}
	if err := c.Save(expanded); err != nil {
		return fmt.Errorf("couldn't write config: %w", err)
	}
	appUI.Success("Wrote %s", expanded)
	return nil
}

func init() {
	writeConfigCmd.Flags().BoolVar(&ConfigOverwrite, "overwrite", false, "replace an existing config file")
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(writeConfigCmd)
	rootCmd.AddCommand(configCmd)
}
