package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/specboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configTarget())
	},
}

var configSetAPICmd = &cobra.Command{
	Use:     "set-api <url>",
	Short:   "Point specboard at another dashboard service",
	Example: "  specboard config set-api http://localhost:9237",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configTarget()
		if err := config.SaveAPIURL(path, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "api_url set to %s in %s\n", args[0], path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Set a top-level scalar in the configuration file",
	Example: "  specboard config set poll_interval 10s",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configTarget()
		if err := config.SetValue(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s in %s\n", args[0], args[1], path)
		return nil
	},
}

// configTarget is the file the config commands edit: the one that was read,
// or the local default.
func configTarget() string {
	if cfgFile != "" {
		return cfgFile
	}
	if configUsed != "" {
		return configUsed
	}
	return localConfigPath
}

func init() {
	configCmd.AddCommand(configPathCmd, configSetAPICmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
