package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/sip/internal/config"
	"github.com/marcus/sip/internal/output"
	"github.com/marcus/sip/internal/suggest"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage sip configuration",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCmd.RunE(cmd, args)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (file + environment)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(getDataDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(cfg)
		}

		fmt.Printf("config file:           %s\n", config.Path(cfg.DataDir))
		fmt.Printf("db_path:               %s\n", cfg.DBPath)
		fmt.Printf("timezone:              %s\n", cfg.Timezone)
		fmt.Printf("log.level:             %s\n", cfg.Log.Level)
		fmt.Printf("log.format:            %s\n", cfg.Log.Format)
		fmt.Printf("notify.quiet:          %t\n", cfg.Notify.Quiet)
		fmt.Printf("notify.rate_per_minute: %d\n", cfg.Notify.RatePerMinute)
		fmt.Printf("notify.burst:          %d\n", cfg.Notify.Burst)
		fmt.Printf("notify.interval:       %s\n", cfg.Notify.Interval)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long:  "Set a config value in the config file. Valid keys: " + strings.Join(config.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if err := config.Set(getDataDir(), key, val); err != nil {
			output.Error("%v", err)
			if matches := suggest.Closest(key, config.Keys()); len(matches) > 0 && matches[0] != key {
				fmt.Printf("Did you mean: %s\n", strings.Join(matches, ", "))
			}
			return err
		}
		output.Success("Set %s = %s", key, val)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.Path(getDataDir()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().Bool("json", false, "Output as JSON")
	configCmd.Flags().Bool("json", false, "Output as JSON")
}
