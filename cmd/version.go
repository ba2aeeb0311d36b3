package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		versionStr := version
		if versionStr == "" {
			versionStr = "dev"
		}

		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Print(versionStr)
			return nil
		}

		fmt.Printf("sip version %s (%s %s/%s)\n", versionStr, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("short", false, "Output only version string")
}
