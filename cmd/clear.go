package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/marcus/sip/internal/output"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all intake, goals and reminders",
	Long: `Deletes every logged drink, every daily goal and the reminder list, and
cancels all scheduled reminders. Config and notification permission are kept.`,
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			if !isInteractive() {
				err := fmt.Errorf("refusing to clear without --yes")
				output.Error("%v", err)
				return err
			}
			if err := huh.NewConfirm().
				Title("Delete all hydration data?").
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&yes).
				Run(); err != nil {
				return err
			}
			if !yes {
				fmt.Println("Cancelled")
				return nil
			}
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		if err := a.scheduler.Clear(ctx); err != nil {
			output.Warning("cancel scheduled reminders: %v", err)
		}
		if err := a.tracker.ClearAllData(ctx); err != nil {
			output.Error("failed to clear data: %v", err)
			return err
		}
		output.Success("CLEARED all hydration data")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
