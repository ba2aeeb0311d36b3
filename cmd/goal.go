package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/output"
	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal [amount]",
	Short: "Show or set the daily goal",
	Long: `Without an amount, prints the day's goal (or offers the presets when run
in a terminal with --pick). With an amount, sets the goal for that day only.
Days without a goal of their own use 2L.`,
	Example: `  sip goal
  sip goal 2.5L
  sip goal --pick
  sip goal 1500 --date +1d`,
	GroupID: "track",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		day, err := resolveDay(cmd, a.loc)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		pick, _ := cmd.Flags().GetBool("pick")
		var amount int
		switch {
		case len(args) == 1:
			amount, err = parseAmount(args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
		case pick:
			if !isInteractive() {
				err := fmt.Errorf("--pick needs a terminal")
				output.Error("%v", err)
				return err
			}
			amount = a.tracker.DailyGoal(ctx, day)
			if err := pickGoal(&amount); err != nil {
				return err
			}
		default:
			goal := a.tracker.DailyGoal(ctx, day)
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.JSON(models.DailyGoal{Amount: goal, Date: day})
			}
			fmt.Printf("%s  goal %s\n", day, output.FormatAmount(goal))
			return nil
		}

		if err := a.tracker.SetDailyGoal(ctx, day, amount); err != nil {
			output.Error("failed to set goal: %v", err)
			return err
		}
		output.Success("GOAL %s %s", day, output.FormatAmount(amount))
		return nil
	},
}

// pickGoal offers the goal presets, preselecting the current value
func pickGoal(amount *int) error {
	opts := make([]huh.Option[int], 0, len(models.GoalPresets))
	for _, p := range models.GoalPresets {
		opts = append(opts, huh.NewOption(p.Label, p.Value))
	}
	return huh.NewSelect[int]().
		Title("Daily goal").
		Description("current: " + strconv.Itoa(*amount) + "ml").
		Options(opts...).
		Value(amount).
		Run()
}

func init() {
	rootCmd.AddCommand(goalCmd)
	addDateFlag(goalCmd)
	goalCmd.Flags().Bool("pick", false, "Choose from preset goals interactively")
	goalCmd.Flags().Bool("json", false, "Output as JSON")
}
