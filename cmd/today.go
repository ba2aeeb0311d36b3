package cmd

import (
	"fmt"

	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/notify"
	"github.com/marcus/sip/internal/output"
	"github.com/spf13/cobra"
)

// dayReport is the JSON shape of 'sip today'
type dayReport struct {
	Progress models.WeeklyProgress `json:"progress"`
	Intakes  []models.WaterIntake  `json:"intakes"`
}

var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"status"},
	Short:   "Show the day's intake against its goal",
	GroupID: "track",
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

		progress, err := a.tracker.LoadWeeklyProgress(ctx, day, day)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		intakes, err := a.tracker.LoadIntake(ctx, day)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		p := progress[0]

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(dayReport{Progress: p, Intakes: intakes})
		}

		width := output.TerminalWidth(80)
		fmt.Println(output.FormatProgressLine(p, barWidth(width), a.tracker.Today()))
		if msg, ok := notify.ProgressMessage(p.Percentage); ok {
			fmt.Println(output.Subtle(msg))
		} else {
			output.Success(notify.GoalBody)
		}

		fmt.Print(output.SectionHeader("Intake"))
		if len(intakes) == 0 {
			fmt.Println(output.Subtle("  nothing logged"))
			return nil
		}
		for _, in := range intakes {
			fmt.Println("  " + output.FormatIntakeShort(in, a.loc))
		}
		return nil
	},
}

// barWidth sizes progress bars for a terminal width
func barWidth(width int) int {
	w := width - 50
	if w < 10 {
		return 10
	}
	if w > 40 {
		return 40
	}
	return w
}

func init() {
	rootCmd.AddCommand(todayCmd)
	addDateFlag(todayCmd)
	todayCmd.Flags().Bool("json", false, "Output as JSON")
}
