package cmd

import (
	"fmt"

	"github.com/marcus/sip/internal/dateparse"
	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a week of progress",
	Long: `Show daily totals for a Sunday-to-Saturday week. --offset moves back
(negative) or forward in whole weeks.`,
	Example: `  sip history
  sip history --offset -1
  sip history --markdown`,
	GroupID: "track",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		offset, _ := cmd.Flags().GetInt("offset")
		progress, err := a.tracker.WeekProgress(ctx, offset)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		title := dateparse.WeekTitle(offset)

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(progress)
		}

		if md, _ := cmd.Flags().GetBool("markdown"); md {
			rendered, err := output.RenderMarkdown(output.WeeklyReportMarkdown(title, progress))
			if err != nil {
				output.Error("render report: %v", err)
				return err
			}
			fmt.Println(rendered)
			return nil
		}

		fmt.Println(output.Title(title))
		today := a.tracker.Today()
		width := barWidth(output.TerminalWidth(80))
		for _, p := range progress {
			fmt.Println(output.FormatProgressLine(p, width, today))
		}
		s := models.Summarize(progress)
		fmt.Println(output.Subtle(fmt.Sprintf("%d days tracked · total %s · avg %s",
			s.DaysTracked, output.FormatAmount(s.TotalIntake), output.FormatAmount(s.AverageIntake))))
		return nil
	},
}

// profileStats is the JSON shape of 'sip stats'
type profileStats struct {
	models.Summary
	Days      int `json:"days"`
	DailyGoal int `json:"daily_goal"`
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show intake statistics for recent days",
	GroupID: "track",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer a.Close()

		days, _ := cmd.Flags().GetInt("days")
		if days < 0 {
			err := fmt.Errorf("--days must not be negative")
			output.Error("%v", err)
			return err
		}
		summary, err := a.tracker.RecentSummary(ctx, days)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		stats := profileStats{
			Summary:   summary,
			Days:      days + 1,
			DailyGoal: a.tracker.DailyGoal(ctx, a.tracker.Today()),
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(stats)
		}

		fmt.Println(output.Title(fmt.Sprintf("Last %d days", stats.Days)))
		fmt.Printf("  Daily goal:    %s\n", output.FormatAmount(stats.DailyGoal))
		fmt.Printf("  Days tracked:  %d\n", stats.DaysTracked)
		fmt.Printf("  Total intake:  %s\n", output.FormatAmount(stats.TotalIntake))
		fmt.Printf("  Daily average: %s\n", output.FormatAmount(stats.AverageIntake))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)

	historyCmd.Flags().IntP("offset", "o", 0, "Week offset (0 = this week, -1 = last week)")
	historyCmd.Flags().Bool("markdown", false, "Render as a markdown report")
	historyCmd.Flags().Bool("json", false, "Output as JSON")

	statsCmd.Flags().Int("days", 7, "Days before today to include")
	statsCmd.Flags().Bool("json", false, "Output as JSON")
}
