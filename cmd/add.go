package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcus/sip/internal/models"
	"github.com/marcus/sip/internal/output"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Log a drink",
	Long: `Log water intake. Amount is millilitres ("330", "500ml"), litres ("1.5L")
or a preset (250ml, 500ml, 750ml, 1L).`,
	Example: `  sip add 250
  sip add 1L
  sip add 500 --date yesterday`,
	GroupID: "track",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

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
		ts, err := timestampFor(day, time.Now(), a.loc)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		goal := a.tracker.DailyGoal(ctx, day)
		stored, before, err := a.tracker.AddIntakeTotal(ctx, models.WaterIntake{Amount: amount, Timestamp: ts, Date: day})
		if err != nil {
			output.Error("failed to add intake: %v", err)
			return err
		}

		after := before + amount
		output.Success("ADDED %s %s", output.ShortID(stored.ID), output.FormatAmount(amount))
		fmt.Printf("%s  %s / %s  %s\n",
			day,
			output.FormatAmount(after),
			output.FormatAmount(goal),
			output.FormatPercent(models.Percentage(after, goal)))

		if day == a.tracker.Today() && a.afterAdd(ctx, before, after, goal) {
			output.Success("Daily goal reached!")
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <intake-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a logged drink",
	Long:    `Remove an intake by id. A unique id prefix (as shown by 'sip today') is enough.`,
	GroupID: "track",
	Args:    cobra.ExactArgs(1),
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

		intakes, err := a.tracker.LoadIntake(ctx, day)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		id, err := matchIntakeID(intakes, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		removed, err := a.tracker.RemoveIntake(ctx, id, day)
		if err != nil {
			output.Error("failed to remove %s: %v", args[0], err)
			return err
		}
		if !removed {
			output.Warning("%s was already gone", args[0])
			return nil
		}
		fmt.Printf("REMOVED %s\n", output.ShortID(id))
		return nil
	},
}

// matchIntakeID resolves a full id or unique prefix against the day's intakes
func matchIntakeID(intakes []models.WaterIntake, ref string) (string, error) {
	var matches []string
	for _, in := range intakes {
		if in.ID == ref {
			return in.ID, nil
		}
		if strings.HasPrefix(in.ID, ref) {
			matches = append(matches, in.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no intake %q on this day", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("intake id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	addDateFlag(addCmd)
	addDateFlag(removeCmd)
}
