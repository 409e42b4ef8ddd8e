package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/session"
)

var goalIn cli.GoalInput

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage savings goals",
}

var goalAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a savings goal",
	Example: `  spendwise goal add --title Laptop --target 2500000 --by 2025-12-31`,
	RunE:    runGoalAdd,
}

var goalContributeCmd = &cobra.Command{
	Use:   "contribute <goal-id> <amount>",
	Short: "Put money towards a savings goal",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalContribute,
}

func init() {
	goalAddCmd.Flags().StringVar(&goalIn.Title, "title", "", "What you are saving for")
	goalAddCmd.Flags().StringVar(&goalIn.Target, "target", "", "Target amount")
	goalAddCmd.Flags().StringVar(&goalIn.TargetDate, "by", "", "Target date (YYYY-MM-DD)")
	goalCmd.AddCommand(goalAddCmd, goalContributeCmd)
	rootCmd.AddCommand(goalCmd)
}

func runGoalAdd(cmd *cobra.Command, _ []string) error {
	a := current
	if err := a.requireProfile(); err != nil {
		return err
	}

	in := goalIn
	if in.Title == "" || in.Target == "" || in.TargetDate == "" {
		var err error
		if in, err = cli.GoalForm(in); err != nil {
			return err
		}
	}
	target, err := core.ParseAmount(in.Target)
	if err != nil {
		return &core.ValidationError{Field: "targetAmount", Err: err}
	}
	by, err := cli.ParseDate(in.TargetDate, time.Local)
	if err != nil {
		return &core.ValidationError{Field: "targetDate", Err: err}
	}

	g, err := a.ctrl.AddSavingsGoal(cmd.Context(), in.Title, target, by)
	if err != nil {
		return saveFailed(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSuccess(fmt.Sprintf("Saving %s for %s (id %s).",
		cli.FormatAmount(g.TargetAmount, a.cfg.Currency), g.Title, g.ID)))
	return nil
}

func runGoalContribute(cmd *cobra.Command, args []string) error {
	a := current
	if err := a.requireProfile(); err != nil {
		return err
	}
	amount, err := core.ParseAmount(args[1])
	if err != nil {
		return &core.ValidationError{Field: "amount", Err: err}
	}

	g, err := a.ctrl.ContributeToGoal(cmd.Context(), args[0], amount)
	if errors.Is(err, session.ErrUnknownGoal) {
		return fmt.Errorf("no savings goal with id %q, see `spendwise profile`", args[0])
	}
	if err != nil {
		return saveFailed(cmd, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderSuccess(fmt.Sprintf("%s: %s of %s saved.", g.Title,
		cli.FormatAmount(g.CurrentAmount, a.cfg.Currency),
		cli.FormatAmount(g.TargetAmount, a.cfg.Currency))))
	ratio, _ := g.CurrentAmount.Div(g.TargetAmount).Float64()
	fmt.Fprintln(out, "  "+cli.RenderProgressBar(ratio, 30))
	return nil
}
