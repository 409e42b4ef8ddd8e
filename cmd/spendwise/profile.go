package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/session"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	RunE:  runProfileShow,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show profile, badges and savings goals",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:     "update",
	Short:   "Change name, email, income or budget",
	Example: `  spendwise profile update --budget 1200000`,
	RunE:    runProfileUpdate,
}

func init() {
	profileUpdateCmd.Flags().String("name", "", "New name")
	profileUpdateCmd.Flags().String("email", "", "New email")
	profileUpdateCmd.Flags().String("income", "", "New monthly income")
	profileUpdateCmd.Flags().String("budget", "", "New monthly budget")
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	a := current
	p, err := a.ctrl.Profile()
	if errors.Is(err, session.ErrNoProfile) {
		return a.requireProfile()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderProfile(p, a.cfg.Currency))
	return nil
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	a := current
	if err := a.requireProfile(); err != nil {
		return err
	}

	var u session.ProfileUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		u.Name = &v
	}
	if flags.Changed("email") {
		v, _ := flags.GetString("email")
		u.Email = &v
	}
	if flags.Changed("income") {
		v, _ := flags.GetString("income")
		income, err := core.ParseAmount(v)
		if err != nil {
			return &core.ValidationError{Field: "monthlyIncome", Err: core.ErrInvalidIncome}
		}
		u.MonthlyIncome = &income
	}
	if flags.Changed("budget") {
		v, _ := flags.GetString("budget")
		monthlyBudget, err := core.ParseAmount(v)
		if err != nil {
			return &core.ValidationError{Field: "monthlyBudget", Err: core.ErrInvalidBudget}
		}
		u.MonthlyBudget = &monthlyBudget
	}
	if u == (session.ProfileUpdate{}) {
		return errors.New("nothing to update, pass at least one of --name, --email, --income, --budget")
	}

	p, err := a.ctrl.UpdateProfile(cmd.Context(), u)
	if err != nil {
		return saveFailed(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSuccess("Profile updated."))
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderProfile(p, a.cfg.Currency))
	return nil
}
