package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/budget"
	"spendwise/internal/cli"
)

var onboardIn cli.OnboardInput

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Create your profile and monthly budget",
	RunE:  runOnboard,
}

func init() {
	onboardCmd.Flags().StringVar(&onboardIn.Name, "name", "", "Your name")
	onboardCmd.Flags().StringVar(&onboardIn.Email, "email", "", "Your email")
	onboardCmd.Flags().StringVar(&onboardIn.MonthlyIncome, "income", "", "Monthly income")
	onboardCmd.Flags().StringVar(&onboardIn.MonthlyBudget, "budget", "", "Monthly budget (at most the income)")
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	a := current
	if a.ctrl.HasProfile() {
		return fmt.Errorf("a profile already exists, run `spendwise reset --yes` to start over")
	}

	in := onboardIn
	if in.Name == "" || in.Email == "" || in.MonthlyIncome == "" || in.MonthlyBudget == "" {
		var err error
		if in, err = cli.OnboardForm(in); err != nil {
			return err
		}
	}
	income, monthlyBudget, err := in.Parse()
	if err != nil {
		return err
	}

	p, err := a.ctrl.CreateProfile(cmd.Context(), in.Name, in.Email, income, monthlyBudget)
	if err != nil {
		return saveFailed(cmd, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderSuccess(fmt.Sprintf("Welcome, %s! Your daily budget is %s.",
		p.Name, cli.FormatAmount(budget.DailyBudget(p.MonthlyBudget), a.cfg.Currency))))
	fmt.Fprintln(out, "  Log your first expense with `spendwise add`.")
	return nil
}
