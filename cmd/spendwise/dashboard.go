package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show this month's budget, level and recent expenses",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	a := current
	if err := a.requireProfile(); err != nil {
		return err
	}
	d, err := a.ctrl.DashboardView(time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderDashboard(d, a.cfg.Currency))
	return nil
}
