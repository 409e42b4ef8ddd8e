package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the profile, expenses and challenges",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	a := current
	if !flagResetYes {
		ok, err := cli.ConfirmForm("Delete all SpendWise data? This cannot be undone.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "  Nothing deleted.")
			return nil
		}
	}
	if err := a.ctrl.Reset(cmd.Context()); err != nil {
		return saveFailed(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSuccess("All data deleted."))
	return nil
}
