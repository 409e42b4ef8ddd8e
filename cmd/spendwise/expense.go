package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
)

var expenseIn cli.ExpenseInput

var addCmd = &cobra.Command{
	Use:   "add [amount] [description]",
	Short: "Log an expense",
	Example: `  spendwise add 15000 Lunch --category food
  spendwise add`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&expenseIn.Category, "category", "c", "", "Category: food, transport, entertainment, shopping, bills, health, education, other")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a := current
	if err := a.requireProfile(); err != nil {
		return err
	}

	in := expenseIn
	if len(args) > 0 {
		in.Amount = args[0]
	}
	if len(args) > 1 {
		in.Description = args[1]
	}
	if in.Amount == "" || in.Description == "" || in.Category == "" {
		var err error
		if in, err = cli.ExpenseForm(in); err != nil {
			return err
		}
	}

	amount, category, err := in.Parse()
	if err != nil {
		return err
	}

	e, err := a.ctrl.AppendExpense(cmd.Context(), amount, category, in.Description)
	if err != nil {
		return saveFailed(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSuccess(fmt.Sprintf("Logged %s for %s (%s).",
		cli.FormatAmount(e.Amount, a.cfg.Currency), e.Description, e.Category)))
	return nil
}
