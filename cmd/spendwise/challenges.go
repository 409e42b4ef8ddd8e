package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	"spendwise/internal/session"
)

var challengesCmd = &cobra.Command{
	Use:     "challenges",
	Aliases: []string{"challenge"},
	Short:   "List and join challenges",
	RunE:    runChallengesList,
}

var challengesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show joined challenges and the catalog",
	RunE:  runChallengesList,
}

var challengesJoinCmd = &cobra.Command{
	Use:   "join <id>",
	Short: "Start a challenge from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesJoin,
}

func init() {
	challengesCmd.AddCommand(challengesListCmd, challengesJoinCmd)
	rootCmd.AddCommand(challengesCmd)
}

func runChallengesList(cmd *cobra.Command, _ []string) error {
	a := current
	if err := a.requireProfile(); err != nil {
		return err
	}
	now := time.Now()
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), cli.RenderChallenges(a.ctrl.ChallengeViews(now), a.ctrl.Catalog(), now))
	return nil
}

func runChallengesJoin(cmd *cobra.Command, args []string) error {
	a := current
	if err := a.requireProfile(); err != nil {
		return err
	}
	ch, err := a.ctrl.JoinChallenge(cmd.Context(), args[0])
	switch {
	case errors.Is(err, session.ErrUnknownChallenge):
		return fmt.Errorf("unknown challenge %q, see `spendwise challenges list`", args[0])
	case errors.Is(err, session.ErrAlreadyJoined):
		return fmt.Errorf("challenge %q is already running", args[0])
	case err != nil:
		return saveFailed(cmd, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSuccess(fmt.Sprintf("Joined %s. It ends %s.",
		ch.Title, cli.FormatDate(ch.EndDate))))
	return nil
}
