package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/notify"
	"spendwise/internal/session"
)

var (
	flagMemory bool
	flagQuiet  bool
)

// app is the state shared by every command for one invocation.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	backend  *backend.BackendResult
	recorder *notify.Recorder
	ctrl     *session.Controller
}

var current *app

var rootCmd = &cobra.Command{
	Use:               "spendwise",
	Short:             "Budget tracking with points, badges and challenges",
	Long:              "Track expenses against a monthly budget and earn points, badges and challenge rewards for staying on it.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if current != nil && !flagQuiet {
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderEvents(current.recorder.Events()))
		}
	},
	RunE: runDashboard,
}

// Execute is the main entry point called from main.go.
func Execute() {
	cli.LoadEnvFile()
	ctx, stop := cli.SignalContext(context.Background(), log.Discard())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if current != nil {
		if cerr := current.backend.Close(); cerr != nil {
			current.logger.Warn("Failed to close backend", log.FieldError, cerr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagMemory, "memory", false, "Use an in-memory store for this run")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Do not print unlocked achievements")
}

// setup loads config, opens the backend, loads state and applies any
// reward that became due since the last run.
func setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	if flagMemory {
		cfg.Backend = config.BackendMemory
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}

	catalog, err := cli.LoadCatalog(cfg)
	if err != nil {
		_ = res.Close()
		return err
	}

	recorder := &notify.Recorder{}
	ctrl := session.New(res.Store,
		session.WithLogger(logger.WithComponent(log.ComponentSession)),
		session.WithNotifier(notify.Multi{res.Notifier, recorder}),
		session.WithCatalog(catalog))

	current = &app{cfg: cfg, logger: logger, backend: res, recorder: recorder, ctrl: ctrl}

	return startSession(ctx, ctrl, time.Now(), cmd.ErrOrStderr())
}

// startSession loads stored state and applies rewards that became due. A
// persistence failure is reported on stderr and does not abort the command.
func startSession(ctx context.Context, ctrl *session.Controller, now time.Time, stderr io.Writer) error {
	if err := ctrl.Load(ctx); err != nil {
		var ce *core.CorruptStateError
		if !errors.As(err, &ce) {
			return fmt.Errorf("loading state: %w", err)
		}
		fmt.Fprintln(stderr, "  Stored data was unreadable and has been reset:", ce.Keys)
	}
	if _, err := ctrl.Refresh(ctx, now); err != nil {
		if !core.IsPersistence(err) {
			return err
		}
		fmt.Fprintln(stderr, unsavedWarning)
	}
	return nil
}

// requireProfile reports a friendly message when onboarding is needed.
func (a *app) requireProfile() error {
	if !a.ctrl.HasProfile() {
		return errors.New("no profile yet, run `spendwise onboard` first")
	}
	return nil
}

const unsavedWarning = "  Warning: the change could not be saved and will be lost on exit."

// saveFailed explains that the change holds only for this run.
func saveFailed(cmd *cobra.Command, err error) error {
	if core.IsPersistence(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), unsavedWarning)
	}
	return err
}
