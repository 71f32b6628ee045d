// Package cli implements vexctl, a terminal client for the ticket views.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vex-labs/ticket-view/internal/bootstrap"
	"github.com/vex-labs/ticket-view/internal/config"
	"github.com/vex-labs/ticket-view/internal/observability"
	"github.com/vex-labs/ticket-view/internal/service"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
)

var version = "dev"

// app carries the global flags and the lazily opened backend.
type app struct {
	cfgFile string
	format  string
	verbose bool

	out    io.Writer
	errOut io.Writer

	cfg     *config.Config
	logger  *zap.Logger
	backend *bootstrap.Backend
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the vexctl command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:           "vexctl",
		Short:         "Browse and triage VEX support tickets",
		Long:          `vexctl reads tickets and users from the VEX ticket service or a local mirror and renders them the way the dashboard does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.vexctl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.format, "output", "o", "", "output format: table, json or yaml (default table on a terminal, json otherwise)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log backend activity to stderr")

	rootCmd.AddCommand(
		newTicketsCommand(a),
		newTicketCommand(a),
		newStatusCommand(a),
		newAssignCommand(a),
		newMessageCommand(a),
		newCreateCommand(a),
		newUpdateCommand(a),
		newDeleteCommand(a),
		newUsersCommand(a),
		newUserCommand(a),
		newStatsCommand(a),
		newImportCommand(a),
		newConfigCommand(a),
	)
	return rootCmd
}

// loadConfig loads and validates configuration. Commands that read tickets
// call this.
func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	settings, err := LoadSettings(a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	cfg, err := settings.Config(level)
	if err != nil {
		return fmt.Errorf("%w\nEdit %s or set VEX_* environment variables", err, a.configPath())
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// viewService opens the configured source and returns a service over it.
func (a *app) viewService(ctx context.Context) (*service.ViewService, error) {
	if err := a.loadConfig(); err != nil {
		return nil, err
	}
	backend, err := bootstrap.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.backend = backend

	loc, err := a.cfg.View.Location()
	if err != nil {
		return nil, err
	}
	return service.NewViewService(service.ViewDependencies{
		Tickets:         backend.Source,
		Users:           backend.Source,
		Commander:       backend.Commander,
		UserCommander:   backend.UserCommander,
		Invalidator:     backend.Invalidator(),
		Logger:          a.logger,
		Options:         viewmodel.Options{Location: loc, DateLayout: a.cfg.View.DateLayout},
		DefaultPageSize: a.cfg.View.DefaultPageSize,
	}), nil
}

// run wraps a command body so the backend is released however it ends.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.close()
		return fn(cmd, args)
	}
}

func (a *app) outputFormat() (string, error) {
	return parseFormat(a.format, a.out)
}

func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return DefaultPath()
}

func (a *app) close() {
	if a.backend != nil {
		a.backend.Close()
		a.backend = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
