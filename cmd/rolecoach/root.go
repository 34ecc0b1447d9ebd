package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mentorinc/rolecoach/internal/projectconfig"
	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions carries state resolved once in PersistentPreRunE and shared by
// every subcommand.
type rootOptions struct {
	workDir string
	cfg     *projectconfig.ProjectConfig
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rolecoach",
		Short: "rolecoach - practise difficult conversations and get them scored",
		Long: `rolecoach runs role-play coaching simulations.

Operators practise a relationship-manager or people-manager conversation
against a simulated counterpart, then submit the transcript to a language
model judge that returns a 0-100 score, an explanation and advice on what
to improve. New simulations are metered per access code.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.workDir, "dir", "", "Directory to resolve .rolecoach.yaml and .env from (default: current directory)")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return opts.load()
	}

	// Add subcommands
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newScoreCommand(opts))
	cmd.AddCommand(newQuotaCommand(opts))
	cmd.AddCommand(newNewCommand(opts))
	cmd.AddCommand(newSessionsCommand(opts))

	return cmd
}

// load reads .env, then .rolecoach.yaml, then environment overrides.
func (o *rootOptions) load() error {
	dir := o.workDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}

	if err := projectconfig.LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return err
	}

	cfg, err := projectconfig.Load(dir)
	if err != nil {
		return err
	}
	if err := projectconfig.ApplyEnv(cfg); err != nil {
		return err
	}

	slog.Debug("Loaded configuration",
		"dir", cfg.Dir,
		"engine", cfg.Judge.Engine,
		"model", cfg.Judge.Model,
		"quotaDB", cfg.QuotaDBPath(),
		"sessions", cfg.SessionsDir())

	o.workDir = dir
	o.cfg = cfg
	return nil
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
