package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptScenario is a test hook for replacing the scenario picker in tests.
// It returns ok=false when no interactive choice was made.
var promptScenario = defaultPromptScenario

func defaultPromptScenario(in io.Reader, out io.Writer, preselected models.Scenario) (models.Scenario, bool, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", false, nil
	}

	options := make([]huh.Option[models.Scenario], 0, len(models.Scenarios))
	for _, s := range models.Scenarios {
		options = append(options, huh.NewOption(s.Title()+": "+s.Description(), s))
	}

	choice := preselected
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.Scenario]().
				Title("Choose a scenario").
				Options(options...).
				Value(&choice),
		),
	).WithInput(in).WithOutput(out).Run()
	if err != nil {
		return "", false, fmt.Errorf("scenario picker failed: %w", err)
	}
	return choice, true, nil
}

func newNewCommand(opts *rootOptions) *cobra.Command {
	var (
		accessCode   string
		scenarioFlag string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new simulation",
		Long: `Start a new role-play simulation.

With an access code, a simulation can only start while the code has
simulations remaining; starting one uses one up. Without an access code the
quota is not enforced.

When running in a terminal and --scenario is not given, an interactive picker
offers the Relationship Manager and People Manager scenarios.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessions := opts.sessionStore()

			mgr, closeStore, err := opts.openQuota(sessions)
			if err != nil {
				return err
			}
			defer closeStore() //nolint:errcheck

			tracker := mgr.Tracker(accessCode)
			state, err := readQuota(ctx, tracker)
			if err != nil {
				return err
			}
			if !state.CanStart() {
				return &QuotaExhaustedError{AccessCode: state.AccessCode, Allotment: mgr.Allotment()}
			}

			scenario, err := opts.defaultScenario()
			if err != nil {
				return err
			}
			if scenarioFlag != "" {
				if scenario, err = models.ParseScenario(scenarioFlag); err != nil {
					return err
				}
			} else if picked, ok, err := promptScenario(cmd.InOrStdin(), cmd.OutOrStdout(), scenario); err != nil {
				return err
			} else if ok {
				scenario = picked
			}

			sess, err := sessions.Create(scenario)
			if err != nil {
				return err
			}

			if err := tracker.Consume(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Started %s simulation %s\n", scenario.Title(), sess.ID) //nolint:errcheck
			fmt.Fprintln(out, scenario.Description())                               //nolint:errcheck

			if state.AccessCode != "" {
				after, err := tracker.Read(ctx)
				if err != nil {
					return err
				}
				if line := formatRemaining(after, mgr.Allotment()); line != "" {
					fmt.Fprintln(out, line) //nolint:errcheck
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&accessCode, "code", "c", "", "Access code")
	cmd.Flags().StringVar(&scenarioFlag, "scenario", "", "Scenario: relationship-manager (rm) or people-manager (pm)")

	return cmd
}
