package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/mentorinc/rolecoach/internal/scoring"
	"github.com/mentorinc/rolecoach/internal/session"
	"github.com/mentorinc/rolecoach/internal/spinner"
	"github.com/mentorinc/rolecoach/internal/webapi"
	"github.com/spf13/cobra"
)

func newScoreCommand(opts *rootOptions) *cobra.Command {
	var (
		sessionID    string
		scenarioFlag string
		asJSON       bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "score [transcript-file]",
		Short: "Score a transcript with the judge",
		Long: `Score a role-play transcript with the configured judge.

The transcript comes from a JSON or YAML file (the same body the HTTP API
accepts, or a bare list of turns) or from a local session with --session.

Scenario precedence: --scenario, then the file or session, then
scoring.default_scenario.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (sessionID != "") {
				return errors.New("provide either a transcript file or --session")
			}

			var (
				transcript models.Transcript
				fromSource models.Scenario
			)
			if sessionID != "" {
				sess, err := opts.sessionStore().Get(sessionID)
				if err != nil {
					return err
				}
				transcript, fromSource = sess.Messages, sess.Scenario
			} else {
				tf, err := session.ReadTranscriptFile(args[0])
				if err != nil {
					return err
				}
				transcript, fromSource = tf.Messages, tf.Scenario
			}

			scenario, err := opts.scenarioOr(scenarioFlag, fromSource)
			if err != nil {
				return err
			}

			if dryRun {
				instruction, err := scoring.BuildInstruction(scoring.RenderTranscript(transcript, scenario), scenario)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), instruction) //nolint:errcheck
				return nil
			}

			scorer, err := opts.newScorer()
			if err != nil {
				return err
			}

			stop := spinner.StartIfTerminal(cmd.ErrOrStderr(), "Scoring transcript...")
			result, err := scorer.Score(cmd.Context(), transcript, scenario)
			stop()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(webapi.ScoreResponse{Score: result})
			}
			printScoreReport(cmd.OutOrStdout(), scenario, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Score a local session by ID (or unique ID prefix)")
	cmd.Flags().StringVar(&scenarioFlag, "scenario", "", "Scenario: relationship-manager (rm) or people-manager (pm)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the verdict as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the judge instruction without calling the judge")

	return cmd
}

const reportLabelWidth = 13

func printScoreReport(w io.Writer, scenario models.Scenario, result *models.ScoreResult) {
	improve := "Nothing to improve."
	if result.ToImprove != nil {
		improve = *result.ToImprove
	}

	rows := [][2]string{
		{"Scenario", scenario.Title()},
		{"Score", fmt.Sprintf("%d / 100", result.Score)},
		{"Explanation", result.Explanation},
		{"To improve", improve},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s%s\n", padRight(row[0], reportLabelWidth), indentContinuation(row[1], reportLabelWidth)) //nolint:errcheck
	}
}

// indentContinuation aligns the continuation lines of a multi-line value with
// the value column.
func indentContinuation(s string, width int) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n"+strings.Repeat(" ", width))
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
