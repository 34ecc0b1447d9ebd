package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/mentorinc/rolecoach/internal/scoring"
	"github.com/mentorinc/rolecoach/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptConfirm is a test hook for replacing the confirmation prompt in tests.
// Takes reader, writer, and question string. Returns true for yes.
var promptConfirm = defaultPromptConfirm

func defaultPromptConfirm(in io.Reader, out io.Writer, question string) bool {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}

	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithInput(in).WithOutput(out).Run()

	if err != nil {
		return false
	}
	return confirmed
}

func newSessionsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Manage local simulation sessions",
	}

	cmd.AddCommand(newSessionsListCommand(opts))
	cmd.AddCommand(newSessionsShowCommand(opts))
	cmd.AddCommand(newSessionsAppendCommand(opts))
	cmd.AddCommand(newSessionsClearCommand(opts))

	return cmd
}

const sessionIDWidth = 8

func newSessionsListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := opts.sessionStore().List()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(w, "No sessions.") //nolint:errcheck
				return nil
			}

			fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
				padRight("ID", sessionIDWidth), padRight("SCENARIO", 22), padRight("TURNS", 5), "UPDATED")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s  %s  %s  %s\n", //nolint:errcheck
					padRight(shortID(s.ID), sessionIDWidth),
					padRight(s.Scenario.Title(), 22),
					padRight(fmt.Sprint(len(s.Messages.Judged())), 5),
					s.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newSessionsShowCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.sessionStore().Get(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(session.TranscriptFile{Messages: sess.Messages, Scenario: sess.Scenario})
			}

			fmt.Fprintf(w, "Session %s (%s)\n\n", sess.ID, sess.Scenario.Title()) //nolint:errcheck
			labels := scoring.LabelsFor(sess.Scenario)
			for _, turn := range sess.Messages {
				if turn.Role == models.RoleSystem {
					fmt.Fprintf(w, "[%s]\n", turn.Text) //nolint:errcheck
					continue
				}
				fmt.Fprintf(w, "%s: %s\n", labels.Label(turn.Role), turn.Text) //nolint:errcheck
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the transcript in the scoring request format")

	return cmd
}

func newSessionsAppendCommand(opts *rootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "append <id> <text...>",
		Short: "Add a turn to a session",
		Long: `Add a turn to a session.

--role is "operator" (alias "user", the human practising) or "counterpart"
(alias "assistant", the simulated client or direct report).`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return errors.New("turn text must not be empty")
			}

			sess, err := opts.sessionStore().Append(args[0], models.Turn{Role: r, Text: text})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s now has %d turns\n", shortID(sess.ID), len(sess.Messages.Judged())) //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "operator", "Who is speaking: operator or counterpart")

	return cmd
}

func newSessionsClearCommand(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all local sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.sessionStore()
			if !force && !promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Delete all sessions in "+store.Dir()+"?") {
				return errors.New("refusing to clear sessions without confirmation (use --force)")
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sessions cleared.") //nolint:errcheck
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")

	return cmd
}

func parseRole(s string) (models.Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "operator", "user", "":
		return models.RoleOperator, nil
	case "counterpart", "assistant":
		return models.RoleCounterpart, nil
	default:
		return "", fmt.Errorf("unknown role %q (want operator or counterpart)", s)
	}
}

func shortID(id string) string {
	if len(id) <= sessionIDWidth {
		return id
	}
	return id[:sessionIDWidth]
}
