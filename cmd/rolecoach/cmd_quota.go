package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mentorinc/rolecoach/internal/quota"
	"github.com/spf13/cobra"
)

// quotaReport is the --json form of a quota read.
type quotaReport struct {
	AccessCode string `json:"accessCode,omitempty"`
	Phase      string `json:"phase"`
	Remaining  int    `json:"remaining"`
	Allotment  int    `json:"allotment"`
	CanStart   bool   `json:"canStart"`
}

func newQuotaCommand(opts *rootOptions) *cobra.Command {
	var accessCode string

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show or consume the simulation quota of an access code",
		Long: `Show or consume the simulation quota of an access code.

A new access code is given its allotment (quota.allotment, default 2) the
first time it is read; this also clears the local sessions. The quota is an
advisory, client-side limit.`,
	}
	cmd.PersistentFlags().StringVarP(&accessCode, "code", "c", "", "Access code")

	cmd.AddCommand(newQuotaShowCommand(opts, &accessCode))
	cmd.AddCommand(newQuotaConsumeCommand(opts, &accessCode))

	return cmd
}

func newQuotaShowCommand(opts *rootOptions, accessCode *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the remaining simulations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, closeStore, err := opts.openQuota(opts.sessionStore())
			if err != nil {
				return err
			}
			defer closeStore() //nolint:errcheck

			state, err := readQuota(cmd.Context(), mgr.Tracker(*accessCode))
			if err != nil {
				return err
			}
			return printQuota(cmd.OutOrStdout(), state, mgr.Allotment(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the quota as JSON")

	return cmd
}

func newQuotaConsumeCommand(opts *rootOptions, accessCode *string) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Use up one simulation",
		Long: `Use up one simulation of the access code, as starting a simulation does.
Consuming with no simulations left fails with exit code 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, closeStore, err := opts.openQuota(opts.sessionStore())
			if err != nil {
				return err
			}
			defer closeStore() //nolint:errcheck

			tracker := mgr.Tracker(*accessCode)
			state, err := readQuota(cmd.Context(), tracker)
			if err != nil {
				return err
			}
			if state.Phase() == quota.PhaseActive && state.Remaining == 0 {
				return &QuotaExhaustedError{AccessCode: state.AccessCode, Allotment: mgr.Allotment()}
			}
			if err := tracker.Consume(cmd.Context()); err != nil {
				return err
			}
			state, err = tracker.Read(cmd.Context())
			if err != nil {
				return err
			}
			return printQuota(cmd.OutOrStdout(), state, mgr.Allotment(), false)
		},
	}
}

func printQuota(w io.Writer, state quota.State, allotment int, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(quotaReport{
			AccessCode: state.AccessCode,
			Phase:      state.Phase().String(),
			Remaining:  state.Remaining,
			Allotment:  allotment,
			CanStart:   state.CanStart(),
		})
	}

	if line := formatRemaining(state, allotment); line != "" {
		_, err := fmt.Fprintln(w, line)
		return err
	}
	_, err := fmt.Fprintln(w, "No access code: quota is not enforced.")
	return err
}
