package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess        = 0 // Command completed
	ExitQuotaExhausted = 1 // No simulations left for the access code
	ExitError          = 2 // Configuration, judge or storage error
)

// QuotaExhaustedError indicates that a new simulation was refused because the
// access code has no simulations remaining.
type QuotaExhaustedError struct {
	AccessCode string
	Allotment  int
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("no simulations remaining for access code %q (0 / %d)", e.AccessCode, e.Allotment)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exhausted *QuotaExhaustedError
	if errors.As(err, &exhausted) {
		return ExitQuotaExhausted
	}
	return ExitError
}
