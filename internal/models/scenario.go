package models

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownScenario is returned when a scenario tag cannot be parsed.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario selects the judge framing and the role labels used for a transcript.
type Scenario string

const (
	ScenarioRelationshipManager Scenario = "relationship-manager"
	ScenarioPeopleManager       Scenario = "people-manager"

	// DefaultScenario applies when a request does not name a scenario.
	DefaultScenario = ScenarioRelationshipManager
)

// Scenarios lists every supported scenario, in display order.
var Scenarios = []Scenario{ScenarioRelationshipManager, ScenarioPeopleManager}

// ParseScenario accepts either the full tag or the short code ("rm", "pm").
// An empty string yields [DefaultScenario].
func ParseScenario(s string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultScenario, nil
	case "rm", string(ScenarioRelationshipManager):
		return ScenarioRelationshipManager, nil
	case "pm", string(ScenarioPeopleManager):
		return ScenarioPeopleManager, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScenario, s)
	}
}

// ShortCode returns the compact wire form of the scenario.
func (s Scenario) ShortCode() string {
	if s == ScenarioPeopleManager {
		return "pm"
	}
	return "rm"
}

// Title is the human readable scenario name, e.g. "Relationship Manager".
func (s Scenario) Title() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "-", " "))
}

// Description is the one-line brief shown when picking a scenario.
func (s Scenario) Description() string {
	if s == ScenarioPeopleManager {
		return "You are a People Manager. Communicate performance review results to your direct report."
	}
	return "You are a Relationship Manager. Answer your client inquiries."
}

// UnmarshalText lets scenarios be decoded from JSON, YAML and flags using
// [ParseScenario].
func (s *Scenario) UnmarshalText(text []byte) error {
	parsed, err := ParseScenario(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
