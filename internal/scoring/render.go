package scoring

import (
	"strings"

	"github.com/mentorinc/rolecoach/internal/models"
)

// unknownRoleLabel is used for turns from neither party, whatever the scenario.
const unknownRoleLabel = "Human"

// RoleLabels names the two parties of a scenario as they appear to the judge.
type RoleLabels struct {
	Operator    string
	Counterpart string
}

var roleLabels = map[models.Scenario]RoleLabels{
	models.ScenarioRelationshipManager: {Operator: "Relationship Manager", Counterpart: "Client"},
	models.ScenarioPeopleManager:       {Operator: "People Manager", Counterpart: "Direct Report"},
}

// LabelsFor returns the role labels for scenario, falling back to the default
// scenario's labels.
func LabelsFor(scenario models.Scenario) RoleLabels {
	if labels, ok := roleLabels[scenario]; ok {
		return labels
	}
	return roleLabels[models.DefaultScenario]
}

// Label returns the prose label for a turn's role.
func (l RoleLabels) Label(role models.Role) string {
	switch role {
	case models.RoleOperator:
		return l.Operator
	case models.RoleCounterpart:
		return l.Counterpart
	default:
		return unknownRoleLabel
	}
}

// RenderTranscript turns the judged part of a transcript into newline separated
// "<Label>: <text>" lines. A transcript with only system turns renders as "".
func RenderTranscript(transcript models.Transcript, scenario models.Scenario) string {
	labels := LabelsFor(scenario)
	judged := transcript.Judged()

	lines := make([]string, 0, len(judged))
	for _, turn := range judged {
		lines = append(lines, labels.Label(turn.Role)+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}
