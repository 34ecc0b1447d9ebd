package scoring

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mentorinc/rolecoach/internal/models"
)

const fence = "```"

const instructionTemplate = `
{{.Task}}

Here's how:
1. Analyze the reply
2. Give it a score between 0 - 100. 0 means it's a bad reply (inappropriate, unethical, etc.), 100 means it's a very good reply.
3. Give some explanation why you choose that score. If the score is not perfect, give improvement suggestions to the {{.Addressee}}.
4. Your answer should be a JSON object which conforms to the following typescript schema:
type Output = {
  score: {
    score: number;
    explanation: string;
    toImprove: string | null;
  };
}

The conversation: ` + fence + `{{.Conversation}}` + fence + `

You only speak JSON. Do NOT write text that isn't JSON. I repeat: DO NOT write text that isn't JSON.
`

type framing struct {
	Task      string
	Addressee string
}

var framings = map[models.Scenario]framing{
	models.ScenarioRelationshipManager: {
		Task:      "Your task is to assess the quality of replies by a relationship manager (RM) talking with his/her client.",
		Addressee: "RM",
	},
	models.ScenarioPeopleManager: {
		Task:      "Your task is to assess the quality of replies by a people manager communicating performance review result to his/her direct report.",
		Addressee: "People Manager",
	},
}

type instructionData struct {
	Task         string
	Addressee    string
	Conversation string
}

var instructionTmpl = template.Must(template.New("instruction").Option("missingkey=error").Parse(instructionTemplate))

// BuildInstruction renders the judge instruction for an already rendered
// conversation.
func BuildInstruction(conversation string, scenario models.Scenario) (string, error) {
	f, ok := framings[scenario]
	if !ok {
		f = framings[models.DefaultScenario]
	}

	var sb strings.Builder
	err := instructionTmpl.Execute(&sb, instructionData{
		Task:         f.Task,
		Addressee:    f.Addressee,
		Conversation: conversation,
	})
	if err != nil {
		return "", fmt.Errorf("rendering judge instruction: %w", err)
	}
	return sb.String(), nil
}
