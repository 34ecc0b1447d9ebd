package scoring

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const verdictSchemaURL = "judge-verdict.json"

// verdictSchema is the shape the judge must answer with: the ScoreResult
// nested under a "score" key.
const verdictSchema = `{
  "type": "object",
  "required": ["score"],
  "properties": {
    "score": {
      "type": "object",
      "required": ["score", "explanation"],
      "properties": {
        "score": {"type": "number", "minimum": 0, "maximum": 100},
        "explanation": {"type": "string"},
        "toImprove": {"type": ["string", "null"]}
      }
    }
  }
}`

var compileVerdictSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(verdictSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse verdict schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(verdictSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add verdict schema resource: %w", err)
	}

	return compiler.Compile(verdictSchemaURL)
})

type verdict struct {
	Score struct {
		Score       float64 `mapstructure:"score"`
		Explanation string  `mapstructure:"explanation"`
		ToImprove   *string `mapstructure:"toImprove"`
	} `mapstructure:"score"`
}

// ParseVerdict parses the judge's raw output. Anything that is not a single
// JSON document matching the verdict schema is reported as
// [ErrMalformedResponse]; nothing is repaired or defaulted.
func ParseVerdict(raw string) (*models.ScoreResult, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %w", ErrMalformedResponse, err)
	}

	schema, err := compileVerdictSchema()
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var v verdict
	if err := mapstructure.Decode(doc, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &models.ScoreResult{
		Score:       int(math.Round(v.Score.Score)),
		Explanation: v.Score.Explanation,
		ToImprove:   v.Score.ToImprove,
	}, nil
}
