package scoring

import (
	"testing"

	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict_RoundTrip(t *testing.T) {
	got, err := ParseVerdict(`{"score":{"score":80,"explanation":"Clear and empathetic","toImprove":null}}`)
	require.NoError(t, err)
	assert.Equal(t, &models.ScoreResult{Score: 80, Explanation: "Clear and empathetic", ToImprove: nil}, got)
}

func TestParseVerdict_WithImprovement(t *testing.T) {
	got, err := ParseVerdict(`{"score":{"score":62.6,"explanation":"Okay","toImprove":"Acknowledge the delay first."}}`)
	require.NoError(t, err)
	assert.Equal(t, 63, got.Score)
	require.NotNil(t, got.ToImprove)
	assert.Equal(t, "Acknowledge the delay first.", *got.ToImprove)
}

func TestParseVerdict_MissingToImproveIsNull(t *testing.T) {
	got, err := ParseVerdict(`{"score":{"score":100,"explanation":"Flawless"}}`)
	require.NoError(t, err)
	assert.Nil(t, got.ToImprove)
	assert.True(t, got.Perfect())
}

func TestParseVerdict_Malformed(t *testing.T) {
	tests := map[string]string{
		"prose":            `Sorry, I can't help.`,
		"empty":            ``,
		"prose after json": `{"score":{"score":80,"explanation":"ok"}} Hope this helps!`,
		"fenced":           "```json\n{\"score\":{\"score\":80,\"explanation\":\"ok\"}}\n```",
		"not nested":       `{"score":80,"explanation":"ok","toImprove":null}`,
		"missing score":    `{"score":{"explanation":"ok"}}`,
		"missing reason":   `{"score":{"score":80}}`,
		"above range":      `{"score":{"score":150,"explanation":"ok"}}`,
		"below range":      `{"score":{"score":-1,"explanation":"ok"}}`,
		"string score":     `{"score":{"score":"80","explanation":"ok"}}`,
		"numeric improve":  `{"score":{"score":80,"explanation":"ok","toImprove":5}}`,
		"array":            `[1,2,3]`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseVerdict(raw)
			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, got)
		})
	}
}
