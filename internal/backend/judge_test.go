package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figgen/mcp-server/internal/backend"
)

const goodJudgeResponse = `{
  "faithfulness": {"winner": "A", "reasoning": "captures all pipeline stages"},
  "conciseness":  {"winner": "B", "reasoning": "reference omits redundant arrows"},
  "readability":  {"winner": "A", "reasoning": "larger labels"},
  "aesthetics":   {"winner": "A", "reasoning": "cleaner layout"},
  "overall_winner": "A",
  "overall_score": 0.75
}`

func TestParseScores_FullResponse(t *testing.T) {
	scores, err := backend.ParseScores(goodJudgeResponse)
	require.NoError(t, err)

	assert.Equal(t, "A", scores.Faithfulness.Winner)
	assert.Equal(t, "B", scores.Conciseness.Winner)
	assert.Equal(t, "A", scores.Readability.Winner)
	assert.Equal(t, "A", scores.Aesthetics.Winner)
	assert.Equal(t, "captures all pipeline stages", scores.Faithfulness.Reasoning)
	assert.Equal(t, "A", scores.OverallWinner)
	assert.InDelta(t, 0.75, scores.OverallScore, 1e-9)
}

func TestParseScores_WrappedInProseAndFences(t *testing.T) {
	resp := "Here is my verdict:\n```json\n" + goodJudgeResponse + "\n```\nLet me know."
	scores, err := backend.ParseScores(resp)
	require.NoError(t, err)
	assert.Equal(t, "A", scores.OverallWinner)
}

func TestParseScores_MissingDimension(t *testing.T) {
	resp := `{"faithfulness": {"winner": "A", "reasoning": "x"}}`
	_, err := backend.ParseScores(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conciseness")
}

func TestParseScores_NoJSON(t *testing.T) {
	_, err := backend.ParseScores("I cannot judge these images.")
	require.Error(t, err)
}

func TestParseScores_DerivesOverallWinner(t *testing.T) {
	resp := `{
	  "faithfulness": {"winner": "B", "reasoning": "r"},
	  "conciseness":  {"winner": "B", "reasoning": "r"},
	  "readability":  {"winner": "A", "reasoning": "r"},
	  "aesthetics":   {"winner": "tie", "reasoning": "r"}
	}`
	scores, err := backend.ParseScores(resp)
	require.NoError(t, err)
	assert.Equal(t, "B", scores.OverallWinner)
}
