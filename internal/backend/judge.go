package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/figgen/mcp-server/internal/imageio"
)

const judgeSystem = `You are a strict reviewer of scientific figures. You compare a
model-generated figure (image A) against a human-drawn reference (image B) for the same
methodology, and judge which better serves the paper.`

var judgeDimensions = []string{"faithfulness", "conciseness", "readability", "aesthetics"}

// EvaluateDiagram loads both images, asks the VLM judge for a structured
// verdict, and parses the four-dimension scores out of the response.
func (e *Engine) EvaluateDiagram(ctx context.Context, generatedPath, referencePath, sourceContext, caption string) (*EvaluationScores, error) {
	generated, genMIME, err := loadJudgeImage(generatedPath)
	if err != nil {
		return nil, fmt.Errorf("load generated image: %w", err)
	}
	reference, refMIME, err := loadJudgeImage(referencePath)
	if err != nil {
		return nil, fmt.Errorf("load reference image: %w", err)
	}

	prompt := fmt.Sprintf(`Image A is model-generated, image B is the human reference.

Methodology context:
%s

Caption: %s

Judge A against B on faithfulness, conciseness, readability, and aesthetics.
Reply with a JSON object of this exact shape:
{
  "faithfulness": {"winner": "A"|"B"|"tie", "reasoning": "..."},
  "conciseness":  {"winner": "A"|"B"|"tie", "reasoning": "..."},
  "readability":  {"winner": "A"|"B"|"tie", "reasoning": "..."},
  "aesthetics":   {"winner": "A"|"B"|"tie", "reasoning": "..."},
  "overall_winner": "A"|"B"|"tie",
  "overall_score": <0.0-1.0, fraction of dimensions won by A with ties counting half>
}`, sourceContext, caption)

	resp, err := e.vlm.Generate(ctx, VLMRequest{
		System: judgeSystem,
		Prompt: prompt,
		Images: []ImageInput{
			{MIMEType: genMIME, Data: generated},
			{MIMEType: refMIME, Data: reference},
		},
		WantJSON: true,
	})
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}

	scores, err := ParseScores(resp)
	if err != nil {
		return nil, fmt.Errorf("judge returned a malformed response: %w", err)
	}
	return scores, nil
}

func loadJudgeImage(path string) ([]byte, string, error) {
	data, err := imageio.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	mimeType, err := imageio.DetectMIMEType(path)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

// ParseScores extracts EvaluationScores from a judge response. The response
// may wrap the JSON object in prose or code fences; the first JSON object is
// used. Every dimension must be present with a winner.
func ParseScores(resp string) (*EvaluationScores, error) {
	doc := extractJSON(resp)
	if doc == "" || !gjson.Valid(doc) {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var scores EvaluationScores
	dims := map[string]*DimensionScore{
		"faithfulness": &scores.Faithfulness,
		"conciseness":  &scores.Conciseness,
		"readability":  &scores.Readability,
		"aesthetics":   &scores.Aesthetics,
	}
	for _, name := range judgeDimensions {
		d := gjson.Get(doc, name)
		if !d.Exists() {
			return nil, fmt.Errorf("missing dimension %q", name)
		}
		winner := d.Get("winner").String()
		if winner == "" {
			return nil, fmt.Errorf("dimension %q has no winner", name)
		}
		dims[name].Winner = winner
		dims[name].Reasoning = d.Get("reasoning").String()
	}

	scores.OverallWinner = gjson.Get(doc, "overall_winner").String()
	scores.OverallScore = gjson.Get(doc, "overall_score").Float()
	if scores.OverallWinner == "" {
		scores.OverallWinner = deriveOverallWinner(&scores)
	}
	return &scores, nil
}

// deriveOverallWinner falls back to a majority vote across dimensions when
// the judge omitted the aggregate field.
func deriveOverallWinner(s *EvaluationScores) string {
	var a, b int
	for _, d := range []DimensionScore{s.Faithfulness, s.Conciseness, s.Readability, s.Aesthetics} {
		switch strings.ToUpper(strings.TrimSpace(d.Winner)) {
		case "A":
			a++
		case "B":
			b++
		}
	}
	switch {
	case a > b:
		return "A"
	case b > a:
		return "B"
	}
	return "tie"
}

// extractJSON returns the first balanced top-level JSON object in s.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
