package backend

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/imageio"
)

// defaultAnthropicModel is used when the configured VLM model is not an
// Anthropic one (e.g. the Gemini default was left in place).
const defaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// anthropicVLM is the alternative judge provider backed by the Anthropic API.
type anthropicVLM struct {
	api   *anthropic.Client
	model anthropic.Model
}

func newAnthropicVLM(cfg *config.Config) *anthropicVLM {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(newHTTPClient(cfg)),
	)
	model := defaultAnthropicModel
	if strings.HasPrefix(cfg.VLMModel, "claude") {
		model = anthropic.Model(cfg.VLMModel)
	}
	return &anthropicVLM{api: &client, model: model}
}

func (v *anthropicVLM) Generate(ctx context.Context, req VLMRequest) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Images)+1)
	for _, img := range req.Images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(img.MIMEType, imageio.EncodeBase64(img.Data)))
	}
	prompt := req.Prompt
	if req.WantJSON {
		prompt += "\n\nRespond with a single JSON object and nothing else."
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	params := anthropic.MessageNewParams{
		Model:     v.model,
		MaxTokens: 4096,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := v.api.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String(), nil
}
