package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/imageio"
)

// openAIVLM talks to any OpenAI-compatible chat endpoint. The default
// configuration points it at Gemini's compatibility endpoint using
// GOOGLE_API_KEY.
type openAIVLM struct {
	api   *openai.Client
	model string
}

func newOpenAIVLM(cfg *config.Config) *openAIVLM {
	client := openai.NewClient(
		option.WithAPIKey(cfg.GoogleAPIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(newHTTPClient(cfg)),
	)
	return &openAIVLM{api: &client, model: cfg.VLMModel}
}

func (v *openAIVLM) Generate(ctx context.Context, req VLMRequest) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Images)+1)
	for _, img := range req.Images {
		dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, imageio.EncodeBase64(img.Data))
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}))
	}
	parts = append(parts, openai.TextContentPart(req.Prompt))
	messages = append(messages, openai.UserMessage(parts))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(v.model),
		Messages: messages,
	}
	if req.WantJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := v.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
