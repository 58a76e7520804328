package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/figgen/mcp-server/internal/config"
)

// imageGen renders images through the OpenAI-compatible images endpoint.
type imageGen struct {
	api   *openai.Client
	model string
}

func newImageGen(cfg *config.Config) *imageGen {
	client := openai.NewClient(
		option.WithAPIKey(cfg.GoogleAPIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(newHTTPClient(cfg)),
	)
	return &imageGen{api: &client, model: cfg.ImageModel}
}

// Render generates one image for prompt and returns the raw PNG bytes.
func (g *imageGen) Render(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(g.model),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("image endpoint returned no data")
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("image endpoint returned an empty payload")
	}
	return raw, nil
}
