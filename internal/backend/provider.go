package backend

import (
	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/faults"
)

// NewVLM selects the judge/planner provider named by the configuration.
// Credential presence is already enforced by config.Resolve, so selection here
// only guards against provider names added to config but not wired up.
func NewVLM(cfg *config.Config) (VLM, error) {
	switch cfg.VLMProvider {
	case config.ProviderGemini:
		return newOpenAIVLM(cfg), nil
	case config.ProviderAnthropic:
		return newAnthropicVLM(cfg), nil
	}
	return nil, faults.Configuration("unknown VLM provider %q", cfg.VLMProvider)
}
