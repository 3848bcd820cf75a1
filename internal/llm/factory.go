package llm

import (
	"fmt"
	"metagen/internal/entity"
	"strings"
)

// NewService instantiates a MetadataService for a provider kind.
func NewService(kind entity.ProviderKind, apiKey string, opts Options) (MetadataService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%s: %w", kind, ErrMissingAPIKey)
	}

	switch kind {
	case entity.ProviderOpenAI:
		return NewOpenAI(apiKey, opts)
	case entity.ProviderGemini:
		return NewGemini(apiKey, opts)
	case entity.ProviderVolcengine:
		return NewVolcengine(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", kind)
	}
}
