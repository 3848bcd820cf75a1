package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey is returned when a provider is built without a credential.
	ErrMissingAPIKey = errors.New("api key is not configured")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("model returned empty response")
)

// MetadataRequest describes a single metadata generation call.
// Exactly one of Filename or ImageURL is used: ImageURL when set, otherwise Filename.
type MetadataRequest struct {
	SystemPrompt string
	Filename     string
	ImageURL     string
	Model        string
}

// UsesVision reports whether the request sends the image instead of its title.
func (r MetadataRequest) UsesVision() bool {
	return strings.TrimSpace(r.ImageURL) != ""
}

func (r MetadataRequest) userText() string {
	if r.UsesVision() {
		return "Get metadata for this image"
	}
	return "Get metadata for " + r.Filename
}

// MetadataResponse carries the raw model output. Data is usually a JSON object
// but may contain surrounding prose.
type MetadataResponse struct {
	Data  string
	Usage map[string]any
}

// MetadataService generates raw SEO metadata for one file.
type MetadataService interface {
	GenerateMetadata(ctx context.Context, request MetadataRequest) (*MetadataResponse, error)
}

// Options tunes provider clients.
type Options struct {
	Model   string
	BaseURL string
	Timeout time.Duration
}

func (o Options) model(request MetadataRequest) string {
	if m := strings.TrimSpace(request.Model); m != "" {
		return m
	}
	return strings.TrimSpace(o.Model)
}

// usageMap flattens a provider usage struct into a JSON-shaped map.
func usageMap(usage any) map[string]any {
	if usage == nil {
		return nil
	}
	raw, err := json.Marshal(usage)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}
