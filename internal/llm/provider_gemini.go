package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini generates metadata through the Gemini API. Vision requests send the
// image inline, so it is downloaded first.
type Gemini struct {
	client  *genai.Client
	fetcher *imageFetcher
	opts    Options
}

func NewGemini(apiKey string, opts Options) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = defaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client:  client,
		fetcher: newImageFetcher(opts.Timeout, 0),
		opts:    opts,
	}, nil
}

func (g *Gemini) ProviderID() string {
	return "gemini"
}

func (g *Gemini) GenerateMetadata(ctx context.Context, request MetadataRequest) (*MetadataResponse, error) {
	model := g.opts.model(request)
	logger := providerLogger(ctx, g.ProviderID(), model)
	logger.WithFields(requestFields(request)).Info("llm_generate_metadata_start")

	var image *genai.Blob
	if request.UsesVision() {
		data, mimeType, err := g.fetcher.Fetch(ctx, request.ImageURL)
		if err != nil {
			logger.WithError(err).Error("llm_generate_metadata_image_fetch_failed")
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"image_bytes": len(data),
			"mime_type":   mimeType,
		}).Debug("llm_generate_metadata_image_fetched")
		image = &genai.Blob{MIMEType: mimeType, Data: data}
	}

	resp, err := g.client.Models.GenerateContent(ctx, model,
		buildGeminiContents(request, image),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: request.SystemPrompt}},
			},
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		logger.WithError(err).Error("llm_generate_metadata_request_failed")
		return nil, err
	}

	text := geminiResponseText(resp)
	if strings.TrimSpace(text) == "" {
		logger.Warn("llm_generate_metadata_empty_content")
		return nil, ErrEmptyResponse
	}

	logger.WithFields(logrus.Fields{
		"content_len":     len(text),
		"content_preview": logSnippet(text),
	}).Info("llm_generate_metadata_success")

	var usage map[string]any
	if resp.UsageMetadata != nil {
		usage = usageMap(resp.UsageMetadata)
	}
	return &MetadataResponse{Data: text, Usage: usage}, nil
}

func buildGeminiContents(request MetadataRequest, image *genai.Blob) []*genai.Content {
	parts := []*genai.Part{{Text: request.userText()}}
	if image != nil {
		parts = append(parts, &genai.Part{InlineData: image})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}
}

// geminiResponseText concatenates the text parts of the first candidate.
func geminiResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			builder.WriteString(part.Text)
		}
	}
	return builder.String()
}
