package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAI generates metadata through the chat completions API.
type OpenAI struct {
	client *openai.Client
	opts   Options
}

func NewOpenAI(apiKey string, opts Options) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = defaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if opts.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		opts:   opts,
	}, nil
}

func (o *OpenAI) ProviderID() string {
	return "openai"
}

func (o *OpenAI) GenerateMetadata(ctx context.Context, request MetadataRequest) (*MetadataResponse, error) {
	model := o.opts.model(request)
	logger := providerLogger(ctx, o.ProviderID(), model)
	logger.WithFields(requestFields(request)).Info("llm_generate_metadata_start")

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: buildOpenAIMessages(request),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			logger.WithFields(logrus.Fields{
				"status_code": apiErr.HTTPStatusCode,
				"code":        apiErr.Code,
			}).WithError(err).Error("llm_generate_metadata_api_error")
		} else {
			logger.WithError(err).Error("llm_generate_metadata_request_failed")
		}
		return nil, err
	}

	if len(resp.Choices) == 0 {
		logger.Warn("llm_generate_metadata_no_choices")
		return nil, ErrEmptyResponse
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		logger.WithField("finish_reason", resp.Choices[0].FinishReason).Warn("llm_generate_metadata_empty_content")
		return nil, ErrEmptyResponse
	}

	logger.WithFields(logrus.Fields{
		"content_len":     len(content),
		"content_preview": logSnippet(content),
		"total_tokens":    resp.Usage.TotalTokens,
	}).Info("llm_generate_metadata_success")

	return &MetadataResponse{
		Data:  content,
		Usage: usageMap(resp.Usage),
	}, nil
}

func buildOpenAIMessages(request MetadataRequest) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: request.SystemPrompt,
		},
	}

	if !request.UsesVision() {
		return append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: request.userText(),
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: request.userText(),
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    strings.TrimSpace(request.ImageURL),
					Detail: openai.ImageURLDetailLow,
				},
			},
		},
	})
}
