package llm

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	volcModel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

// 文档:https://www.volcengine.com/docs/82379/1494384

const defaultVolcengineModel = "doubao-1-5-vision-pro-32k-250115"

// Volcengine generates metadata through the Ark runtime chat API.
type Volcengine struct {
	client *arkruntime.Client
	opts   Options
}

func NewVolcengine(apiKey string, opts Options) (*Volcengine, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = defaultVolcengineModel
	}

	var clientOpts []arkruntime.ConfigOption
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, arkruntime.WithBaseUrl(baseURL))
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, arkruntime.WithTimeout(opts.Timeout))
	}

	return &Volcengine{
		client: arkruntime.NewClientWithApiKey(apiKey, clientOpts...),
		opts:   opts,
	}, nil
}

func (v *Volcengine) ProviderID() string {
	return "volcengine"
}

func (v *Volcengine) GenerateMetadata(ctx context.Context, request MetadataRequest) (*MetadataResponse, error) {
	model := v.opts.model(request)
	logger := providerLogger(ctx, v.ProviderID(), model)
	logger.WithFields(requestFields(request)).Info("llm_generate_metadata_start")

	resp, err := v.client.CreateChatCompletion(ctx, volcModel.CreateChatCompletionRequest{
		Model:    model,
		Messages: buildVolcengineMessages(request),
	})
	if err != nil {
		logger.WithError(err).Error("llm_generate_metadata_request_failed")
		return nil, err
	}

	content := volcengineResponseText(resp)
	if strings.TrimSpace(content) == "" {
		logger.Warn("llm_generate_metadata_empty_content")
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

func buildVolcengineMessages(request MetadataRequest) []*volcModel.ChatCompletionMessage {
	system := &volcModel.ChatCompletionMessage{
		Role: volcModel.ChatMessageRoleSystem,
		Content: &volcModel.ChatCompletionMessageContent{
			StringValue: volcengine.String(request.SystemPrompt),
		},
	}

	user := &volcModel.ChatCompletionMessage{Role: volcModel.ChatMessageRoleUser}
	if request.UsesVision() {
		user.Content = &volcModel.ChatCompletionMessageContent{
			ListValue: []*volcModel.ChatCompletionMessageContentPart{
				{
					Type: volcModel.ChatCompletionMessageContentPartTypeText,
					Text: request.userText(),
				},
				{
					Type: volcModel.ChatCompletionMessageContentPartTypeImageURL,
					ImageURL: &volcModel.ChatMessageImageURL{
						URL: strings.TrimSpace(request.ImageURL),
					},
				},
			},
		}
	} else {
		user.Content = &volcModel.ChatCompletionMessageContent{
			StringValue: volcengine.String(request.userText()),
		}
	}

	return []*volcModel.ChatCompletionMessage{system, user}
}

func volcengineResponseText(resp volcModel.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return ""
	}
	content := resp.Choices[0].Message.Content
	if content == nil || content.StringValue == nil {
		return ""
	}
	return *content.StringValue
}
