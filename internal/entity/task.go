package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProviderKind 标识用于生成元数据的 AI 服务商，由请求中的凭证类型决定。
type ProviderKind string

const (
	ProviderOpenAI     ProviderKind = "OPENAI"
	ProviderGemini     ProviderKind = "GEMINI"
	ProviderVolcengine ProviderKind = "VOLCENGINE"
)

// ParseProviderKind 规范化大小写并校验服务商类型。
func ParseProviderKind(value string) (ProviderKind, error) {
	kind := ProviderKind(strings.ToUpper(strings.TrimSpace(value)))
	switch kind {
	case ProviderOpenAI, ProviderGemini, ProviderVolcengine:
		return kind, nil
	default:
		return "", fmt.Errorf("unsupported provider kind: %q", value)
	}
}

// Throttled reports whether files for this provider must be processed one at a time.
func (k ProviderKind) Throttled() bool {
	return k == ProviderGemini
}

// GeneratorRef 接受数字或字符串形式的生成器标识。
type GeneratorRef string

// UnmarshalJSON 实现 json.Unmarshaler，兼容 1 与 "1"、"adobestock"。
func (r *GeneratorRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*r = GeneratorRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("generatorId must be a number or string: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("generatorId must be an integer: %w", err)
	}
	*r = GeneratorRef(n.String())
	return nil
}

// String 返回原始标识。
func (r GeneratorRef) String() string {
	return string(r)
}

// ProcessTaskRequest 是 /process 接收的任务请求。
type ProcessTaskRequest struct {
	TaskID      string       `json:"taskId" binding:"required"`
	Files       []FileRef    `json:"files" binding:"required,min=1,dive"`
	GeneratorID GeneratorRef `json:"generatorId" binding:"required"`
	NumKeywords int          `json:"numKeywords" binding:"omitempty,min=1,max=200"`
	TitleChars  int          `json:"titleChars" binding:"omitempty,min=1,max=500"`
	UserID      string       `json:"userId"`
	APIKey      string       `json:"apiKey"`
	APIType     string       `json:"apiType" binding:"required"`
	OurAPI      bool         `json:"ourApi"`
	UseVision   bool         `json:"useVision"`
}
