package llm

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

func isDataURL(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// splitDataURL 拆出 data URL 的 MIME 类型与 base64 内容
func splitDataURL(value string) (string, string) {
	value = strings.TrimPrefix(value, "data:")
	parts := strings.SplitN(value, ";base64,", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// decodeDataURL 解码内联图片，缺少 MIME 类型时按内容识别
func decodeDataURL(value string) ([]byte, string, error) {
	mimeType, payload := splitDataURL(value)
	if payload == "" {
		return nil, "", fmt.Errorf("data url: empty base64 payload")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("data url: decode base64: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("data url: %d bytes exceeds limit", len(data))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("data url: unsupported content type %q", mimeType)
	}
	return data, mimeType, nil
}
