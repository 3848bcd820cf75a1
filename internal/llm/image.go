package llm

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxImageBytes = 20 << 20

type imageFetcher struct {
	client *resty.Client
	limit  int
}

// newImageFetcher 创建下载器，limit <= 0 时使用 maxImageBytes，超限的响应体在读取中途被中止
func newImageFetcher(timeout time.Duration, limit int) *imageFetcher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	if limit <= 0 {
		limit = maxImageBytes
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetResponseBodyLimit(limit).
		SetHeader("Accept", "image/*")
	return &imageFetcher{client: client, limit: limit}
}

// Fetch downloads an image and reports its MIME type, falling back to
// content sniffing when the server does not send a usable Content-Type.
func (f *imageFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, "", fmt.Errorf("image url is empty")
	}
	if isDataURL(url) {
		return decodeDataURL(url)
	}

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("download image: unexpected status %d", resp.StatusCode())
	}

	data := resp.Body()
	if len(data) == 0 {
		return nil, "", fmt.Errorf("download image: empty body")
	}
	if len(data) > f.limit {
		return nil, "", fmt.Errorf("download image: %d bytes exceeds limit", len(data))
	}

	mimeType := ""
	if mediaType, _, err := mime.ParseMediaType(resp.Header().Get("Content-Type")); err == nil && strings.HasPrefix(mediaType, "image/") {
		mimeType = mediaType
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("download image: unsupported content type %q", mimeType)
	}
	return data, mimeType, nil
}
