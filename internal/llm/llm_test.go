package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"metagen/internal/entity"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func TestNewServiceRequiresKey(t *testing.T) {
	kinds := []entity.ProviderKind{entity.ProviderOpenAI, entity.ProviderGemini, entity.ProviderVolcengine}
	for _, kind := range kinds {
		if _, err := NewService(kind, "  ", Options{}); !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("%s: expected ErrMissingAPIKey, got %v", kind, err)
		}
	}
}

func TestNewServiceSelectsProvider(t *testing.T) {
	tests := []struct {
		kind entity.ProviderKind
		want string
	}{
		{kind: entity.ProviderOpenAI, want: "openai"},
		{kind: entity.ProviderGemini, want: "gemini"},
		{kind: entity.ProviderVolcengine, want: "volcengine"},
	}
	for _, tt := range tests {
		svc, err := NewService(tt.kind, "key", Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.kind, err)
		}
		provider, ok := svc.(interface{ ProviderID() string })
		if !ok || provider.ProviderID() != tt.want {
			t.Fatalf("%s: expected provider %q, got %#v", tt.kind, tt.want, svc)
		}
	}

	if _, err := NewService("ANTHROPIC", "key", Options{}); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}

func TestOpenAIGenerateMetadata(t *testing.T) {
	var captured openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"Title\":\"Sunset\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	}))
	defer server.Close()

	svc, err := NewOpenAI("sk-test", Options{BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	resp, err := svc.GenerateMetadata(context.Background(), MetadataRequest{
		SystemPrompt: "return json",
		Filename:     "sunset.jpg",
	})
	if err != nil {
		t.Fatalf("GenerateMetadata: %v", err)
	}
	if resp.Data != `{"Title":"Sunset"}` {
		t.Fatalf("unexpected data %q", resp.Data)
	}
	if resp.Usage["total_tokens"] != float64(15) {
		t.Fatalf("unexpected usage %#v", resp.Usage)
	}

	if captured.Model != defaultOpenAIModel {
		t.Fatalf("expected default model, got %q", captured.Model)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatalf("expected json_object response format, got %#v", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 || captured.Messages[1].Content != "Get metadata for sunset.jpg" {
		t.Fatalf("unexpected messages %#v", captured.Messages)
	}
}

func TestOpenAIEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "  "}}]}`)
	}))
	defer server.Close()

	svc, err := NewOpenAI("sk-test", Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if _, err := svc.GenerateMetadata(context.Background(), MetadataRequest{Filename: "a.jpg"}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestBuildOpenAIMessagesVision(t *testing.T) {
	messages := buildOpenAIMessages(MetadataRequest{
		SystemPrompt: "sys",
		Filename:     "ignored.jpg",
		ImageURL:     " https://cdn.example.com/a.jpg ",
	})
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	parts := messages[1].MultiContent
	if len(parts) != 2 || parts[1].ImageURL == nil || parts[1].ImageURL.URL != "https://cdn.example.com/a.jpg" {
		t.Fatalf("unexpected vision parts %#v", parts)
	}
	if messages[1].Content != "" {
		t.Fatalf("vision message must not carry plain content")
	}
}

func TestBuildVolcengineMessages(t *testing.T) {
	messages := buildVolcengineMessages(MetadataRequest{SystemPrompt: "sys", Filename: "beach.png"})
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if got := *messages[0].Content.StringValue; got != "sys" {
		t.Fatalf("unexpected system content %q", got)
	}
	if got := *messages[1].Content.StringValue; got != "Get metadata for beach.png" {
		t.Fatalf("unexpected user content %q", got)
	}

	vision := buildVolcengineMessages(MetadataRequest{SystemPrompt: "sys", ImageURL: "https://x/y.png"})
	parts := vision[1].Content.ListValue
	if len(parts) != 2 || parts[1].ImageURL == nil || parts[1].ImageURL.URL != "https://x/y.png" {
		t.Fatalf("unexpected vision parts %#v", parts)
	}
}

func TestGeminiContentsAndResponseText(t *testing.T) {
	contents := buildGeminiContents(MetadataRequest{Filename: "a.jpg"}, nil)
	if len(contents) != 1 || len(contents[0].Parts) != 1 || contents[0].Parts[0].Text != "Get metadata for a.jpg" {
		t.Fatalf("unexpected contents %#v", contents)
	}

	blob := &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}}
	contents = buildGeminiContents(MetadataRequest{ImageURL: "https://x/a.png"}, blob)
	if len(contents[0].Parts) != 2 || contents[0].Parts[1].InlineData != blob {
		t.Fatalf("expected inline image part, got %#v", contents[0].Parts)
	}

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: `{"Title":`}, {Text: `"A"}`}}},
		}},
	}
	if got := geminiResponseText(resp); got != `{"Title":"A"}` {
		t.Fatalf("unexpected text %q", got)
	}
	if got := geminiResponseText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestImageFetcher(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/sniffed":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(png)
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, "<html></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := newImageFetcher(0, 0)
	ctx := context.Background()

	data, mimeType, err := fetcher.Fetch(ctx, server.URL+"/typed.jpg")
	if err != nil || mimeType != "image/jpeg" || string(data) != "jpeg-bytes" {
		t.Fatalf("typed: got %q %q %v", data, mimeType, err)
	}

	_, mimeType, err = fetcher.Fetch(ctx, server.URL+"/sniffed")
	if err != nil || mimeType != "image/png" {
		t.Fatalf("sniffed: got %q %v", mimeType, err)
	}

	if _, _, err := fetcher.Fetch(ctx, server.URL+"/html"); err == nil {
		t.Fatal("expected error for non-image content")
	}
	if _, _, err := fetcher.Fetch(ctx, server.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, _, err := fetcher.Fetch(ctx, " "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestImageFetcherStopsOversizedBody(t *testing.T) {
	body := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 4096)...)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	if _, _, err := newImageFetcher(0, 64).Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for body over the limit")
	}
	data, _, err := newImageFetcher(0, len(body)).Fetch(context.Background(), server.URL)
	if err != nil || len(data) != len(body) {
		t.Fatalf("expected body within limit to pass, got %d bytes, %v", len(data), err)
	}
}

func TestImageFetcherDataURL(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	fetcher := newImageFetcher(0, 0)
	ctx := context.Background()

	data, mimeType, err := fetcher.Fetch(ctx, "data:image/webp;base64,"+base64.StdEncoding.EncodeToString([]byte("webp")))
	if err != nil || mimeType != "image/webp" || string(data) != "webp" {
		t.Fatalf("typed: got %q %q %v", data, mimeType, err)
	}

	_, mimeType, err = fetcher.Fetch(ctx, "data:;base64,"+base64.StdEncoding.EncodeToString(png))
	if err != nil || mimeType != "image/png" {
		t.Fatalf("sniffed: got %q %v", mimeType, err)
	}

	for _, bad := range []string{
		"data:image/png;base64,",
		"data:image/png;base64,!!!",
		"data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello")),
		"data:image/png,raw",
	} {
		if _, _, err := fetcher.Fetch(ctx, bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
