package stockanalyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionsServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"` + content + `"},"finish_reason":"stop"}]}`))
	}))
}

func TestNormalizeGenerationBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "empty uses local default", input: "", want: "http://127.0.0.1:11434/v1"},
		{name: "missing scheme", input: "localhost:8080", want: "http://localhost:8080/v1"},
		{name: "already has v1", input: "http://localhost:8080/v1", want: "http://localhost:8080/v1"},
		{name: "trailing slash", input: "http://localhost:8080/v1/", want: "http://localhost:8080/v1"},
		{name: "https remote", input: "https://api.example.com", want: "https://api.example.com/v1"},
		{name: "invalid scheme", input: "ftp://example.com", wantErr: "invalid base_url scheme"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeGenerationBaseURL(tc.input)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestModelGeneratorInitReady(t *testing.T) {
	server := completionsServer(t, "Hello")
	defer server.Close()

	gen := NewModelGenerator(GeneratorConfig{BaseURL: server.URL, Model: "test-model"})
	if state, _ := gen.State(); state != GeneratorUninitialized {
		t.Fatalf("expected uninitialized, got %s", state)
	}
	if gen.Available() {
		t.Fatalf("must not be available before init")
	}

	if err := gen.Init(context.Background()); err != nil {
		t.Fatalf("unexpected init error: %v", err)
	}
	if state, _ := gen.State(); state != GeneratorReady {
		t.Fatalf("expected ready, got %s", state)
	}
	if !gen.Available() {
		t.Fatalf("expected available after init")
	}

	text, err := gen.Generate(context.Background(), "analyze this", defaultSampling)
	if err != nil {
		t.Fatalf("unexpected generate error: %v", err)
	}
	if text != "Hello" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestModelGeneratorInitIdempotent(t *testing.T) {
	server := completionsServer(t, "Hi")
	defer server.Close()

	gen := NewModelGenerator(GeneratorConfig{BaseURL: server.URL, Model: "test-model"})
	for i := 0; i < 3; i++ {
		if err := gen.Init(context.Background()); err != nil {
			t.Fatalf("init %d: %v", i, err)
		}
	}
	if state, _ := gen.State(); state != GeneratorReady {
		t.Fatalf("expected ready, got %s", state)
	}
}

func TestModelGeneratorInitFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	gen := NewModelGenerator(GeneratorConfig{BaseURL: server.URL, Model: "test-model"})
	err := gen.Init(context.Background())
	if err == nil {
		t.Fatalf("expected init failure")
	}
	if !IsErrorCode(err, ErrCodeInit) {
		t.Fatalf("expected INIT_FAILED, got %v", err)
	}
	if state, detail := gen.State(); state != GeneratorFailed || detail == "" {
		t.Fatalf("expected failed state with detail, got %s %q", state, detail)
	}
	if gen.Available() {
		t.Fatalf("failed generator must not be available")
	}

	// Terminal failure is sticky; init does not retry.
	if err := gen.Init(context.Background()); !IsErrorCode(err, ErrCodeInit) {
		t.Fatalf("expected sticky failure, got %v", err)
	}

	if _, err := gen.Generate(context.Background(), "prompt", defaultSampling); !IsErrorCode(err, ErrCodeGeneration) {
		t.Fatalf("expected generation error on failed capability, got %v", err)
	}
}

func TestModelGeneratorNoModelConfigured(t *testing.T) {
	gen := NewModelGenerator(GeneratorConfig{Model: "  "})
	if err := gen.Init(context.Background()); !IsErrorCode(err, ErrCodeInit) {
		t.Fatalf("expected init failure without model, got %v", err)
	}
}

func TestBackendSelection(t *testing.T) {
	cases := []struct {
		baseURL, model         string
		gemini, anthropicMatch bool
	}{
		{"http://localhost:11434", "llama3", false, false},
		{"", "gemini-2.0-flash", true, false},
		{"https://generativelanguage.googleapis.com/v1beta", "some-model", true, false},
		{"", "claude-sonnet-4-5", false, true},
		{"https://api.anthropic.com", "some-model", false, true},
	}
	for _, tc := range cases {
		if got := isGeminiModel(tc.baseURL, tc.model); got != tc.gemini {
			t.Fatalf("isGeminiModel(%q, %q) = %v", tc.baseURL, tc.model, got)
		}
		if got := isAnthropicModel(tc.baseURL, tc.model); got != tc.anthropicMatch {
			t.Fatalf("isAnthropicModel(%q, %q) = %v", tc.baseURL, tc.model, got)
		}
	}
}
