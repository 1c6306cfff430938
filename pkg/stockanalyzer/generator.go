package stockanalyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

const (
	defaultGenerationBaseURL = "http://127.0.0.1:11434/v1"
	generateTimeout          = 2 * time.Minute
	probeTimeout             = 30 * time.Second
)

// SamplingParams bound a single generation call.
type SamplingParams struct {
	MaxTokens     int
	Temperature   float64
	TopP          float64
	RepeatPenalty float64
}

// Generator is the text-generation capability consumed by the commentary
// pipeline. It is a black box: prompt in, text or error out.
type Generator interface {
	Generate(ctx context.Context, prompt string, params SamplingParams) (string, error)
	Available() bool
}

// GeneratorState tracks the capability's initialization lifecycle.
type GeneratorState string

const (
	GeneratorUninitialized GeneratorState = "uninitialized"
	GeneratorLoading       GeneratorState = "loading"
	GeneratorReady         GeneratorState = "ready"
	GeneratorFailed        GeneratorState = "failed"
)

// GeneratorConfig selects and parameterizes a generation backend.
type GeneratorConfig struct {
	// BaseURL of an OpenAI-compatible server. Local runtimes (llama.cpp,
	// LM Studio, Ollama) all speak this dialect.
	BaseURL string
	Model   string
	APIKey  string
	Logger  *slog.Logger
}

// ModelGenerator talks to a text-generation endpoint with an idempotent,
// observable initialization step. The availability flag is written once by
// Init and only read afterwards.
type ModelGenerator struct {
	cfg    GeneratorConfig
	logger *slog.Logger

	mu     sync.Mutex
	state  GeneratorState
	detail string
}

// NewModelGenerator builds a generator in the Uninitialized state.
func NewModelGenerator(cfg GeneratorConfig) *ModelGenerator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultGenerationBaseURL
	}
	return &ModelGenerator{cfg: cfg, logger: logger, state: GeneratorUninitialized}
}

// State returns the current lifecycle state and failure detail, if any.
func (g *ModelGenerator) State() (GeneratorState, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.detail
}

// Model returns the configured model identifier.
func (g *ModelGenerator) Model() string {
	return g.cfg.Model
}

// Available reports whether the capability reached Ready.
func (g *ModelGenerator) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == GeneratorReady
}

// Init probes the endpoint with a tiny prompt and records Ready or Failed.
// It is idempotent: once a terminal state is reached, further calls return
// immediately. A Failed generator degrades the whole session to rule-based
// commentary; it never blocks the rest of the application.
func (g *ModelGenerator) Init(ctx context.Context) error {
	g.mu.Lock()
	switch g.state {
	case GeneratorReady:
		g.mu.Unlock()
		return nil
	case GeneratorFailed:
		detail := g.detail
		g.mu.Unlock()
		return NewError(ErrCodeInit, detail)
	case GeneratorLoading:
		g.mu.Unlock()
		return nil
	}
	g.state = GeneratorLoading
	g.mu.Unlock()

	if strings.TrimSpace(g.cfg.Model) == "" {
		return g.fail("no model configured")
	}
	if _, err := normalizeGenerationBaseURL(g.cfg.BaseURL); err != nil {
		return g.fail(err.Error())
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, err := g.complete(probeCtx, "Hi", SamplingParams{MaxTokens: 3, Temperature: 0.1, TopP: 1, RepeatPenalty: 1}); err != nil {
		return g.fail(fmt.Sprintf("model self-test failed: %v", err))
	}

	g.mu.Lock()
	g.state = GeneratorReady
	g.detail = ""
	g.mu.Unlock()
	g.logger.Info("generation capability ready", "model", g.cfg.Model)
	return nil
}

func (g *ModelGenerator) fail(detail string) error {
	g.mu.Lock()
	g.state = GeneratorFailed
	g.detail = detail
	g.mu.Unlock()
	g.logger.Warn("generation capability unavailable", "detail", detail)
	return NewError(ErrCodeInit, detail)
}

// Generate produces text for the prompt. Callers must check Available
// first; generating against a non-Ready capability is an error.
func (g *ModelGenerator) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	if !g.Available() {
		return "", NewError(ErrCodeGeneration, "generation capability not ready")
	}
	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()
	return g.complete(genCtx, prompt, params)
}

func (g *ModelGenerator) complete(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	switch {
	case isGeminiModel(g.cfg.BaseURL, g.cfg.Model):
		return g.geminiComplete(ctx, prompt, params)
	case isAnthropicModel(g.cfg.BaseURL, g.cfg.Model):
		return g.anthropicComplete(ctx, prompt, params)
	default:
		return g.openAIComplete(ctx, prompt, params)
	}
}

func isGeminiModel(baseURL, model string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gemini") {
		return true
	}
	return strings.Contains(strings.ToLower(baseURL), "generativelanguage.googleapis.com")
}

func isAnthropicModel(baseURL, model string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "claude") {
		return true
	}
	return strings.Contains(strings.ToLower(baseURL), "api.anthropic.com")
}

func (g *ModelGenerator) openAIComplete(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	baseURL, err := normalizeGenerationBaseURL(g.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	opts := []openaioption.RequestOption{openaioption.WithBaseURL(baseURL)}
	if key := strings.TrimSpace(g.cfg.APIKey); key != "" {
		opts = append(opts, openaioption.WithAPIKey(key))
	} else {
		// Local servers ignore the key but the client requires one.
		opts = append(opts, openaioption.WithAPIKey("local"))
	}
	client := openai.NewClient(opts...)

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:        openai.Int(int64(params.MaxTokens)),
		Temperature:      openai.Float(params.Temperature),
		TopP:             openai.Float(params.TopP),
		FrequencyPenalty: openai.Float(params.RepeatPenalty - 1),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (g *ModelGenerator) geminiComplete(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(g.cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	response, err := client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(params.Temperature)),
		TopP:            genai.Ptr(float32(params.TopP)),
		MaxOutputTokens: int32(params.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(response.Text())
	if text == "" {
		return "", errors.New("empty gemini response")
	}
	return text, nil
}

func (g *ModelGenerator) anthropicComplete(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	client := anthropic.NewClient(anthropicoption.WithAPIKey(strings.TrimSpace(g.cfg.APIKey)))
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.cfg.Model),
		MaxTokens:   int64(params.MaxTokens),
		Temperature: anthropic.Float(params.Temperature),
		TopP:        anthropic.Float(params.TopP),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}
	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("empty anthropic response")
	}
	return text, nil
}

func normalizeGenerationBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultGenerationBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if !strings.HasSuffix(strings.ToLower(trimmed), "/v1") {
		trimmed += "/v1"
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid base_url scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("invalid base_url host")
	}
	return trimmed, nil
}
