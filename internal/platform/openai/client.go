package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hotflow/internal/platform/apierr"
	"github.com/yungbote/hotflow/internal/platform/logger"
	"github.com/yungbote/hotflow/internal/platform/promptstyle"
)

const chatCompletionsPath = "/chat/completions"

// Client talks to an OpenAI-compatible chat completions endpoint. Every call
// is a single attempt.
type Client interface {
	// GenerateText returns the first choice's content.
	GenerateText(ctx context.Context, system string, user string) (string, error)
	// GenerateJSON requests json_object output and returns the raw JSON text,
	// with any markdown fence removed.
	GenerateJSON(ctx context.Context, system string, user string) (string, error)

	Provider() Provider
	Model() string
	Temperature() float64
}

type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	Temperature *float64
	BaseURL     string
	Timeout     time.Duration
}

type client struct {
	log         *logger.Logger
	provider    Provider
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	tracer      trace.Tracer
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	provider, ok := ParseProvider(string(cfg.Provider))
	if !ok {
		return nil, apierr.Config("unknown_provider", "unsupported copy provider %q (want openai or deepseek)", cfg.Provider)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, apierr.Config("missing_env", "%sAPI_KEY is required", EnvPrefix(provider))
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL(provider)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel(provider)
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if temperature < 0 || temperature > 2 {
		return nil, apierr.Config("invalid_temperature", "temperature must be between 0 and 2, got %v", temperature)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &client{
		log:         log.With("client", "LLMClient", "provider", string(provider), "model", model),
		provider:    provider,
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
		tracer:      otel.Tracer("hotflow/llm"),
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(log *logger.Logger, cfg Config, httpClient *http.Client) (Client, error) {
	c, err := NewClient(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.(*client).httpClient = httpClient
	}
	return c, nil
}

func (c *client) Provider() Provider   { return c.provider }
func (c *client) Model() string        { return c.model }
func (c *client) Temperature() float64 { return c.temperature }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	return c.complete(ctx, promptstyle.ApplySystem(system, "text"), user, false)
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string) (string, error) {
	text, err := c.complete(ctx, promptstyle.ApplySystem(system, "json"), user, true)
	if err != nil {
		return "", err
	}
	return sanitizeJSONText(text), nil
}

func (c *client) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	msgs := toChatMessages(system, user)
	if len(msgs) == 0 {
		return "", apierr.InvalidArgument("empty_prompt", "no messages to send")
	}
	req := chatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temperature,
	}
	if jsonMode {
		req.ResponseFormat = map[string]any{"type": "json_object"}
	}

	ctx, span := c.tracer.Start(ctx, "llm.chat_completion", trace.WithAttributes(
		attribute.String("llm.provider", string(c.provider)),
		attribute.String("llm.model", c.model),
		attribute.Bool("llm.json_mode", jsonMode),
	))
	defer span.End()

	start := time.Now()
	var resp chatCompletionResponse
	if err := c.doJSON(ctx, req, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		err := apierr.Format("empty_completion", "%s returned no completion content", c.provider)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if resp.Usage != nil {
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
			attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
		)
	}
	c.log.Debug("chat completion done", "latency_ms", time.Since(start).Milliseconds(), "chars", len(text))
	return text, nil
}

func (c *client) doJSON(ctx context.Context, body any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, &buf)
	if err != nil {
		return apierr.Config("invalid_base_url", "build request for %s: %v", c.baseURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apierr.Transport("llm_request", fmt.Errorf("%s request: %w", c.provider, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return apierr.Transport("llm_read", fmt.Errorf("read %s response: %w", c.provider, err))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apierr.Format("invalid_response", "decode %s response: %v", c.provider, err)
	}
	return nil
}

func toChatMessages(system, user string) []chatMessage {
	out := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(system); s != "" {
		out = append(out, chatMessage{Role: "system", Content: s})
	}
	if u := strings.TrimSpace(user); u != "" {
		out = append(out, chatMessage{Role: "user", Content: u})
	}
	return out
}

func extractChatText(resp chatCompletionResponse) string {
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Message.Content) != "" {
			return c.Message.Content
		}
	}
	return ""
}

func sanitizeJSONText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Strip leading ```lang and trailing ```
	firstNL := strings.IndexByte(s, '\n')
	if firstNL == -1 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	s = s[firstNL+1:]

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
