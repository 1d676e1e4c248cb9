package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

const insufficientQuota = "insufficient_quota"

// Provider identifies an OpenAI-compatible chat-completions vendor.
type Provider struct {
	Name    string
	KeyEnv  string
	BaseURL string
	Model   string
}

var (
	ProviderGroq = Provider{
		Name:    "Groq",
		KeyEnv:  "GROQ_API_KEY",
		BaseURL: "https://api.groq.com/openai/v1",
		Model:   "llama-3.1-70b-versatile",
	}
	ProviderOpenAI = Provider{
		Name:    "OpenAI",
		KeyEnv:  "OPENAI_API_KEY",
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	}
)

// Completer is the surface consumed by the assistant service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Client sends chat completions through the go-openai SDK pointed at the provider base URL.
type Client struct {
	provider   Provider
	api        *openai.Client
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(model); trimmed != "" {
			c.model = trimmed
		}
	}
}

// NewClient builds a client for provider. An empty key is accepted and reported per call.
func NewClient(provider Provider, apiKey string, opts ...Option) *Client {
	client := &Client{
		provider:   provider,
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    provider.BaseURL,
		model:      provider.Model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	cfg := openai.DefaultConfig(client.apiKey)
	cfg.BaseURL = client.baseURL
	cfg.HTTPClient = client.httpClient
	client.api = openai.NewClientWithConfig(cfg)
	return client
}

// CompletionRequest is a single system+user exchange.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Complete sends the exchange and returns the trimmed content of the first choice.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c == nil || c.api == nil {
		return "", pkgerrors.New(pkgerrors.CodeMisconfigured, "assistant client not configured")
	}
	if c.apiKey == "" {
		return "", pkgerrors.New(pkgerrors.CodeMisconfigured, fmt.Sprintf("%s is not set on the server", c.provider.KeyEnv))
	}
	if c.baseURL == "" || c.model == "" {
		return "", pkgerrors.New(pkgerrors.CodeMisconfigured, fmt.Sprintf("%s base url and model are required", c.provider.Name))
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", c.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// mapError folds SDK failures into the service taxonomy by upstream status.
func (c *Client) mapError(err error) error {
	name := c.provider.Name

	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		status int
		quota  bool
	)
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		quota = apiErr.Type == insufficientQuota || fmt.Sprint(apiErr.Code) == insufficientQuota
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s request failed", name))
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, fmt.Sprintf("%s API key is invalid", name))
	case status == http.StatusPaymentRequired || quota:
		return pkgerrors.Wrap(pkgerrors.CodeQuota, err, fmt.Sprintf("%s quota exhausted", name))
	case status == http.StatusTooManyRequests:
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, fmt.Sprintf("%s rate limit or quota exceeded. Please retry shortly.", name))
	case status == http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeMisconfigured, err, fmt.Sprintf("configured %s model %s is unavailable", name, c.model))
	case status == http.StatusServiceUnavailable:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s is temporarily unavailable", name))
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s request failed", name))
	}
}
