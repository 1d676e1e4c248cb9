package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubResponse(status int, body string) roundTripFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var captured openai.ChatCompletionRequest
	var capturedURL, capturedAuth string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedAuth = req.Header.Get("Authorization")
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"role":"assistant","content":"  Drink water before donating.  "}}]}`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(ProviderGroq, "gsk-test",
		WithBaseURL("http://llm.test/v1/"),
		WithModel("llama-test"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)

	answer, err := client.Complete(context.Background(), CompletionRequest{
		System:      "system prompt",
		User:        "Can I donate after a tattoo?",
		Temperature: 0.2,
		MaxTokens:   220,
	})
	require.NoError(t, err)
	require.Equal(t, "Drink water before donating.", answer)
	require.Equal(t, "http://llm.test/v1/chat/completions", capturedURL)
	require.Equal(t, "Bearer gsk-test", capturedAuth)
	require.Equal(t, "llama-test", captured.Model)
	require.Equal(t, 220, captured.MaxTokens)
	require.InDelta(t, 0.2, captured.Temperature, 1e-6)
	require.Len(t, captured.Messages, 2)
	require.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	require.Equal(t, "Can I donate after a tattoo?", captured.Messages[1].Content)
}

func TestCompleteDefaultsFromProvider(t *testing.T) {
	client := NewClient(ProviderOpenAI, "sk-test")
	require.Equal(t, "https://api.openai.com/v1", client.baseURL)
	require.Equal(t, "gpt-4o-mini", client.model)
}

func TestCompleteMissingKey(t *testing.T) {
	_, err := NewClient(ProviderOpenAI, "  ").Complete(context.Background(), CompletionRequest{User: "x"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeMisconfigured, typed.Code())
	require.Equal(t, "OPENAI_API_KEY is not set on the server", typed.Message())
}

func TestCompleteMapsProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		status   int
		body     string
		code     pkgerrors.Code
		message  string
	}{
		{"unauthorized", ProviderGroq, http.StatusUnauthorized, `{"error":"bad key"}`, pkgerrors.CodeUnauthorized, "Groq API key is invalid"},
		{"forbidden", ProviderOpenAI, http.StatusForbidden, ``, pkgerrors.CodeUnauthorized, "OpenAI API key is invalid"},
		{"rate limited", ProviderGroq, http.StatusTooManyRequests, `{"error":"slow down"}`, pkgerrors.CodeRateLimit, "Groq rate limit or quota exceeded. Please retry shortly."},
		{"quota", ProviderOpenAI, http.StatusTooManyRequests, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`, pkgerrors.CodeQuota, "OpenAI quota exhausted"},
		{"typed rate limit", ProviderGroq, http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"tokens","code":"rate_limit_exceeded"}}`, pkgerrors.CodeRateLimit, "Groq rate limit or quota exceeded. Please retry shortly."},
		{"payment", ProviderOpenAI, http.StatusPaymentRequired, ``, pkgerrors.CodeQuota, "OpenAI quota exhausted"},
		{"unavailable", ProviderGroq, http.StatusServiceUnavailable, ``, pkgerrors.CodeDependency, "Groq is temporarily unavailable"},
		{"model missing", ProviderGroq, http.StatusNotFound, ``, pkgerrors.CodeMisconfigured, "configured Groq model llama-3.1-70b-versatile is unavailable"},
		{"server error", ProviderOpenAI, http.StatusInternalServerError, `boom`, pkgerrors.CodeDependency, "OpenAI request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.provider, "key", WithHTTPClient(&http.Client{Transport: stubResponse(tt.status, tt.body)}))
			_, err := client.Complete(context.Background(), CompletionRequest{User: "hello"})
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			require.Equal(t, tt.code, typed.Code())
			require.Equal(t, tt.message, typed.Message())
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := NewClient(ProviderGroq, "key", WithHTTPClient(&http.Client{Transport: stubResponse(http.StatusOK, `{"choices":[]}`)}))
	answer, err := client.Complete(context.Background(), CompletionRequest{User: "hello"})
	require.NoError(t, err)
	require.Empty(t, answer)
}

func TestCompleteTransportFailure(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	client := NewClient(ProviderGroq, "key", WithHTTPClient(&http.Client{Transport: rt}))
	_, err := client.Complete(context.Background(), CompletionRequest{User: "hello"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeDependency, typed.Code())
	require.Equal(t, "Groq request failed", typed.Message())
}
