package groq

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
	"github.com/oktayozdemir/blog-chatbot/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client talks to Groq's OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

var _ ports.CompletionClient = (*Client)(nil)

type Options struct {
	BaseURL            string
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(apiKey, model string, options Options) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) Model() string { return c.model }

// Configured reports whether an API key is present. An unconfigured client
// must never be called; the chat pipeline answers with setup instructions
// instead.
func (c *Client) Configured() bool { return strings.TrimSpace(c.apiKey) != "" }

func (c *Client) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
		"top_p":       1,
		"stream":      false,
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", reqBody, &response, "chat")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "groq.chat", call, classifyGroqError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("groq chat", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("groq chat: empty choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
