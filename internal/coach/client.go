package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 45 * time.Second
)

// ErrNoAPIKey is returned by Complete when no key was configured.
var ErrNoAPIKey = errors.New("coach: API key missing, set OPENAI_API_KEY")

// HTTPError is a non-2xx response from the completions endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("completions http %d: %s", e.StatusCode, e.Body)
}

// Request is one system+user prompt pair.
type Request struct {
	System string
	User   string
	// JSON asks the model for a JSON object response
	JSON bool
}

// Completer produces a model response for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Client talks to an OpenAI compatible chat/completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	header     string
	prefix     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base, e.g. "http://localhost:11434/v1".
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithAPIKeyHeader sends the key in a custom header without the Bearer prefix.
func WithAPIKeyHeader(name string) ClientOption {
	return func(c *Client) {
		if name != "" && name != "Authorization" {
			c.header = name
			c.prefix = ""
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client from the environment (OPENAI_API_KEY,
// OPENAI_BASE_URL, OPENAI_MODEL) with opts applied on top.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		model:      DefaultModel,
		header:     "Authorization",
		prefix:     "Bearer ",
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		c.baseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		c.model = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client has a key to call with.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends req and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.Enabled() {
		return "", ErrNoAPIKey
	}

	payload := chatRequest{Model: c.model}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.User})
	if req.JSON {
		payload.ResponseFormat = map[string]string{"type": "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(c.header, c.prefix+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(data), 800)}
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
