// Package chatbot is the HTTP client for a single request/response exchange
// with a ChatterWise chat endpoint.
package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds one chat exchange including the retry.
	DefaultTimeout = 20 * time.Second

	// DefaultResponsePath extracts the reply text from the endpoint payload.
	DefaultResponsePath = ".responseText"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the chat endpoint root, e.g. the project's functions URL.
	// The client POSTs to <BaseURL>/chat.
	BaseURL string
	// APIKey, when set, is sent as both apikey and Bearer headers.
	APIKey string
	// Timeout is the per-attempt wait. Zero means DefaultTimeout.
	Timeout time.Duration
	// ResponsePath is a jq expression selecting the reply text from the
	// response JSON. Empty means DefaultResponsePath.
	ResponsePath string
}

// Client sends chat messages to a remote chatbot endpoint. It performs at
// most one retry on transport failure and never mutates scenario state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	extract    *gojq.Code
}

type chatRequest struct {
	EndpointID string `json:"endpointId"`
	Message    string `json:"message"`
	CallerTag  string `json:"callerTag,omitempty"`
}

// NewClient builds a Client from config. The response path is compiled once
// so a bad expression fails at construction, not mid-run.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	path := cfg.ResponsePath
	if path == "" {
		path = DefaultResponsePath
	}
	query, err := gojq.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid response path %q: %w", path, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile response path %q: %w", path, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		extract:    code,
	}, nil
}

// Send delivers one message to the chatbot identified by endpointID and
// returns the reply text. callerTag is a telemetry label passed through to
// the endpoint unchanged.
func (c *Client) Send(ctx context.Context, endpointID, message, callerTag string) (string, error) {
	if endpointID == "" {
		return "", &Error{Kind: ErrPayload, Message: "endpoint id is required"}
	}
	if message == "" {
		return "", &Error{Kind: ErrPayload, Message: "message is required"}
	}

	reply, err := c.sendOnce(ctx, endpointID, message, callerTag)
	if err == nil {
		return reply, nil
	}

	// One retry, transport failures only. Status and payload errors are
	// deterministic and retrying them just doubles the latency.
	var cerr *Error
	if asError(err, &cerr) && cerr.Kind == ErrNetwork && ctx.Err() == nil {
		return c.sendOnce(ctx, endpointID, message, callerTag)
	}
	return "", err
}

func (c *Client) sendOnce(ctx context.Context, endpointID, message, callerTag string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		EndpointID: endpointID,
		Message:    message,
		CallerTag:  callerTag,
	})
	if err != nil {
		return "", &Error{Kind: ErrPayload, Message: "failed to encode request", cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: ErrNetwork, Message: "failed to create request", cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: ErrNetwork, Message: "chat request failed", cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: ErrNetwork, Message: "failed to read response body", cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{
			Kind:    ErrStatus,
			Message: fmt.Sprintf("chat endpoint returned status %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}

	return c.extractReply(body)
}

func (c *Client) extractReply(body []byte) (string, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", &Error{Kind: ErrPayload, Message: "response is not valid JSON", cause: err}
	}

	iter := c.extract.Run(doc)
	v, ok := iter.Next()
	if !ok || v == nil {
		return "", &Error{Kind: ErrPayload, Message: "response is missing the reply text"}
	}
	if err, isErr := v.(error); isErr {
		return "", &Error{Kind: ErrPayload, Message: "failed to extract reply text", cause: err}
	}
	text, ok := v.(string)
	if !ok {
		return "", &Error{Kind: ErrPayload, Message: fmt.Sprintf("reply text is %T, expected string", v)}
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
