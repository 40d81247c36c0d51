// Package openrouter is a thin client for an OpenAI-compatible chat
// completion API. It builds requests from explicit configuration, maps HTTP
// failures to a typed error taxonomy and exposes non-streaming, JSON-schema
// and streaming (SSE) completion calls. Retry policy belongs to the caller.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultTimeout = 30 * time.Second

	maxMessages       = 100
	maxContentLength  = 100000
	maxTokensCeiling  = 128000
	temperatureMax    = 2.0
	completionsPath   = "/chat/completions"
	streamDoneMarker  = "[DONE]"
	streamDataPrefix  = "data: "
	defaultBufferSize = 64 * 1024
)

// Config is the explicit client configuration. There is no package-level
// state: every Client owns its settings.
type Config struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
	Timeout      time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	httpClient   *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: missing API key")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		defaultModel: cfg.DefaultModel,
		httpClient:   httpClient,
	}, nil
}

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options parametrize one completion call. Zero-valued knobs fall back to
// the upstream defaults and are omitted from the request body.
type Options struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Validate enforces the request bounds before anything leaves the process.
func (o Options) Validate() error {
	if len(o.Messages) < 1 || len(o.Messages) > maxMessages {
		return fmt.Errorf("openrouter: message count %d out of range [1, %d]", len(o.Messages), maxMessages)
	}
	for i, m := range o.Messages {
		if len(m.Content) < 1 || len(m.Content) > maxContentLength {
			return fmt.Errorf("openrouter: message %d content length %d out of range [1, %d]", i, len(m.Content), maxContentLength)
		}
	}
	if o.Temperature < 0 || o.Temperature > temperatureMax {
		return fmt.Errorf("openrouter: temperature %g out of range [0, %g]", o.Temperature, temperatureMax)
	}
	if o.MaxTokens < 0 || o.MaxTokens > maxTokensCeiling {
		return fmt.Errorf("openrouter: max tokens %d out of range [1, %d]", o.MaxTokens, maxTokensCeiling)
	}
	if o.TopP < 0 || o.TopP > 1 {
		return fmt.Errorf("openrouter: top_p %g out of range [0, 1]", o.TopP)
	}
	return nil
}

// Usage reports upstream token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the parsed first choice of a completion.
type ChatResponse struct {
	ID           string
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// wire types

type requestBody struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Stream         bool            `json:"stream,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

type responseBody struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type errorBody struct {
	Error struct {
		Message  string `json:"message"`
		Metadata struct {
			FlaggedInput string   `json:"flagged_input"`
			Reasons      []string `json:"reasons"`
		} `json:"metadata"`
	} `json:"error"`
}

func (c *Client) buildRequest(opts Options, stream bool, responseFormat json.RawMessage) requestBody {
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}
	body := requestBody{
		Model:          model,
		Messages:       opts.Messages,
		Stream:         stream,
		ResponseFormat: responseFormat,
	}
	if opts.Temperature > 0 {
		body.Temperature = &opts.Temperature
	}
	if opts.MaxTokens > 0 {
		body.MaxTokens = &opts.MaxTokens
	}
	if opts.TopP > 0 {
		body.TopP = &opts.TopP
	}
	return body
}

func (c *Client) post(ctx context.Context, body requestBody) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return nil, &APIError{Kind: kind, Message: err.Error(), cause: err}
	}
	return resp, nil
}

// apiErrorFromResponse drains the body and maps the status to the taxonomy.
func apiErrorFromResponse(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	apiErr := &APIError{
		Kind:       kindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    string(raw),
	}
	var parsed errorBody
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.FlaggedInput = parsed.Error.Metadata.FlaggedInput
		apiErr.Reasons = parsed.Error.Metadata.Reasons
	}
	if apiErr.Kind == KindRateLimit {
		apiErr.RetryAfter = resp.Header.Get("Retry-After")
	}
	return apiErr
}

// Chat issues a non-streaming completion and returns the first choice.
func (c *Client) Chat(ctx context.Context, opts Options) (ChatResponse, error) {
	if err := opts.Validate(); err != nil {
		return ChatResponse{}, err
	}

	resp, err := c.post(ctx, c.buildRequest(opts, false, nil))
	if err != nil {
		return ChatResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ChatResponse{}, apiErrorFromResponse(resp)
	}

	var parsed responseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ChatResponse{}, &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode,
			Message: "malformed completion response", cause: err}
	}
	if len(parsed.Choices) == 0 {
		return ChatResponse{}, &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode,
			Message: "completion response has no choices"}
	}

	first := parsed.Choices[0]
	return ChatResponse{
		ID:           parsed.ID,
		Content:      first.Message.Content,
		Model:        parsed.Model,
		FinishReason: first.FinishReason,
		Usage:        parsed.Usage,
	}, nil
}

// SchemaSpec names a strict JSON schema the model must follow.
type SchemaSpec struct {
	Name   string
	Schema json.RawMessage
}

// ChatWithSchema issues a completion constrained to a strict JSON schema and
// unmarshals the returned content into out. A content string that fails to
// parse yields a schema-validation APIError carrying the raw string.
func (c *Client) ChatWithSchema(ctx context.Context, opts Options, spec SchemaSpec, out any) (ChatResponse, error) {
	if err := opts.Validate(); err != nil {
		return ChatResponse{}, err
	}

	format, err := json.Marshal(map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   spec.Name,
			"strict": true,
			"schema": spec.Schema,
		},
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("marshal response format: %w", err)
	}

	resp, err := c.post(ctx, c.buildRequest(opts, false, format))
	if err != nil {
		return ChatResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ChatResponse{}, apiErrorFromResponse(resp)
	}

	var parsed responseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ChatResponse{}, &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode,
			Message: "malformed completion response", cause: err}
	}
	if len(parsed.Choices) == 0 {
		return ChatResponse{}, &APIError{Kind: KindUnknown, StatusCode: resp.StatusCode,
			Message: "completion response has no choices"}
	}

	first := parsed.Choices[0]
	result := ChatResponse{
		ID:           parsed.ID,
		Content:      first.Message.Content,
		Model:        parsed.Model,
		FinishReason: first.FinishReason,
		Usage:        parsed.Usage,
	}
	if err := json.Unmarshal([]byte(first.Message.Content), out); err != nil {
		return result, &APIError{
			Kind:       KindSchemaValidation,
			Message:    "completion content is not valid JSON for the requested schema",
			RawContent: first.Message.Content,
			cause:      err,
		}
	}
	return result, nil
}
