package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spherical/legal-simplifier/internal/domain"
	"github.com/spherical/legal-simplifier/internal/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash-preview-05-20"

	// apiCallFailed is reported when a failed call carries no readable error body.
	apiCallFailed = "API call failed"
)

// Client handles communication with the Gemini generateContent API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *observability.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each call. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *observability.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Response is the generateContent response envelope
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated alternative
type Candidate struct {
	Content      *CandidateContent `json:"content"`
	FinishReason string            `json:"finishReason"`
}

// CandidateContent holds the parts of a candidate
type CandidateContent struct {
	Parts []CandidatePart `json:"parts"`
	Role  string          `json:"role"`
}

// CandidatePart is a single part; Text is nil when the part carries no text field.
type CandidatePart struct {
	Text *string `json:"text"`
}

// ErrorResponse is the body returned on non-2xx responses
type ErrorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient creates a new LLM client
func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = defaultModel
	}

	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		logger:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		// never mutate a caller-supplied client
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	c.logger = c.logger.WithComponent("llm")
	return c
}

// Generate sends req to the generateContent endpoint and returns the first candidate's text.
// It makes exactly one attempt.
func (c *Client) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", domain.ErrMissingCredential
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", domain.GenerationError("Failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", domain.GenerationError("Failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn().Err(redact(err, c.apiKey)).Str("model", c.model).Msg("Generation request failed")
		return "", domain.GenerationError("Failed to send request", redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("model", c.model).
		Int("status", resp.StatusCode).
		Bool("json_mode", req.WantsJSON()).
		Dur("elapsed", time.Since(start)).
		Msg("Generation response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeAPIError(resp.Body)
	}

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", domain.GenerationError("Failed to decode response", err)
	}

	text, ok := envelope.firstText()
	if !ok {
		return "", domain.ErrNoContent
	}
	return text, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
}

// firstText walks candidates[0].content.parts[0].text without assuming any level exists.
func (r *Response) firstText() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	text := content.Parts[0].Text
	if text == nil || *text == "" {
		return "", false
	}
	return *text, true
}

// decodeAPIError turns a non-2xx body into a GenerationError carrying the service's message.
func decodeAPIError(body io.Reader) error {
	var apiErr ErrorResponse
	if err := json.NewDecoder(body).Decode(&apiErr); err != nil {
		return domain.GenerationError(apiCallFailed, nil)
	}
	if apiErr.Error == nil || apiErr.Error.Message == "" {
		return domain.GenerationError(apiCallFailed, nil)
	}
	return domain.GenerationError(apiErr.Error.Message, nil)
}

// redact strips the API key from transport errors, which embed the request URL.
func redact(err error, apiKey string) error {
	if err == nil || apiKey == "" {
		return err
	}
	msg := err.Error()
	for _, secret := range []string{apiKey, url.QueryEscape(apiKey)} {
		msg = strings.ReplaceAll(msg, secret, "REDACTED")
	}
	if msg == err.Error() {
		return err
	}
	return errors.New(msg)
}
