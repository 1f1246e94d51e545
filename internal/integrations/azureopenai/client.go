package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"rpl-relay/internal/domain"
)

const maxBodyBytes = 8 << 20

var openaiSuffix = regexp.MustCompile(`(?i)/openai(/v\d+)?$`)

// HTTPStatusError captures a non-2xx upstream response. Body holds the
// response text unmodified.
type HTTPStatusError struct {
	StatusCode  int
	URL         string
	Body        string
	ContentType string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("azureopenai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

func (e *HTTPStatusError) ResponseBody() (string, string) {
	return e.Body, e.ContentType
}

// Client posts chat completions to Azure OpenAI deployments.
type Client struct {
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

// NormalizeEndpoint strips trailing slashes and an existing /openai or
// /openai/vN suffix from an Azure resource endpoint.
func NormalizeEndpoint(endpoint string) string {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return openaiSuffix.ReplaceAllString(base, "")
}

// ChatURL returns the chat completions URL for the profile's deployment.
func ChatURL(p domain.Profile) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		NormalizeEndpoint(p.Endpoint),
		url.PathEscape(p.Deployment),
		url.QueryEscape(p.APIVersion),
	)
}

// Complete sends one chat completion request and returns the raw JSON body.
func (c *Client) Complete(ctx context.Context, p domain.Profile, in domain.ChatCompletion) (json.RawMessage, error) {
	if p.APIKey == "" {
		return nil, errors.New("azureopenai: api key must not be empty")
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("azureopenai: marshal request: %w", err)
	}

	target := ChatURL(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("azureopenai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.APIKey)

	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("azureopenai: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("azureopenai: read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			StatusCode:  res.StatusCode,
			URL:         target,
			Body:        string(buf),
			ContentType: res.Header.Get("Content-Type"),
		}
	}

	if !json.Valid(buf) {
		return nil, errors.New("azureopenai: response body is not valid JSON")
	}
	return json.RawMessage(buf), nil
}
