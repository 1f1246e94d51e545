package azurespeech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rpl-relay/internal/domain"
)

// HTTPStatusError captures a non-2xx response from the token endpoint.
type HTTPStatusError struct {
	StatusCode  int
	Body        string
	ContentType string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("azurespeech: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

func (e *HTTPStatusError) ResponseBody() (string, string) {
	return e.Body, e.ContentType
}

// Client exchanges a speech subscription key for a short-lived token.
type Client struct {
	httpClient *http.Client
	tokenURL   func(region string) string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTokenURL overrides how the issueToken URL is derived from a region.
func WithTokenURL(fn func(region string) string) Option {
	return func(c *Client) {
		c.tokenURL = fn
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		tokenURL:   TokenURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenURL returns the regional token endpoint.
func TokenURL(region string) string {
	return fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", region)
}

// IssueToken returns the raw token issued for the subscription.
func (c *Client) IssueToken(ctx context.Context, creds domain.SpeechCredentials) (string, error) {
	region := strings.TrimSpace(creds.Region)
	if region == "" || creds.SubscriptionKey == "" {
		return "", errors.New("azurespeech: region and subscription key are required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(region), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("azurespeech: create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", creds.SubscriptionKey)

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("azurespeech: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("azurespeech: read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &HTTPStatusError{
			StatusCode:  res.StatusCode,
			Body:        string(buf),
			ContentType: res.Header.Get("Content-Type"),
		}
	}
	return string(buf), nil
}
