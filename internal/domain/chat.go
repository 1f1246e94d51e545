package domain

import "encoding/json"

// ChatMessage is the provider-agnostic chat message shape sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletion is the request body posted to a chat completions deployment.
type ChatCompletion struct {
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   float64       `json:"max_tokens"`
	Model       string        `json:"model,omitempty"`
}

// ChatResponse is the normalized result returned to the client.
type ChatResponse struct {
	Content string          `json:"content"`
	Raw     json.RawMessage `json:"raw"`
}
