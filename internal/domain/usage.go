package domain

import "time"

// UsageRecord is one upstream chat call as stored in the usage ledger.
type UsageRecord struct {
	RequestID        string
	Mode             string
	Profile          string
	Deployment       string
	StatusCode       int
	LatencyMs        int64
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	At               time.Time
}
