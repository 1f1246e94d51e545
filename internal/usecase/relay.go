package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rpl-relay/internal/domain"
	"rpl-relay/internal/profile"
)

const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 300

	emptyChatErrorBody = "Azure OpenAI error"

	usageWriteTimeout = 2 * time.Second
)

type ProfileResolver interface {
	Profile(ctx context.Context, name string) (domain.Profile, error)
}

type ChatClient interface {
	Complete(ctx context.Context, p domain.Profile, in domain.ChatCompletion) (json.RawMessage, error)
}

type UsageRecorder interface {
	RecordUsage(ctx context.Context, rec domain.UsageRecord) error
}

// upstreamResponse is implemented by integration errors that carry a
// non-2xx upstream response.
type upstreamResponse interface {
	HTTPStatusCode() int
	ResponseBody() (body, contentType string)
}

// ChatInput is the client's chat request. Prompt keeps its decoded JSON
// type so non-string prompts can be rejected.
type ChatInput struct {
	Prompt      any      `json:"prompt"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *float64 `json:"max_tokens"`

	RequestID string `json:"-"`
}

type RelayService struct {
	profiles ProfileResolver
	chat     ChatClient
	usage    UsageRecorder
	logger   *slog.Logger
}

type RelayOption func(*RelayService)

// WithUsageRecorder records one usage entry per upstream call.
func WithUsageRecorder(u UsageRecorder) RelayOption {
	return func(s *RelayService) {
		s.usage = u
	}
}

func WithLogger(l *slog.Logger) RelayOption {
	return func(s *RelayService) {
		s.logger = l
	}
}

func NewRelayService(p ProfileResolver, chat ChatClient, opts ...RelayOption) (*RelayService, error) {
	if p == nil {
		return nil, errors.New("usecase: profile resolver must not be nil")
	}
	if chat == nil {
		return nil, errors.New("usecase: chat client must not be nil")
	}
	s := &RelayService{profiles: p, chat: chat, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat relays one prompt to the profile selected by mode.
func (s *RelayService) Chat(ctx context.Context, mode string, in ChatInput) (domain.ChatResponse, error) {
	policy := policyFor(mode)

	p, err := s.profiles.Profile(ctx, policy.profile)
	if err != nil {
		return domain.ChatResponse{}, configurationError(err)
	}

	prompt, ok := in.Prompt.(string)
	if !ok || prompt == "" {
		return domain.ChatResponse{}, newError(ErrorValidation, "missing_prompt", "Missing prompt.", nil)
	}

	temperature := defaultTemperature
	if in.Temperature != nil {
		temperature = *in.Temperature
	}
	maxTokens := float64(defaultMaxTokens)
	if in.MaxTokens != nil {
		maxTokens = *in.MaxTokens
	}

	systemPrompt := policy.systemPrompt
	if p.SystemPrompt != "" {
		systemPrompt = p.SystemPrompt
	}

	req := domain.ChatCompletion{
		Messages:    buildMessages(systemPrompt, prompt),
		Temperature: temperature,
		MaxTokens:   policy.maxTokens(maxTokens),
		Model:       p.ModelName,
	}

	start := time.Now()
	raw, err := s.chat.Complete(ctx, p, req)
	s.recordUsage(ctx, policy, p, in.RequestID, start, raw, err)
	if err != nil {
		return domain.ChatResponse{}, callError(err, emptyChatErrorBody)
	}

	return domain.ChatResponse{
		Content: ExtractContent(raw),
		Raw:     raw,
	}, nil
}

type usageBody struct {
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (s *RelayService) recordUsage(ctx context.Context, policy modePolicy, p domain.Profile, requestID string, start time.Time, raw json.RawMessage, callErr error) {
	if s.usage == nil {
		return
	}
	if requestID == "" {
		requestID = newUUID()
	}
	rec := domain.UsageRecord{
		RequestID:  requestID,
		Mode:       policy.mode,
		Profile:    p.Name,
		Deployment: p.Deployment,
		LatencyMs:  time.Since(start).Milliseconds(),
		At:         time.Now().UTC(),
	}

	var upstream upstreamResponse
	switch {
	case callErr == nil:
		rec.StatusCode = 200
		var ub usageBody
		if json.Unmarshal(raw, &ub) == nil && ub.Usage != nil {
			rec.PromptTokens = ub.Usage.PromptTokens
			rec.CompletionTokens = ub.Usage.CompletionTokens
			rec.TotalTokens = ub.Usage.TotalTokens
		}
	case errors.As(callErr, &upstream):
		rec.StatusCode = upstream.HTTPStatusCode()
	}

	writeCtx, cancel := context.WithTimeout(ctx, usageWriteTimeout)
	defer cancel()
	if err := s.usage.RecordUsage(writeCtx, rec); err != nil {
		s.logger.Warn("usage record failed", "request_id", requestID, "profile", p.Name, "err", err)
	}
}

func configurationError(err error) *Error {
	var missing *profile.MissingError
	if errors.As(err, &missing) {
		return newError(ErrorConfiguration, "missing_variables", missing.Error(), err)
	}
	return newError(ErrorConfiguration, "profile_load_error", "Failed to load configuration.", err)
}

// callError classifies a failed upstream call. Non-2xx responses pass
// through; anything else is a transport failure.
func callError(err error, emptyBody string) *Error {
	var upstream upstreamResponse
	if errors.As(err, &upstream) {
		body, contentType := upstream.ResponseBody()
		if body == "" {
			body = emptyBody
		}
		e := newError(ErrorUpstream, "upstream_status", body, err)
		e.StatusCode = upstream.HTTPStatusCode()
		e.Body = body
		e.ContentType = contentType
		return e
	}
	return newError(ErrorTransport, "upstream_request_failed", err.Error(), err)
}

var newUUID = func() string {
	return uuid.NewString()
}
