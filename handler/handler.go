package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rpl-relay/internal/domain"
	"rpl-relay/internal/usecase"
)

const (
	maxBodyBytes = 1 << 20

	headerMode          = "X-RPL-Mode"
	headerCorrelationID = "X-Correlation-Id"

	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

type ChatRelayer interface {
	Chat(ctx context.Context, mode string, in usecase.ChatInput) (domain.ChatResponse, error)
}

type SpeechTokener interface {
	Token(ctx context.Context) (domain.SpeechToken, error)
}

type Handler struct {
	chat   ChatRelayer
	speech SpeechTokener
	logger *slog.Logger
}

func NewHandler(chat ChatRelayer, speech SpeechTokener) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat relayer must not be nil")
	}
	if speech == nil {
		return nil, errors.New("handler: speech tokener must not be nil")
	}
	return &Handler{chat: chat, speech: speech, logger: slog.Default()}, nil
}

// request and response are the transport-neutral shapes shared by the
// Lambda and net/http adapters.
type request struct {
	method       string
	path         string
	header       http.Header
	body         []byte
	bodyTooLarge bool
}

type response struct {
	status      int
	contentType string
	body        []byte
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// correlationIDFor returns the caller's correlation id or a fresh one.
func correlationIDFor(header http.Header) string {
	if id := strings.TrimSpace(header.Get(headerCorrelationID)); id != "" {
		return id
	}
	return newCorrelationID()
}

func (h *Handler) serve(ctx context.Context, req request) (response, string) {
	correlationID := correlationIDFor(req.header)

	start := time.Now()
	resp := h.route(ctx, req, correlationID)
	h.logger.Info("request handled",
		"correlation_id", correlationID,
		"method", req.method,
		"path", req.path,
		"status", resp.status,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, correlationID
}

func (h *Handler) route(ctx context.Context, req request, correlationID string) response {
	switch req.path {
	case "/health":
		if req.method != http.MethodGet {
			return methodNotAllowed()
		}
		return response{status: http.StatusOK, contentType: contentTypeText, body: []byte("ok")}
	case "/api/analysis/chat":
		if req.method != http.MethodPost {
			return methodNotAllowed()
		}
		return h.handleChat(ctx, req, correlationID)
	case "/api/speech/token":
		if req.method != http.MethodPost {
			return methodNotAllowed()
		}
		return h.handleSpeechToken(ctx, correlationID)
	default:
		return jsonError(http.StatusNotFound, "NOT_FOUND", "Not found.")
	}
}

func (h *Handler) handleChat(ctx context.Context, req request, correlationID string) response {
	if req.bodyTooLarge {
		return jsonError(http.StatusRequestEntityTooLarge, string(usecase.ErrorValidation), "Request body too large.")
	}

	var in usecase.ChatInput
	if len(strings.TrimSpace(string(req.body))) > 0 {
		if err := json.Unmarshal(req.body, &in); err != nil {
			return jsonError(http.StatusBadRequest, string(usecase.ErrorValidation), "Invalid JSON body.")
		}
	}
	in.RequestID = correlationID

	out, err := h.chat.Chat(ctx, req.header.Get(headerMode), in)
	if err != nil {
		return h.fromError(err, correlationID)
	}
	return jsonResponse(http.StatusOK, out)
}

func (h *Handler) handleSpeechToken(ctx context.Context, correlationID string) response {
	out, err := h.speech.Token(ctx)
	if err != nil {
		return h.fromError(err, correlationID)
	}
	return jsonResponse(http.StatusOK, out)
}

func (h *Handler) fromError(err error, correlationID string) response {
	var usecaseErr *usecase.Error
	if !errors.As(err, &usecaseErr) {
		h.logger.Error("unexpected error", "correlation_id", correlationID, "err", err)
		return jsonError(http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}

	switch usecaseErr.Code {
	case usecase.ErrorValidation:
		return jsonError(http.StatusBadRequest, string(usecaseErr.Code), usecaseErr.Message)
	case usecase.ErrorUpstream:
		h.logger.Warn("upstream error", "correlation_id", correlationID, "status", usecaseErr.StatusCode, "reason", usecaseErr.Reason)
		contentType := usecaseErr.ContentType
		if contentType == "" {
			contentType = contentTypeText
		}
		return response{status: usecaseErr.StatusCode, contentType: contentType, body: []byte(usecaseErr.Body)}
	default:
		h.logger.Error("request failed", "correlation_id", correlationID, "code", usecaseErr.Code, "reason", usecaseErr.Reason, "err", usecaseErr.Err)
		return jsonError(http.StatusInternalServerError, string(usecaseErr.Code), usecaseErr.Message)
	}
}

func methodNotAllowed() response {
	return jsonError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed.")
}

func jsonError(status int, code, message string) response {
	return jsonResponse(status, errorResponse{Error: message, Code: code})
}

func jsonResponse(status int, v any) response {
	b, err := json.Marshal(v)
	if err != nil {
		return response{
			status:      http.StatusInternalServerError,
			contentType: contentTypeJSON,
			body:        []byte(`{"error":"failed to encode response","code":"INTERNAL_ERROR"}`),
		}
	}
	return response{status: status, contentType: contentTypeJSON, body: b}
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
