package handler

import (
	"io"
	"net/http"
	"strconv"

	"rpl-relay/internal/usecase"
)

// ServeHTTP serves the same routes as Handle for a plain net/http listener.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	_ = r.Body.Close()
	if err != nil {
		writeResponse(w, jsonError(http.StatusBadRequest, string(usecase.ErrorValidation), "Failed to read request body."), correlationIDFor(r.Header))
		return
	}

	resp, correlationID := h.serve(r.Context(), request{
		method:       r.Method,
		path:         r.URL.Path,
		header:       r.Header,
		body:         body,
		bodyTooLarge: len(body) > maxBodyBytes,
	})
	writeResponse(w, resp, correlationID)
}

func writeResponse(w http.ResponseWriter, resp response, correlationID string) {
	w.Header().Set("Content-Type", resp.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.body)))
	w.Header().Set(headerCorrelationID, correlationID)
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}
