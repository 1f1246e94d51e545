package handler

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"rpl-relay/internal/usecase"
)

// Handle serves an API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	header := make(http.Header, len(event.Headers))
	for k, vals := range event.MultiValueHeaders {
		for _, v := range vals {
			header.Add(k, v)
		}
	}
	for k, v := range event.Headers {
		header.Set(k, v)
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			resp := jsonError(http.StatusBadRequest, string(usecase.ErrorValidation), "Invalid request body encoding.")
			return toProxyResponse(resp, correlationIDFor(header)), nil
		}
		body = decoded
	}

	resp, correlationID := h.serve(ctx, request{
		method:       event.HTTPMethod,
		path:         event.Path,
		header:       header,
		body:         body,
		bodyTooLarge: len(body) > maxBodyBytes,
	})
	return toProxyResponse(resp, correlationID), nil
}

func toProxyResponse(resp response, correlationID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.status,
		Headers:    map[string]string{"Content-Type": resp.contentType, headerCorrelationID: correlationID},
		Body:       string(resp.body),
	}
}
