package usecase

import (
	"strings"

	"rpl-relay/internal/domain"
)

var routerSystemPrompt = strings.Join([]string{
	"You are the routing stage of an analysis pipeline.",
	"Read the request and decide what information the final analysis needs.",
	"Respond concisely and only with content that helps the next stage.",
}, "\n")

var finalSystemPrompt = strings.Join([]string{
	"You are the final stage of an analysis pipeline.",
	"Produce a complete, well-structured answer to the request.",
	"Do not mention internal stages or routing decisions.",
}, "\n")

func buildMessages(systemPrompt, prompt string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}
}
