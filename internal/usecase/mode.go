package usecase

import (
	"strings"

	"rpl-relay/internal/profile"
)

const (
	ModeRouter = "router"
	ModeFinal  = "final"

	routerTokenFloor = 800
	finalTokenFloor  = 1200
)

type modePolicy struct {
	mode         string
	profile      string
	tokenFloor   float64
	systemPrompt string
}

// policyFor maps the client's mode header to a profile. Anything other than
// "final" is treated as router.
func policyFor(mode string) modePolicy {
	if strings.EqualFold(strings.TrimSpace(mode), ModeFinal) {
		return modePolicy{
			mode:         ModeFinal,
			profile:      profile.Final,
			tokenFloor:   finalTokenFloor,
			systemPrompt: finalSystemPrompt,
		}
	}
	return modePolicy{
		mode:         ModeRouter,
		profile:      profile.Router,
		tokenFloor:   routerTokenFloor,
		systemPrompt: routerSystemPrompt,
	}
}

func (p modePolicy) maxTokens(requested float64) float64 {
	if requested < p.tokenFloor {
		return p.tokenFloor
	}
	return requested
}
