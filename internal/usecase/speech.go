package usecase

import (
	"context"
	"errors"

	"rpl-relay/internal/domain"
)

const (
	tokenValiditySeconds = 540

	emptySpeechErrorBody = "Azure Speech error"
)

type SpeechCredentialResolver interface {
	Speech(ctx context.Context) (domain.SpeechCredentials, error)
}

type TokenIssuer interface {
	IssueToken(ctx context.Context, creds domain.SpeechCredentials) (string, error)
}

type SpeechService struct {
	creds  SpeechCredentialResolver
	issuer TokenIssuer
}

func NewSpeechService(c SpeechCredentialResolver, issuer TokenIssuer) (*SpeechService, error) {
	if c == nil {
		return nil, errors.New("usecase: speech credential resolver must not be nil")
	}
	if issuer == nil {
		return nil, errors.New("usecase: token issuer must not be nil")
	}
	return &SpeechService{creds: c, issuer: issuer}, nil
}

// Token exchanges the configured subscription for a browser speech token.
func (s *SpeechService) Token(ctx context.Context) (domain.SpeechToken, error) {
	creds, err := s.creds.Speech(ctx)
	if err != nil {
		return domain.SpeechToken{}, configurationError(err)
	}

	token, err := s.issuer.IssueToken(ctx, creds)
	if err != nil {
		return domain.SpeechToken{}, callError(err, emptySpeechErrorBody)
	}

	return domain.SpeechToken{
		Token:     token,
		Region:    creds.Region,
		ExpiresIn: tokenValiditySeconds,
	}, nil
}
