package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"rpl-relay/internal/domain"
	"rpl-relay/internal/integrations/azurespeech"
	"rpl-relay/internal/profile"
)

type stubIssuer struct {
	token string
	err   error
	got   domain.SpeechCredentials
}

func (s *stubIssuer) IssueToken(_ context.Context, creds domain.SpeechCredentials) (string, error) {
	s.got = creds
	return s.token, s.err
}

func newTestSpeech(t *testing.T, src profile.Source, issuer TokenIssuer) *SpeechService {
	t.Helper()
	store, err := profile.NewStore(src)
	require.NoError(t, err)
	svc, err := NewSpeechService(store, issuer)
	require.NoError(t, err)
	return svc
}

func TestNewSpeechService_ValidatesDependencies(t *testing.T) {
	_, err := NewSpeechService(nil, &stubIssuer{})
	require.Error(t, err)
	store, err := profile.NewStore(fullSource())
	require.NoError(t, err)
	_, err = NewSpeechService(store, nil)
	require.Error(t, err)
}

func TestToken_HappyPath(t *testing.T) {
	issuer := &stubIssuer{token: "tok"}
	out, err := newTestSpeech(t, fullSource(), issuer).Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.SpeechToken{Token: "tok", Region: "westeurope", ExpiresIn: 540}, out)
	require.Equal(t, "sub", issuer.got.SubscriptionKey)
}

func TestToken_MissingConfiguration(t *testing.T) {
	_, err := newTestSpeech(t, profile.MapSource{"AZURE_SPEECH_REGION": "westeurope"}, &stubIssuer{}).Token(context.Background())
	e := expectError(t, err, ErrorConfiguration)
	require.Contains(t, e.Message, "AZURE_SPEECH_KEY")
}

func TestToken_UpstreamError(t *testing.T) {
	issuer := &stubIssuer{err: &azurespeech.HTTPStatusError{StatusCode: http.StatusUnauthorized, Body: "denied"}}
	_, err := newTestSpeech(t, fullSource(), issuer).Token(context.Background())
	e := expectError(t, err, ErrorUpstream)
	require.Equal(t, http.StatusUnauthorized, e.StatusCode)
	require.Equal(t, "denied", e.Body)
}

func TestToken_TransportError(t *testing.T) {
	issuer := &stubIssuer{err: errors.New("no such host")}
	_, err := newTestSpeech(t, fullSource(), issuer).Token(context.Background())
	e := expectError(t, err, ErrorTransport)
	require.Equal(t, "no such host", e.Message)
}
