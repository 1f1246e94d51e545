package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingSource struct {
	src   Source
	calls int
	err   error
}

func (c *countingSource) Lookup(ctx context.Context, key string) (string, bool, error) {
	c.calls++
	if c.err != nil {
		return "", false, c.err
	}
	return c.src.Lookup(ctx, key)
}

func fullDefault() MapSource {
	return MapSource{
		"RPL_API_KEY":        "default-key",
		"RPL_API_VERSION":    "2024-10-21",
		"RPL_AZURE_ENDPOINT": "https://default.openai.azure.com",
		"RPL_DEPLOYMENT":     "gpt-4o",
	}
}

func newStore(t *testing.T, src Source) *Store {
	t.Helper()
	s, err := NewStore(src)
	require.NoError(t, err)
	return s
}

func TestNewStore_NilSource(t *testing.T) {
	_, err := NewStore(nil)
	require.Error(t, err)
}

func TestProfile_FinalUsesOwnVariables(t *testing.T) {
	src := fullDefault()
	src["RPL_FINAL_API_KEY"] = "final-key"
	src["RPL_FINAL_DEPLOYMENT"] = "gpt-4o-large"
	src["RPL_FINAL_MODEL_NAME"] = "gpt-4o"
	src["RPL_FINAL_SYSTEM_PROMPT"] = "be thorough"

	p, err := newStore(t, src).Profile(context.Background(), Final)
	require.NoError(t, err)
	require.Equal(t, Final, p.Name)
	require.Equal(t, "final-key", p.APIKey)
	require.Equal(t, "gpt-4o-large", p.Deployment)
	require.Equal(t, "gpt-4o", p.ModelName)
	require.Equal(t, "be thorough", p.SystemPrompt)
	// falls back to the default profile
	require.Equal(t, "2024-10-21", p.APIVersion)
	require.Equal(t, "https://default.openai.azure.com", p.Endpoint)
}

func TestProfile_MissingVariablesNamedPerProfile(t *testing.T) {
	src := MapSource{"RPL_ROUTER_API_KEY": "k", "RPL_DEPLOYMENT": "d"}

	_, err := newStore(t, src).Profile(context.Background(), Router)
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, []string{"RPL_ROUTER_API_VERSION", "RPL_ROUTER_AZURE_ENDPOINT"}, missing.Vars)
	require.Equal(t, "Missing required environment variables: RPL_ROUTER_API_VERSION, RPL_ROUTER_AZURE_ENDPOINT.", err.Error())
}

func TestProfile_DefaultDoesNotFallBack(t *testing.T) {
	src := MapSource{"RPL_ROUTER_API_KEY": "k"}
	_, err := newStore(t, src).Profile(context.Background(), Default)
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	require.Len(t, missing.Vars, 4)
	require.Contains(t, missing.Vars, "RPL_API_KEY")
}

func TestProfile_UnknownName(t *testing.T) {
	_, err := newStore(t, fullDefault()).Profile(context.Background(), "other")
	require.ErrorContains(t, err, "unknown profile")
}

func TestProfile_CachedAfterSuccess(t *testing.T) {
	src := &countingSource{src: fullDefault()}
	s := newStore(t, src)

	_, err := s.Profile(context.Background(), Router)
	require.NoError(t, err)
	calls := src.calls

	_, err = s.Profile(context.Background(), Router)
	require.NoError(t, err)
	require.Equal(t, calls, src.calls)
}

func TestProfile_FailureIsRetried(t *testing.T) {
	src := MapSource{}
	s := newStore(t, src)

	_, err := s.Profile(context.Background(), Final)
	require.Error(t, err)

	for k, v := range fullDefault() {
		src[k] = v
	}
	p, err := s.Profile(context.Background(), Final)
	require.NoError(t, err)
	require.Equal(t, "default-key", p.APIKey)
}

func TestProfile_SourceError(t *testing.T) {
	s := newStore(t, &countingSource{err: errors.New("ssm down")})
	_, err := s.Profile(context.Background(), Final)
	require.ErrorContains(t, err, "ssm down")
	var missing *MissingError
	require.False(t, errors.As(err, &missing))
}

func TestSpeech(t *testing.T) {
	s := newStore(t, MapSource{"AZURE_SPEECH_KEY": "sub", "AZURE_SPEECH_REGION": "westeurope"})
	creds, err := s.Speech(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sub", creds.SubscriptionKey)
	require.Equal(t, "westeurope", creds.Region)
}

func TestSpeech_Missing(t *testing.T) {
	s := newStore(t, MapSource{"AZURE_SPEECH_KEY": "sub"})
	_, err := s.Speech(context.Background())
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, []string{"AZURE_SPEECH_REGION"}, missing.Vars)
}
