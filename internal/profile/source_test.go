package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"rpl-relay/internal/integrations/paramstore"
)

type fakeGetter struct {
	vals map[string]string
	err  error
	last string
}

func (f *fakeGetter) GetParameter(_ context.Context, name string) (string, error) {
	f.last = name
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.vals[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", paramstore.ErrNotFound, name)
	}
	return v, nil
}

func TestEnvSource_BlankIsUnset(t *testing.T) {
	src := &EnvSource{lookup: func(key string) (string, bool) {
		switch key {
		case "SET":
			return " value ", true
		case "BLANK":
			return "   ", true
		}
		return "", false
	}}

	v, ok, err := src.Lookup(context.Background(), "SET")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", v)

	_, ok, err = src.Lookup(context.Background(), "BLANK")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, _ = src.Lookup(context.Background(), "UNSET")
	require.False(t, ok)
}

func TestNewEnvSource_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("RPL_TEST_ONLY_VAR", "x")
	v, ok, err := NewEnvSource().Lookup(context.Background(), "RPL_TEST_ONLY_VAR")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", v)
}

func TestParamSource(t *testing.T) {
	g := &fakeGetter{vals: map[string]string{"/rpl/RPL_API_KEY": "secret"}}
	src, err := NewParamSource(g, "/rpl/")
	require.NoError(t, err)

	v, ok, err := src.Lookup(context.Background(), "RPL_API_KEY")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "secret", v)
	require.Equal(t, "/rpl/RPL_API_KEY", g.last)

	_, ok, err = src.Lookup(context.Background(), "RPL_DEPLOYMENT")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParamSource_Error(t *testing.T) {
	src, err := NewParamSource(&fakeGetter{err: errors.New("throttled")}, "/rpl")
	require.NoError(t, err)
	_, _, err = src.Lookup(context.Background(), "RPL_API_KEY")
	require.ErrorContains(t, err, "throttled")
}

func TestNewParamSource_Validates(t *testing.T) {
	_, err := NewParamSource(nil, "/rpl")
	require.Error(t, err)
	_, err = NewParamSource(&fakeGetter{}, " / ")
	require.Error(t, err)
}

func TestChain_FirstHitWins(t *testing.T) {
	c := Chain{
		MapSource{"A": "env"},
		MapSource{"A": "ssm", "B": "ssm-b"},
	}
	v, ok, err := c.Lookup(context.Background(), "A")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "env", v)

	v, _, _ = c.Lookup(context.Background(), "B")
	require.Equal(t, "ssm-b", v)

	_, ok, _ = c.Lookup(context.Background(), "C")
	require.False(t, ok)
}
