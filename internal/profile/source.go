package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"rpl-relay/internal/integrations/paramstore"
)

// Source is a read-only key/value lookup for configuration variables.
// A key that is unset or blank reports ok=false with a nil error.
type Source interface {
	Lookup(ctx context.Context, key string) (value string, ok bool, err error)
}

// EnvSource reads variables from the process environment.
type EnvSource struct {
	lookup func(string) (string, bool)
}

func NewEnvSource() *EnvSource {
	return &EnvSource{lookup: os.LookupEnv}
}

func (s *EnvSource) Lookup(_ context.Context, key string) (string, bool, error) {
	lookup := s.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// MapSource serves variables from a fixed map.
type MapSource map[string]string

func (m MapSource) Lookup(_ context.Context, key string) (string, bool, error) {
	v := strings.TrimSpace(m[key])
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// ParamSource reads variables from SSM Parameter Store, one parameter per
// variable, named <prefix>/<KEY>.
type ParamSource struct {
	getter paramstore.Getter
	prefix string
}

func NewParamSource(getter paramstore.Getter, prefix string) (*ParamSource, error) {
	if getter == nil {
		return nil, errors.New("profile: param getter must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("profile: parameter prefix must not be empty")
	}
	return &ParamSource{getter: getter, prefix: prefix}, nil
}

func (s *ParamSource) Lookup(ctx context.Context, key string) (string, bool, error) {
	v, err := s.getter.GetParameter(ctx, s.prefix+"/"+key)
	if err != nil {
		if errors.Is(err, paramstore.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("profile: lookup %s: %w", key, err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Chain consults each source in order and returns the first hit.
type Chain []Source

func (c Chain) Lookup(ctx context.Context, key string) (string, bool, error) {
	for _, src := range c {
		v, ok, err := src.Lookup(ctx, key)
		if err != nil {
			return "", false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return "", false, nil
}
