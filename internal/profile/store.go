package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rpl-relay/internal/domain"
)

// Profile names.
const (
	Default = "default"
	Router  = "router"
	Final   = "final"
)

const (
	speechKeyVar    = "AZURE_SPEECH_KEY"
	speechRegionVar = "AZURE_SPEECH_REGION"
)

var prefixes = map[string]string{
	Default: "RPL_",
	Router:  "RPL_ROUTER_",
	Final:   "RPL_FINAL_",
}

// MissingError lists the required variables that were not set.
type MissingError struct {
	Vars []string
}

func (e *MissingError) Error() string {
	return "Missing required environment variables: " + strings.Join(e.Vars, ", ") + "."
}

// Store resolves named profiles from a Source. A profile is cached once it
// resolves completely; incomplete lookups are retried on the next call.
type Store struct {
	src Source

	mu       sync.RWMutex
	profiles map[string]domain.Profile
	speech   *domain.SpeechCredentials
}

func NewStore(src Source) (*Store, error) {
	if src == nil {
		return nil, errors.New("profile: source must not be nil")
	}
	return &Store{src: src, profiles: make(map[string]domain.Profile)}, nil
}

// VarName returns the variable that holds field for the named profile,
// e.g. VarName(Final, "API_KEY") == "RPL_FINAL_API_KEY".
func VarName(name, field string) string {
	return prefixes[name] + field
}

// Profile returns the named profile. Router and final fields that are unset
// fall back to the default profile's variables.
func (s *Store) Profile(ctx context.Context, name string) (domain.Profile, error) {
	if _, ok := prefixes[name]; !ok {
		return domain.Profile{}, fmt.Errorf("profile: unknown profile %q", name)
	}

	s.mu.RLock()
	p, ok := s.profiles[name]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := s.load(ctx, name)
	if err != nil {
		return domain.Profile{}, err
	}

	s.mu.Lock()
	s.profiles[name] = p
	s.mu.Unlock()
	return p, nil
}

func (s *Store) load(ctx context.Context, name string) (domain.Profile, error) {
	r := resolver{ctx: ctx, src: s.src, name: name}
	p := domain.Profile{
		Name:         name,
		APIKey:       r.required("API_KEY"),
		APIVersion:   r.required("API_VERSION"),
		Endpoint:     r.required("AZURE_ENDPOINT"),
		Deployment:   r.required("DEPLOYMENT"),
		ModelName:    r.optional("MODEL_NAME"),
		SystemPrompt: r.optional("SYSTEM_PROMPT"),
	}
	if r.err != nil {
		return domain.Profile{}, r.err
	}
	if len(r.missing) > 0 {
		return domain.Profile{}, &MissingError{Vars: r.missing}
	}
	return p, nil
}

// Speech returns the speech subscription credentials.
func (s *Store) Speech(ctx context.Context) (domain.SpeechCredentials, error) {
	s.mu.RLock()
	cached := s.speech
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	var missing []string
	get := func(key string) (string, error) {
		v, ok, err := s.src.Lookup(ctx, key)
		if err != nil {
			return "", err
		}
		if !ok {
			missing = append(missing, key)
		}
		return v, nil
	}
	key, err := get(speechKeyVar)
	if err != nil {
		return domain.SpeechCredentials{}, err
	}
	region, err := get(speechRegionVar)
	if err != nil {
		return domain.SpeechCredentials{}, err
	}
	if len(missing) > 0 {
		return domain.SpeechCredentials{}, &MissingError{Vars: missing}
	}

	creds := domain.SpeechCredentials{Region: region, SubscriptionKey: key}
	s.mu.Lock()
	s.speech = &creds
	s.mu.Unlock()
	return creds, nil
}

// resolver accumulates missing variables and the first lookup error.
type resolver struct {
	ctx     context.Context
	src     Source
	name    string
	missing []string
	err     error
}

func (r *resolver) lookup(field string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok, err := r.src.Lookup(r.ctx, VarName(r.name, field))
	if err == nil && !ok && r.name != Default {
		v, ok, err = r.src.Lookup(r.ctx, VarName(Default, field))
	}
	if err != nil {
		r.err = err
		return "", false
	}
	return v, ok
}

func (r *resolver) required(field string) string {
	v, ok := r.lookup(field)
	if !ok && r.err == nil {
		r.missing = append(r.missing, VarName(r.name, field))
	}
	return v
}

func (r *resolver) optional(field string) string {
	v, _ := r.lookup(field)
	return v
}
