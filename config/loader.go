package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/victoralfred/gowritter/safepath"
)

// Loader loads and caches a profile from a YAML file.
type Loader struct {
	path       string
	safePath   *safepath.SafePath
	profile    *Profile
	mu         sync.RWMutex
	lastHash   []byte
	lastLoad   time.Time
	validators []ProfileValidator
}

// ProfileValidator validates a loaded profile.
type ProfileValidator interface {
	Validate(p *Profile) error
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithValidator adds a profile validator.
func WithValidator(v ProfileValidator) LoaderOption {
	return func(l *Loader) {
		l.validators = append(l.validators, v)
	}
}

// NewLoader creates a loader for profileFile under basePath.
func NewLoader(basePath, profileFile string, opts ...LoaderOption) (*Loader, error) {
	sp, err := safepath.New(basePath)
	if err != nil {
		return nil, fmt.Errorf("creating safe path: %w", err)
	}

	l := &Loader{
		path:     profileFile,
		safePath: sp,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load reads and parses the profile. Unchanged file contents return the
// cached profile.
func (l *Loader) Load(ctx context.Context) (*Profile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.safePath.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	hash := sha256.Sum256(data)
	if l.profile != nil && string(hash[:]) == string(l.lastHash) {
		return l.profile, nil
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}

	for _, v := range l.validators {
		if err := v.Validate(p); err != nil {
			return nil, fmt.Errorf("profile validation failed: %w", err)
		}
	}

	l.profile = p
	l.lastHash = hash[:]
	l.lastLoad = time.Now()
	return p, nil
}

// Get returns the cached profile without reloading, or false when nothing
// has been loaded yet.
func (l *Loader) Get() (*Profile, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.profile == nil {
		return nil, false
	}
	return l.profile, true
}

// DefaultValidator performs basic sanity checks on a profile.
type DefaultValidator struct{}

// Validate implements ProfileValidator.
func (DefaultValidator) Validate(p *Profile) error {
	if _, err := p.Options(); err != nil {
		return err
	}
	return nil
}
