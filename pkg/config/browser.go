package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	defaultBrowserHeadless = true
	defaultMaxSessions     = 5
	defaultIdleTimeout     = 5 * time.Minute
)

// BrowserSection controls how browser sessions are launched.
type BrowserSection struct {
	Headless    bool          `json:"headless"`
	MaxSessions int           `json:"max_sessions"`
	IdleTimeout time.Duration `json:"idle_timeout"`

	// AllowedURLs are glob patterns; navigation to anything else is refused.
	// Empty means every URL is allowed.
	AllowedURLs []string `json:"allowed_urls"`

	mu sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	return &BrowserSection{
		Headless:    defaultBrowserHeadless,
		MaxSessions: defaultMaxSessions,
		IdleTimeout: defaultIdleTimeout,
	}
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser Settings"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Configure browser session defaults: headless mode, session limits, idle timeout and the URL allow-list."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := make([]interface{}, 0, len(s.AllowedURLs))
	for _, p := range s.AllowedURLs {
		allowed = append(allowed, p)
	}

	return map[string]interface{}{
		"headless":     s.Headless,
		"max_sessions": s.MaxSessions,
		"idle_timeout": s.IdleTimeout.String(),
		"allowed_urls": allowed,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "headless":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for headless: expected bool, got %T", value)
			}
			s.Headless = enabled

		case "max_sessions":
			n, ok := toInt(value)
			if !ok {
				return fmt.Errorf("invalid value type for max_sessions: expected number, got %T", value)
			}
			s.MaxSessions = n

		case "idle_timeout":
			switch v := value.(type) {
			case string:
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid duration string for idle_timeout: %w", err)
				}
				s.IdleTimeout = d
			case float64:
				// JSON numbers come as float64 nanoseconds
				s.IdleTimeout = time.Duration(v)
			default:
				return fmt.Errorf("invalid value type for idle_timeout: expected string or number, got %T", value)
			}

		case "allowed_urls":
			patterns, err := toStrings(value)
			if err != nil {
				return fmt.Errorf("invalid allowed_urls: %w", err)
			}
			s.AllowedURLs = patterns

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got %d", s.MaxSessions)
	}
	if s.IdleTimeout < time.Second {
		return fmt.Errorf("idle_timeout must be at least 1s, got %v", s.IdleTimeout)
	}
	for _, p := range s.AllowedURLs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid allowed_urls pattern %q: %w", p, err)
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Headless = defaultBrowserHeadless
	s.MaxSessions = defaultMaxSessions
	s.IdleTimeout = defaultIdleTimeout
	s.AllowedURLs = nil
}

// IsHeadless returns the default mode for new sessions.
func (s *BrowserSection) IsHeadless() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Headless
}

// Limits returns the session cap and idle timeout.
func (s *BrowserSection) Limits() (int, time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MaxSessions, s.IdleTimeout
}

// URLPatterns returns a copy of the allow-list.
func (s *BrowserSection) URLPatterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.AllowedURLs...)
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func toStrings(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", value)
	}
}
