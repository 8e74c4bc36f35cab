package browser

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/config"
	"github.com/entrhq/pagewatch/pkg/logging"
	"github.com/entrhq/pagewatch/pkg/telemetry"
)

// SessionManager owns every open browser session. Each session gets its own
// change detector, so baselines never leak between monitored pages.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	maxSessions int
	idleTimeout time.Duration
	initialized bool
	logger      *logging.Logger

	hookMu   sync.Mutex
	onChange func()
}

// NewSessionManager creates a session manager. Limits come from the browser
// config section when the global config is initialized.
func NewSessionManager(logger *logging.Logger) *SessionManager {
	m := &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
		logger:      logger,
	}
	if b := config.GetBrowser(); b != nil {
		m.maxSessions, m.idleTimeout = b.Limits()
	}
	return m
}

// Initialize installs the browser driver and starts Playwright.
// This must be called before creating any sessions.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// stdout may carry MCP traffic, keep the driver quiet
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	m.logger.Infof("playwright started")
	return nil
}

// StartSession launches a browser and opens a page for a new session.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	defer m.notify()
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkCapacity(name); err != nil {
		return nil, err
	}
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	policy, err := currentURLPolicy()
	if err != nil {
		return nil, err
	}

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	session := m.newSession(name, opts)
	session.Browser = browser
	session.Context = bctx
	session.Page = page
	session.Metrics = NewPageMetricsSource(page)
	session.policy = policy

	m.register(session)
	return session, nil
}

// AddSession registers a session backed by an arbitrary metrics source, for
// hosts that collect metrics without a browser page.
func (m *SessionManager) AddSession(name string, source changedetect.MetricsSource, opts SessionOptions) (*Session, error) {
	defer m.notify()
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkCapacity(name); err != nil {
		return nil, err
	}

	session := m.newSession(name, opts)
	session.Metrics = source
	m.register(session)
	return session, nil
}

func (m *SessionManager) checkCapacity(name string) error {
	if _, exists := m.sessions[name]; exists {
		return fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	return nil
}

func (m *SessionManager) newSession(name string, opts SessionOptions) *Session {
	thresholds := changedetect.DefaultThresholds()
	if cd := config.GetChangeDetection(); cd != nil {
		thresholds = cd.Thresholds()
	}
	if opts.Thresholds != nil {
		thresholds = *opts.Thresholds
	}

	now := time.Now()
	return &Session{
		Name:       name,
		Headless:   opts.Headless,
		CreatedAt:  now,
		Detector:   changedetect.New(changedetect.WithThresholds(thresholds)),
		logger:     m.logger.With(name),
		lastUsedAt: now,
		currentURL: "about:blank",
	}
}

// register must be called with m.mu held.
func (m *SessionManager) register(s *Session) {
	m.sessions[s.Name] = s
	telemetry.SetActiveSessions(len(m.sessions))
	m.logger.Infof("session %q started (headless=%t)", s.Name, s.Headless)
}

// unregister must be called with m.mu held.
func (m *SessionManager) unregister(name string) []error {
	s := m.sessions[name]
	delete(m.sessions, name)
	telemetry.SetActiveSessions(len(m.sessions))
	m.logger.Infof("session %q closed", name)
	return s.close()
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	defer m.notify()
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; !exists {
		return fmt.Errorf("session %q not found", name)
	}

	// Resource errors are logged; the session is gone either way
	for _, err := range m.unregister(name) {
		m.logger.Warnf("closing session %q: %v", name, err)
	}
	return nil
}

// GetSession retrieves an active session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session %q not found", name)
	}

	return session, nil
}

// ListSessions returns information about all active sessions, sorted by name.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, session.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos
}

// HasSessions returns true if there are any active sessions.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// CloseAll closes all active sessions.
func (m *SessionManager) CloseAll() error {
	defer m.notify()
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name := range m.sessions {
		errs = append(errs, m.unregister(name)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing sessions: %v", errs)
	}
	return nil
}

// Shutdown closes all sessions and stops Playwright.
func (m *SessionManager) Shutdown() error {
	closeErr := m.CloseAll()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}

	return closeErr
}

// CleanupIdleSessions closes sessions that have been idle for longer than the
// timeout and returns their names.
func (m *SessionManager) CleanupIdleSessions() ([]string, error) {
	defer m.notify()
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var closed []string
	var errs []error

	for name, session := range m.sessions {
		if now.Sub(session.LastUsedAt()) > m.idleTimeout {
			closed = append(closed, name)
		}
	}
	sort.Strings(closed)

	for _, name := range closed {
		errs = append(errs, m.unregister(name)...)
	}

	if len(errs) > 0 {
		return closed, fmt.Errorf("errors during cleanup: %v", errs)
	}
	return closed, nil
}

// RunIdleCleanup calls CleanupIdleSessions every interval until ctx is done.
func (m *SessionManager) RunIdleCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := m.CleanupIdleSessions()
			if err != nil {
				m.logger.Warnf("idle cleanup: %v", err)
			}
			if len(closed) > 0 {
				m.logger.Infof("closed idle sessions: %v", closed)
			}
		}
	}
}

// OnSessionsChanged registers fn to run after sessions are opened or closed.
// fn runs without the manager lock held and may call back into the manager.
func (m *SessionManager) OnSessionsChanged(fn func()) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.onChange = fn
}

func (m *SessionManager) notify() {
	m.hookMu.Lock()
	fn := m.onChange
	m.hookMu.Unlock()

	if fn != nil {
		fn()
	}
}

// SetMaxSessions sets the maximum number of concurrent sessions.
func (m *SessionManager) SetMaxSessions(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = max
}

// SetIdleTimeout sets the idle timeout duration.
func (m *SessionManager) SetIdleTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = timeout
}

func currentURLPolicy() (*URLPolicy, error) {
	b := config.GetBrowser()
	if b == nil {
		return nil, nil
	}
	return NewURLPolicy(b.URLPatterns())
}
