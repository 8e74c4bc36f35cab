package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/telemetry"
)

var errNoPage = errors.New("session has no open page")

// UpdateLastUsed updates the last-used timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.mu.Lock()
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
}

// LastUsedAt returns the time of the last operation on this session.
func (s *Session) LastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsedAt
}

// CurrentURL returns the URL the page was last seen at.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

func (s *Session) setCurrentURL(url string) {
	s.mu.Lock()
	s.currentURL = url
	s.mu.Unlock()
}

// Info returns a metadata snapshot of the session.
func (s *Session) Info() SessionInfo {
	_, hasBaseline := s.Detector.Baseline()

	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		Name:        s.Name,
		CurrentURL:  s.currentURL,
		Headless:    s.Headless,
		CreatedAt:   s.CreatedAt,
		LastUsedAt:  s.lastUsedAt,
		HasBaseline: hasBaseline,
	}
}

// Navigate navigates the session's page to the specified URL.
// URLs outside the configured allow-list are refused before the page is touched.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	if err := s.policy.Check(url); err != nil {
		return err
	}
	if s.Page == nil {
		return errNoPage
	}

	playwrightOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.setCurrentURL(s.Page.URL())
	s.logger.Infof("navigated to %s", s.CurrentURL())
	return nil
}

// Title returns the page title, or "" when it cannot be read.
func (s *Session) Title() string {
	if s.Page == nil {
		return ""
	}
	title, err := s.Page.Title()
	if err != nil {
		return ""
	}
	return title
}

// CaptureMetrics collects a metrics vector from the page.
func (s *Session) CaptureMetrics(ctx context.Context) (changedetect.Metrics, error) {
	s.UpdateLastUsed()

	if s.Metrics == nil {
		return changedetect.Metrics{}, errNoPage
	}
	m, err := s.Metrics.CaptureMetrics(ctx)
	if err != nil {
		return changedetect.Metrics{}, err
	}
	s.setCurrentURL(m.URL)
	return m, nil
}

// Detect captures the page and classifies it against the session baseline.
// A capture failure is returned without touching the detector. Concurrent
// calls run one at a time.
func (s *Session) Detect(ctx context.Context) (changedetect.Result, error) {
	s.detectMu.Lock()
	defer s.detectMu.Unlock()

	m, err := s.CaptureMetrics(ctx)
	if err != nil {
		s.logger.Warnf("metrics capture failed: %v", err)
		return changedetect.Result{}, fmt.Errorf("failed to capture page metrics: %w", err)
	}

	result, err := s.Detector.Classify(m)
	if err != nil {
		return changedetect.Result{}, err
	}

	telemetry.RecordClassification(result)
	if result.Changed {
		s.logger.Infof("%s change on %s: %v", result.Level, m.URL, result.Reasons)
	} else {
		s.logger.Debugf("no change on %s (baseline initialized: %t)", m.URL, result.BaselineInitialized)
	}
	return result, nil
}

// Screenshot writes a PNG of the page to path.
func (s *Session) Screenshot(path string, fullPage bool) error {
	s.UpdateLastUsed()

	if s.Page == nil {
		return errNoPage
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	_, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	telemetry.RecordArtifact(ArtifactScreenshot)
	s.logger.Infof("screenshot written to %s", path)
	return nil
}

// Snapshot writes the page's serialized DOM to path.
func (s *Session) Snapshot(path string) error {
	s.UpdateLastUsed()

	if s.Page == nil {
		return errNoPage
	}
	content, err := s.Page.Content()
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	telemetry.RecordArtifact(ArtifactSnapshot)
	s.logger.Infof("snapshot written to %s", path)
	return nil
}

// close releases the playwright resources. Errors are collected so that
// every resource gets a chance to close.
func (s *Session) close() []error {
	var errs []error
	if s.Page != nil {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// SnapshotFilename maps a suggested screenshot filename to the matching
// snapshot filename.
func SnapshotFilename(screenshot string) string {
	return screenshot[:len(screenshot)-len(filepath.Ext(screenshot))] + ".html"
}
