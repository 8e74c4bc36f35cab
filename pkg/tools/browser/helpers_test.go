package browser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

// fakeSource replays a fixed sequence of captures.
type fakeSource struct {
	mu    sync.Mutex
	steps []capture
	calls int
}

type capture struct {
	metrics changedetect.Metrics
	err     error
}

func newFakeSource(vectors ...changedetect.Metrics) *fakeSource {
	s := &fakeSource{}
	for _, v := range vectors {
		s.steps = append(s.steps, capture{metrics: v})
	}
	return s
}

func (s *fakeSource) CaptureMetrics(ctx context.Context) (changedetect.Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.calls >= len(s.steps) {
		return changedetect.Metrics{}, errors.New("no more captures")
	}
	step := s.steps[s.calls]
	s.calls++
	return step.metrics, step.err
}

// fakeWriter records capture requests.
type fakeWriter struct {
	screenshots []string
	snapshots   []string
	err         error
}

func (w *fakeWriter) Screenshot(path string, fullPage bool) error {
	if w.err != nil {
		return w.err
	}
	w.screenshots = append(w.screenshots, path)
	return nil
}

func (w *fakeWriter) Snapshot(path string) error {
	if w.err != nil {
		return w.err
	}
	w.snapshots = append(w.snapshots, path)
	return nil
}

func page() changedetect.Metrics {
	return changedetect.Metrics{
		ElementCount:         100,
		VisibleElementCount:  80,
		FormCount:            1,
		InputCount:           3,
		ButtonCount:          2,
		LinkCount:            10,
		MaxZIndex:            10,
		FixedElementCount:    1,
		AbsoluteElementCount: 2,
		ViewportHeight:       720,
		URL:                  "https://shop.example.com/cart",
	}
}

func withDialog(m changedetect.Metrics) changedetect.Metrics {
	m.DialogCount++
	return m
}

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	m := NewSessionManager(nil)
	t.Cleanup(func() { _ = m.CloseAll() })
	return m
}

func addSession(t *testing.T, m *SessionManager, name string, src changedetect.MetricsSource) *Session {
	t.Helper()
	s, err := m.AddSession(name, src, SessionOptions{Headless: true})
	require.NoError(t, err)
	return s
}
