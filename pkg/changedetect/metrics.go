package changedetect

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMetrics is returned when a metrics vector is incomplete or carries
// values that cannot describe a real page (negative counts, NaN heights).
var ErrInvalidMetrics = errors.New("invalid metrics vector")

// Metrics is a structural snapshot of a page at one instant.
// Values are produced by a MetricsSource and never modified by the detector.
type Metrics struct {
	ElementCount         int     `json:"elementCount"`
	VisibleElementCount  int     `json:"visibleElementCount"`
	DialogCount          int     `json:"dialogCount"`
	OverlayCount         int     `json:"overlayCount"`
	FormCount            int     `json:"formCount"`
	InputCount           int     `json:"inputCount"`
	ButtonCount          int     `json:"buttonCount"`
	LinkCount            int     `json:"linkCount"`
	MaxZIndex            int     `json:"maxZIndex"`
	FixedElementCount    int     `json:"fixedElementCount"`
	AbsoluteElementCount int     `json:"absoluteElementCount"`
	ViewportHeight       float64 `json:"viewportHeight"`
	URL                  string  `json:"url"`
}

// MetricsSource supplies one metrics vector per call, typically by inspecting
// a live page.
type MetricsSource interface {
	CaptureMetrics(ctx context.Context) (Metrics, error)
}

// Validate reports whether m can be classified.
func (m Metrics) Validate() error {
	counts := []struct {
		name  string
		value int
	}{
		{"elementCount", m.ElementCount},
		{"visibleElementCount", m.VisibleElementCount},
		{"dialogCount", m.DialogCount},
		{"overlayCount", m.OverlayCount},
		{"formCount", m.FormCount},
		{"inputCount", m.InputCount},
		{"buttonCount", m.ButtonCount},
		{"linkCount", m.LinkCount},
		{"maxZIndex", m.MaxZIndex},
		{"fixedElementCount", m.FixedElementCount},
		{"absoluteElementCount", m.AbsoluteElementCount},
	}
	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%w: %s is negative (%d)", ErrInvalidMetrics, c.name, c.value)
		}
	}

	if math.IsNaN(m.ViewportHeight) || math.IsInf(m.ViewportHeight, 0) {
		return fmt.Errorf("%w: viewportHeight is not a finite number", ErrInvalidMetrics)
	}
	if m.ViewportHeight < 0 {
		return fmt.Errorf("%w: viewportHeight is negative (%g)", ErrInvalidMetrics, m.ViewportHeight)
	}

	return nil
}
