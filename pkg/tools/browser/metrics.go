package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/telemetry"
)

// collectorScript runs in the page and returns the structural metrics vector.
// An element counts as visible when it has a box intersecting the viewport and
// is not hidden by visibility or opacity. Overlays are positioned elements with
// a positive z-index that cover at least a quarter of the viewport.
const collectorScript = `() => {
  const all = Array.from(document.querySelectorAll('*'));
  const vw = window.innerWidth;
  const vh = window.innerHeight;
  let visible = 0, fixed = 0, absolute = 0, overlays = 0, maxZ = 0;

  for (const el of all) {
    const style = window.getComputedStyle(el);
    const rect = el.getBoundingClientRect();

    const shown = style.display !== 'none' &&
      style.visibility !== 'hidden' &&
      style.opacity !== '0' &&
      rect.width > 0 && rect.height > 0 &&
      rect.bottom > 0 && rect.right > 0 && rect.top < vh && rect.left < vw;
    if (shown) visible++;

    if (style.position === 'fixed') fixed++;
    if (style.position === 'absolute') absolute++;

    const z = parseInt(style.zIndex, 10);
    if (!isNaN(z) && z > maxZ) maxZ = z;

    const positioned = style.position === 'fixed' || style.position === 'absolute';
    if (shown && positioned && !isNaN(z) && z > 0 && rect.width * rect.height >= (vw * vh) / 4) {
      overlays++;
    }
  }

  const dialogs = document.querySelectorAll(
    'dialog[open], [role="dialog"], [role="alertdialog"], [aria-modal="true"]'
  ).length;

  return {
    elementCount: all.length,
    visibleElementCount: visible,
    dialogCount: dialogs,
    overlayCount: overlays,
    formCount: document.forms.length,
    inputCount: document.querySelectorAll('input, textarea, select').length,
    buttonCount: document.querySelectorAll('button, [role="button"], input[type="button"], input[type="submit"]').length,
    linkCount: document.querySelectorAll('a[href]').length,
    maxZIndex: maxZ,
    fixedElementCount: fixed,
    absoluteElementCount: absolute,
    viewportHeight: vh,
    url: window.location.href
  };
}`

// pageEvaluator is the part of playwright.Page the metrics source needs.
type pageEvaluator interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

// PageMetricsSource collects metrics vectors from a live page.
type PageMetricsSource struct {
	page pageEvaluator
}

// NewPageMetricsSource creates a metrics source for page. A playwright.Page
// satisfies the parameter.
func NewPageMetricsSource(page pageEvaluator) *PageMetricsSource {
	return &PageMetricsSource{page: page}
}

// CaptureMetrics evaluates the collector script and decodes its result.
func (s *PageMetricsSource) CaptureMetrics(ctx context.Context) (m changedetect.Metrics, err error) {
	started := time.Now()
	defer func() { telemetry.ObserveCapture(started, err) }()

	if err = ctx.Err(); err != nil {
		return changedetect.Metrics{}, err
	}

	raw, err := s.page.Evaluate(collectorScript)
	if err != nil {
		return changedetect.Metrics{}, fmt.Errorf("failed to collect page metrics: %w", err)
	}

	return decodeMetrics(raw)
}

// rawMetrics mirrors the collector output with pointers so missing fields
// can be told apart from zeros.
type rawMetrics struct {
	ElementCount         *int     `json:"elementCount"`
	VisibleElementCount  *int     `json:"visibleElementCount"`
	DialogCount          *int     `json:"dialogCount"`
	OverlayCount         *int     `json:"overlayCount"`
	FormCount            *int     `json:"formCount"`
	InputCount           *int     `json:"inputCount"`
	ButtonCount          *int     `json:"buttonCount"`
	LinkCount            *int     `json:"linkCount"`
	MaxZIndex            *int     `json:"maxZIndex"`
	FixedElementCount    *int     `json:"fixedElementCount"`
	AbsoluteElementCount *int     `json:"absoluteElementCount"`
	ViewportHeight       *float64 `json:"viewportHeight"`
	URL                  *string  `json:"url"`
}

// decodeMetrics converts the value returned by Page.Evaluate into Metrics.
func decodeMetrics(value interface{}) (changedetect.Metrics, error) {
	if value == nil {
		return changedetect.Metrics{}, fmt.Errorf("%w: collector returned nothing", changedetect.ErrInvalidMetrics)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return changedetect.Metrics{}, fmt.Errorf("%w: %v", changedetect.ErrInvalidMetrics, err)
	}

	var raw rawMetrics
	if err := json.Unmarshal(data, &raw); err != nil {
		return changedetect.Metrics{}, fmt.Errorf("%w: %v", changedetect.ErrInvalidMetrics, err)
	}

	var m changedetect.Metrics
	ints := []struct {
		name string
		src  *int
		dst  *int
	}{
		{"elementCount", raw.ElementCount, &m.ElementCount},
		{"visibleElementCount", raw.VisibleElementCount, &m.VisibleElementCount},
		{"dialogCount", raw.DialogCount, &m.DialogCount},
		{"overlayCount", raw.OverlayCount, &m.OverlayCount},
		{"formCount", raw.FormCount, &m.FormCount},
		{"inputCount", raw.InputCount, &m.InputCount},
		{"buttonCount", raw.ButtonCount, &m.ButtonCount},
		{"linkCount", raw.LinkCount, &m.LinkCount},
		{"maxZIndex", raw.MaxZIndex, &m.MaxZIndex},
		{"fixedElementCount", raw.FixedElementCount, &m.FixedElementCount},
		{"absoluteElementCount", raw.AbsoluteElementCount, &m.AbsoluteElementCount},
	}
	for _, f := range ints {
		if f.src == nil {
			return changedetect.Metrics{}, fmt.Errorf("%w: missing %s", changedetect.ErrInvalidMetrics, f.name)
		}
		*f.dst = *f.src
	}

	if raw.ViewportHeight == nil {
		return changedetect.Metrics{}, fmt.Errorf("%w: missing viewportHeight", changedetect.ErrInvalidMetrics)
	}
	if raw.URL == nil {
		return changedetect.Metrics{}, fmt.Errorf("%w: missing url", changedetect.ErrInvalidMetrics)
	}
	m.ViewportHeight = *raw.ViewportHeight
	m.URL = *raw.URL

	if err := m.Validate(); err != nil {
		return changedetect.Metrics{}, err
	}
	return m, nil
}
