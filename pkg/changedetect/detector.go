// Package changedetect classifies structural page changes.
//
// A Detector keeps the last observed Metrics as its baseline. Each call to
// Classify compares the new vector with that baseline, assigns a severity
// Level, recommends follow-up captures, and then makes the new vector the
// baseline. The baseline slides with every observation; it is never a fixed
// reference image.
//
// A Detector must be owned by exactly one monitored surface (one page or tab).
// Sharing an instance between surfaces makes each of them compare against the
// other's last snapshot.
package changedetect

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Canonical reason phrases. ShouldTakeSnapshot matches against the first
// four, so changing their wording changes capture recommendations.
const (
	phraseURLChanged = "URL changed"
	phraseDialog     = "dialog"
	phraseOverlay    = "overlay"
	phraseFormCount  = "Form count"
)

const (
	timestampLayout = "20060102-150405.000"
	imageExt        = ".png"
	minorPrefix     = "minor_change_"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Detector is the change classification engine.
type Detector struct {
	mu         sync.Mutex
	baseline   *Metrics
	thresholds Thresholds
	now        func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithThresholds replaces the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(d *Detector) {
		d.thresholds = t
	}
}

// WithClock sets the time source used for suggested filenames.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a Detector with no baseline and default thresholds.
func New(opts ...Option) *Detector {
	d := &Detector{
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Classify compares current against the baseline and replaces the baseline
// with current. The first call after construction or ResetBaseline only
// records the baseline. An invalid vector is rejected and leaves all state
// untouched.
func (d *Detector) Classify(current Metrics) (Result, error) {
	if err := current.Validate(); err != nil {
		return Result{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	previous := d.baseline
	next := current
	d.baseline = &next

	if previous == nil {
		return Result{
			Level:               LevelNone,
			MajorReasons:        []string{},
			MinorReasons:        []string{},
			Reasons:             []string{},
			SuggestedFilename:   BaselineFilename,
			BaselineInitialized: true,
			Details:             Details{Current: current},
		}, nil
	}

	prev := *previous
	deltas := computeDeltas(prev, current)
	percent := computePercent(prev, current)

	major := d.majorReasons(deltas, percent)
	var minor []string
	if len(major) == 0 {
		minor = d.minorReasons(deltas, percent)
	}

	level := LevelNone
	switch {
	case len(major) > 0:
		level = LevelMajor
	case len(minor) > 0:
		level = LevelMinor
	}

	if major == nil {
		major = []string{}
	}
	if minor == nil {
		minor = []string{}
	}
	reasons := make([]string, 0, len(major)+len(minor))
	reasons = append(reasons, major...)
	reasons = append(reasons, minor...)

	return Result{
		Changed:              level != LevelNone,
		Level:                level,
		MajorReasons:         major,
		MinorReasons:         minor,
		Reasons:              reasons,
		ShouldTakeScreenshot: level != LevelNone,
		ShouldTakeSnapshot:   needsSnapshot(major),
		SuggestedFilename:    d.filename(level, major),
		Details: Details{
			Current:  current,
			Previous: &prev,
			Deltas:   deltas,
			Percent:  percent,
		},
	}, nil
}

// UpdateThresholds merges u into the stored thresholds and returns the
// resulting configuration. Values are not range checked here.
func (d *Detector) UpdateThresholds(u ThresholdUpdate) Thresholds {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.thresholds = d.thresholds.Apply(u)
	return d.thresholds
}

// Thresholds returns the current configuration.
func (d *Detector) Thresholds() Thresholds {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.thresholds
}

// ResetBaseline clears the baseline and returns the one it replaced.
// The bool is false if there was no baseline.
func (d *Detector) ResetBaseline() (Metrics, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	previous := d.baseline
	d.baseline = nil
	if previous == nil {
		return Metrics{}, false
	}
	return *previous, true
}

// Baseline returns the current baseline, if any.
func (d *Detector) Baseline() (Metrics, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.baseline == nil {
		return Metrics{}, false
	}
	return *d.baseline, true
}

func (d *Detector) majorReasons(delta Deltas, pct PercentChanges) []string {
	t := d.thresholds.Major
	var reasons []string

	if delta.URLChanged {
		reasons = append(reasons, phraseURLChanged)
	}
	if delta.Dialogs > 0 {
		reasons = append(reasons, fmt.Sprintf("New dialog appeared (+%d)", delta.Dialogs))
	}
	if delta.Overlays > 0 {
		reasons = append(reasons, fmt.Sprintf("New overlay appeared (+%d)", delta.Overlays))
	}
	if float64(delta.Forms) >= t.FormDelta {
		reasons = append(reasons, fmt.Sprintf("Form count changed (%d)", delta.Forms))
	}
	if float64(delta.Elements) >= t.ElementDelta {
		reasons = append(reasons, fmt.Sprintf("Element count changed significantly (%d)", delta.Elements))
	}
	if float64(delta.ZIndex) >= t.ZIndexDelta {
		reasons = append(reasons, fmt.Sprintf("Z-index increased (+%d)", delta.ZIndex))
	}
	if delta.FixedElements > 0 {
		reasons = append(reasons, fmt.Sprintf("Fixed-position elements changed (%d)", delta.FixedElements))
	}
	if delta.AbsoluteElements > 0 {
		reasons = append(reasons, fmt.Sprintf("Absolute-position elements changed (%d)", delta.AbsoluteElements))
	}
	if pct.Viewport >= t.ViewportDelta {
		reasons = append(reasons, fmt.Sprintf("Viewport height changed (%.1f%%)", pct.Viewport))
	}

	return reasons
}

func (d *Detector) minorReasons(delta Deltas, pct PercentChanges) []string {
	t := d.thresholds.Minor
	var reasons []string

	if float64(delta.Elements) >= t.ElementDelta {
		reasons = append(reasons, fmt.Sprintf("Element count changed (%d)", delta.Elements))
	}
	if pct.VisibleElements >= t.ViewportDelta {
		reasons = append(reasons, fmt.Sprintf("Visible elements changed (%.1f%%)", pct.VisibleElements))
	}
	if delta.Buttons > 0 {
		reasons = append(reasons, fmt.Sprintf("Button count changed (%d)", delta.Buttons))
	}
	if delta.Inputs > 0 {
		reasons = append(reasons, fmt.Sprintf("Input count changed (%d)", delta.Inputs))
	}

	return reasons
}

func (d *Detector) filename(level Level, major []string) string {
	switch level {
	case LevelMajor:
		return Slug(major[0]) + "_" + d.timestamp() + imageExt
	case LevelMinor:
		return minorPrefix + d.timestamp() + imageExt
	default:
		return NoChangeFilename
	}
}

// timestamp has millisecond resolution so that captures taken in quick
// succession do not overwrite each other.
func (d *Detector) timestamp() string {
	return strings.Replace(d.now().Format(timestampLayout), ".", "-", 1)
}

func computeDeltas(prev, cur Metrics) Deltas {
	return Deltas{
		Elements:         absInt(cur.ElementCount - prev.ElementCount),
		Forms:            absInt(cur.FormCount - prev.FormCount),
		Inputs:           absInt(cur.InputCount - prev.InputCount),
		Buttons:          absInt(cur.ButtonCount - prev.ButtonCount),
		Links:            absInt(cur.LinkCount - prev.LinkCount),
		ViewportHeight:   math.Abs(cur.ViewportHeight - prev.ViewportHeight),
		VisibleElements:  absInt(cur.VisibleElementCount - prev.VisibleElementCount),
		FixedElements:    absInt(cur.FixedElementCount - prev.FixedElementCount),
		AbsoluteElements: absInt(cur.AbsoluteElementCount - prev.AbsoluteElementCount),
		Dialogs:          cur.DialogCount - prev.DialogCount,
		Overlays:         cur.OverlayCount - prev.OverlayCount,
		ZIndex:           cur.MaxZIndex - prev.MaxZIndex,
		URLChanged:       cur.URL != prev.URL,
	}
}

func computePercent(prev, cur Metrics) PercentChanges {
	return PercentChanges{
		Elements:        percentOf(float64(absInt(cur.ElementCount-prev.ElementCount)), float64(prev.ElementCount)),
		Viewport:        percentOf(math.Abs(cur.ViewportHeight-prev.ViewportHeight), prev.ViewportHeight),
		VisibleElements: percentOf(float64(absInt(cur.VisibleElementCount-prev.VisibleElementCount)), float64(prev.VisibleElementCount)),
	}
}

// percentOf treats a zero base as 1.
func percentOf(delta, base float64) float64 {
	if base == 0 {
		base = 1
	}
	return delta / base * 100
}

func needsSnapshot(major []string) bool {
	for _, r := range major {
		if strings.Contains(r, phraseDialog) ||
			strings.Contains(r, phraseOverlay) ||
			strings.Contains(r, phraseURLChanged) ||
			strings.Contains(r, phraseFormCount) {
			return true
		}
	}
	return false
}

// Slug lower-cases s and collapses every run of non-alphanumeric characters
// into a single underscore.
func Slug(s string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(s), "_")
	return strings.Trim(slug, "_")
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
