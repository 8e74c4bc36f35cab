package changedetect

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Default threshold values.
const (
	DefaultMajorElementDelta  = 100.0
	DefaultMajorDialogDelta   = 1.0
	DefaultMajorOverlayDelta  = 1.0
	DefaultMajorFormDelta     = 1.0
	DefaultMajorZIndexDelta   = 500.0
	DefaultMajorViewportDelta = 30.0 // percent

	DefaultMinorElementDelta  = 20.0
	DefaultMinorViewportDelta = 5.0 // percent
)

// MajorThresholds are the limits above which a change is reported as major.
// ViewportDelta is a percentage; the rest are absolute counts.
type MajorThresholds struct {
	ElementDelta  float64 `json:"elementDelta" yaml:"element_delta" validate:"gte=0"`
	DialogDelta   float64 `json:"dialogDelta" yaml:"dialog_delta" validate:"gte=0"`
	OverlayDelta  float64 `json:"overlayDelta" yaml:"overlay_delta" validate:"gte=0"`
	FormDelta     float64 `json:"formDelta" yaml:"form_delta" validate:"gte=0"`
	ZIndexDelta   float64 `json:"zIndexDelta" yaml:"z_index_delta" validate:"gte=0"`
	ViewportDelta float64 `json:"viewportDelta" yaml:"viewport_delta" validate:"gte=0"`
}

// MinorThresholds are consulted only when no major threshold was crossed.
// ViewportDelta applies to the visible-element percentage.
type MinorThresholds struct {
	ElementDelta  float64 `json:"elementDelta" yaml:"element_delta" validate:"gte=0"`
	ViewportDelta float64 `json:"viewportDelta" yaml:"viewport_delta" validate:"gte=0"`
}

// Thresholds is the full two-tier configuration of a Detector.
type Thresholds struct {
	Major MajorThresholds `json:"major" yaml:"major"`
	Minor MinorThresholds `json:"minor" yaml:"minor"`
}

// DefaultThresholds returns the built-in configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Major: MajorThresholds{
			ElementDelta:  DefaultMajorElementDelta,
			DialogDelta:   DefaultMajorDialogDelta,
			OverlayDelta:  DefaultMajorOverlayDelta,
			FormDelta:     DefaultMajorFormDelta,
			ZIndexDelta:   DefaultMajorZIndexDelta,
			ViewportDelta: DefaultMajorViewportDelta,
		},
		Minor: MinorThresholds{
			ElementDelta:  DefaultMinorElementDelta,
			ViewportDelta: DefaultMinorViewportDelta,
		},
	}
}

var validate = validator.New()

// Validate rejects negative thresholds. The detector itself accepts any
// value; callers that take thresholds from users run this first.
func (t Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}

// MajorUpdate holds optional replacements for major thresholds.
type MajorUpdate struct {
	ElementDelta  *float64 `json:"elementDelta,omitempty" yaml:"element_delta,omitempty" validate:"omitnil,gte=0"`
	DialogDelta   *float64 `json:"dialogDelta,omitempty" yaml:"dialog_delta,omitempty" validate:"omitnil,gte=0"`
	OverlayDelta  *float64 `json:"overlayDelta,omitempty" yaml:"overlay_delta,omitempty" validate:"omitnil,gte=0"`
	FormDelta     *float64 `json:"formDelta,omitempty" yaml:"form_delta,omitempty" validate:"omitnil,gte=0"`
	ZIndexDelta   *float64 `json:"zIndexDelta,omitempty" yaml:"z_index_delta,omitempty" validate:"omitnil,gte=0"`
	ViewportDelta *float64 `json:"viewportDelta,omitempty" yaml:"viewport_delta,omitempty" validate:"omitnil,gte=0"`
}

// MinorUpdate holds optional replacements for minor thresholds.
type MinorUpdate struct {
	ElementDelta  *float64 `json:"elementDelta,omitempty" yaml:"element_delta,omitempty" validate:"omitnil,gte=0"`
	ViewportDelta *float64 `json:"viewportDelta,omitempty" yaml:"viewport_delta,omitempty" validate:"omitnil,gte=0"`
}

// ThresholdUpdate is a partial threshold configuration. Nil tiers and nil
// fields leave the stored values untouched.
type ThresholdUpdate struct {
	Major *MajorUpdate `json:"major,omitempty" yaml:"major,omitempty"`
	Minor *MinorUpdate `json:"minor,omitempty" yaml:"minor,omitempty"`
}

// Validate rejects negative values in the fields that are present.
func (u ThresholdUpdate) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("invalid threshold update: %w", err)
	}
	return nil
}

// IsEmpty reports whether the update would change nothing.
func (u ThresholdUpdate) IsEmpty() bool {
	return u.Major == nil && u.Minor == nil
}

// Apply returns t with every field present in u overwritten.
func (t Thresholds) Apply(u ThresholdUpdate) Thresholds {
	if m := u.Major; m != nil {
		setIfPresent(&t.Major.ElementDelta, m.ElementDelta)
		setIfPresent(&t.Major.DialogDelta, m.DialogDelta)
		setIfPresent(&t.Major.OverlayDelta, m.OverlayDelta)
		setIfPresent(&t.Major.FormDelta, m.FormDelta)
		setIfPresent(&t.Major.ZIndexDelta, m.ZIndexDelta)
		setIfPresent(&t.Major.ViewportDelta, m.ViewportDelta)
	}
	if m := u.Minor; m != nil {
		setIfPresent(&t.Minor.ElementDelta, m.ElementDelta)
		setIfPresent(&t.Minor.ViewportDelta, m.ViewportDelta)
	}
	return t
}

func setIfPresent(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Float returns a pointer to v, for building updates inline.
func Float(v float64) *float64 {
	return &v
}
