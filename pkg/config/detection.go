package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

const (
	// SectionIDChangeDetection is the identifier for the change detection section
	SectionIDChangeDetection = "change_detection"
)

// ChangeDetectionSection holds the thresholds new detectors start with.
// Changing it does not affect detectors that already exist.
type ChangeDetectionSection struct {
	thresholds changedetect.Thresholds
	mu         sync.RWMutex
}

// NewChangeDetectionSection creates a section with the built-in thresholds.
func NewChangeDetectionSection() *ChangeDetectionSection {
	return &ChangeDetectionSection{thresholds: changedetect.DefaultThresholds()}
}

// ID returns the section identifier.
func (s *ChangeDetectionSection) ID() string {
	return SectionIDChangeDetection
}

// Title returns the section title.
func (s *ChangeDetectionSection) Title() string {
	return "Change Detection"
}

// Description returns the section description.
func (s *ChangeDetectionSection) Description() string {
	return "Default major and minor thresholds for newly opened browser sessions. Viewport deltas are percentages, the rest are element counts."
}

// Data returns the thresholds as nested major/minor maps.
func (s *ChangeDetectionSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.thresholds
	return map[string]interface{}{
		"major": map[string]interface{}{
			"element_delta":  t.Major.ElementDelta,
			"dialog_delta":   t.Major.DialogDelta,
			"overlay_delta":  t.Major.OverlayDelta,
			"form_delta":     t.Major.FormDelta,
			"z_index_delta":  t.Major.ZIndexDelta,
			"viewport_delta": t.Major.ViewportDelta,
		},
		"minor": map[string]interface{}{
			"element_delta":  t.Minor.ElementDelta,
			"viewport_delta": t.Minor.ViewportDelta,
		},
	}
}

// SetData merges stored values over the current thresholds. Keys that are
// absent keep their current value.
func (s *ChangeDetectionSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	update := changedetect.ThresholdUpdate{}

	if raw, ok := data["major"]; ok {
		fields, err := numberFields(raw, "major")
		if err != nil {
			return err
		}
		update.Major = &changedetect.MajorUpdate{
			ElementDelta:  fields["element_delta"],
			DialogDelta:   fields["dialog_delta"],
			OverlayDelta:  fields["overlay_delta"],
			FormDelta:     fields["form_delta"],
			ZIndexDelta:   fields["z_index_delta"],
			ViewportDelta: fields["viewport_delta"],
		}
	}

	if raw, ok := data["minor"]; ok {
		fields, err := numberFields(raw, "minor")
		if err != nil {
			return err
		}
		update.Minor = &changedetect.MinorUpdate{
			ElementDelta:  fields["element_delta"],
			ViewportDelta: fields["viewport_delta"],
		}
	}

	s.Apply(update)
	return nil
}

// Validate rejects negative thresholds.
func (s *ChangeDetectionSection) Validate() error {
	return s.Thresholds().Validate()
}

// Reset resets the section to default configuration.
func (s *ChangeDetectionSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = changedetect.DefaultThresholds()
}

// Thresholds returns the configured thresholds.
func (s *ChangeDetectionSection) Thresholds() changedetect.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// Apply merges a partial update into the section.
func (s *ChangeDetectionSection) Apply(u changedetect.ThresholdUpdate) changedetect.Thresholds {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = s.thresholds.Apply(u)
	return s.thresholds
}

func numberFields(raw interface{}, tier string) (map[string]*float64, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid value type for %s: expected object, got %T", tier, raw)
	}

	out := make(map[string]*float64, len(m))
	for key, value := range m {
		switch v := value.(type) {
		case float64:
			out[key] = changedetect.Float(v)
		case int:
			out[key] = changedetect.Float(float64(v))
		default:
			return nil, fmt.Errorf("invalid value type for %s.%s: expected number, got %T", tier, key, value)
		}
	}
	return out, nil
}
