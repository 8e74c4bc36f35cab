package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

func TestBrowserSection_Defaults(t *testing.T) {
	s := NewBrowserSection()

	assert.True(t, s.IsHeadless())
	maxSessions, idle := s.Limits()
	assert.Equal(t, 5, maxSessions)
	assert.Equal(t, 5*time.Minute, idle)
	assert.Empty(t, s.URLPatterns())
	assert.NoError(t, s.Validate())
}

func TestBrowserSection_SetData(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr bool
		check   func(t *testing.T, s *BrowserSection)
	}{
		{
			name: "json decoded values",
			data: map[string]interface{}{
				"headless":     false,
				"max_sessions": float64(2),
				"idle_timeout": "90s",
				"allowed_urls": []interface{}{"https://*.example.com/*"},
			},
			check: func(t *testing.T, s *BrowserSection) {
				assert.False(t, s.IsHeadless())
				maxSessions, idle := s.Limits()
				assert.Equal(t, 2, maxSessions)
				assert.Equal(t, 90*time.Second, idle)
				assert.Equal(t, []string{"https://*.example.com/*"}, s.URLPatterns())
			},
		},
		{
			name:    "wrong headless type",
			data:    map[string]interface{}{"headless": "yes"},
			wantErr: true,
		},
		{
			name:    "bad duration",
			data:    map[string]interface{}{"idle_timeout": "soon"},
			wantErr: true,
		},
		{
			name:    "non-string pattern",
			data:    map[string]interface{}{"allowed_urls": []interface{}{42.0}},
			wantErr: true,
		},
		{
			name: "unknown keys ignored",
			data: map[string]interface{}{"future_setting": 1},
			check: func(t *testing.T, s *BrowserSection) {
				assert.True(t, s.IsHeadless())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBrowserSection()
			err := s.SetData(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestBrowserSection_Validate(t *testing.T) {
	s := NewBrowserSection()
	s.MaxSessions = 0
	assert.Error(t, s.Validate())

	s.Reset()
	s.AllowedURLs = []string{"https://[unclosed"}
	assert.Error(t, s.Validate())

	s.Reset()
	s.IdleTimeout = time.Millisecond
	assert.Error(t, s.Validate())
}

func TestChangeDetectionSection_PartialSetData(t *testing.T) {
	s := NewChangeDetectionSection()

	err := s.SetData(map[string]interface{}{
		"major": map[string]interface{}{"element_delta": float64(50)},
	})
	require.NoError(t, err)

	want := changedetect.DefaultThresholds()
	want.Major.ElementDelta = 50
	assert.Equal(t, want, s.Thresholds())
}

func TestChangeDetectionSection_RejectsBadShapes(t *testing.T) {
	s := NewChangeDetectionSection()
	assert.Error(t, s.SetData(map[string]interface{}{"major": "big"}))
	assert.Error(t, s.SetData(map[string]interface{}{"minor": map[string]interface{}{"element_delta": "20"}}))
}

func TestChangeDetectionSection_Validate(t *testing.T) {
	s := NewChangeDetectionSection()
	require.NoError(t, s.Validate())

	s.Apply(changedetect.ThresholdUpdate{Minor: &changedetect.MinorUpdate{ElementDelta: changedetect.Float(-3)}})
	assert.Error(t, s.Validate())

	s.Reset()
	assert.Equal(t, changedetect.DefaultThresholds(), s.Thresholds())
}

func TestInitialize_RoundTrip(t *testing.T) {
	defer func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	}()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Initialize(path))
	require.True(t, IsInitialized())

	GetBrowser().SetData(map[string]interface{}{"headless": false})
	GetChangeDetection().Apply(changedetect.ThresholdUpdate{
		Minor: &changedetect.MinorUpdate{ViewportDelta: changedetect.Float(9)},
	})
	require.NoError(t, Global().SaveAll())

	require.NoError(t, Initialize(path))
	assert.False(t, GetBrowser().IsHeadless())
	assert.Equal(t, 9.0, GetChangeDetection().Thresholds().Minor.ViewportDelta)
	assert.Equal(t, changedetect.DefaultMajorElementDelta, GetChangeDetection().Thresholds().Major.ElementDelta)
}
