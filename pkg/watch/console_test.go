package watch

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

var at = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func majorResult() changedetect.Result {
	prev := changedetect.Metrics{ElementCount: 10}
	return changedetect.Result{
		Changed:      true,
		Level:        changedetect.LevelMajor,
		MajorReasons: []string{"URL changed", "Form count changed (1)"},
		Reasons:      []string{"URL changed", "Form count changed (1)"},
		Details: changedetect.Details{
			Previous: &prev,
			Deltas:   changedetect.Deltas{Forms: 1, URLChanged: true},
		},
	}
}

func TestConsole_Observation(t *testing.T) {
	tests := []struct {
		name     string
		level    Verbosity
		result   changedetect.Result
		contains []string
		absent   []string
	}{
		{
			name:   "quiet hides changes",
			level:  VerbosityQuiet,
			result: majorResult(),
			absent: []string{"MAJOR"},
		},
		{
			name:     "normal shows major",
			level:    VerbosityNormal,
			result:   majorResult(),
			contains: []string{"[3] 09:26:53 MAJOR URL changed; Form count changed (1)"},
			absent:   []string{"deltas:"},
		},
		{
			name:   "normal hides unchanged",
			level:  VerbosityNormal,
			result: changedetect.Result{Level: changedetect.LevelNone},
			absent: []string{"no change"},
		},
		{
			name:     "verbose shows unchanged",
			level:    VerbosityVerbose,
			result:   changedetect.Result{Level: changedetect.LevelNone},
			contains: []string{"no change"},
		},
		{
			name:     "debug shows deltas",
			level:    VerbosityDebug,
			result:   majorResult(),
			contains: []string{"deltas: elements=0 dialogs=+0 overlays=+0 forms=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsoleWriter(tt.level, &buf).Observation(3, at, tt.result)

			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestConsole_Summary(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleWriter(VerbosityNormal, &buf)

	console.Summary(&Summary{
		URL:          "https://example.com/",
		Duration:     90 * time.Second,
		Observations: 5,
		Major:        1,
		Minor:        1,
		None:         2,
		Captures:     []string{"a.png", "a.html"},
		Changes: []Change{
			{Iteration: 2, At: at, Level: changedetect.LevelMajor, Reasons: []string{"URL changed", "Form count changed (1)"}, Files: []string{"a.png", "a.html"}},
			{Iteration: 4, At: at, Level: changedetect.LevelMinor, Reasons: []string{"Element count changed (25)"}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "WATCH SUMMARY")
	assert.Contains(t, out, "Observations: 5 (major 1, minor 1, none 2, failed 0)")
	assert.Contains(t, out, "Captures: 2")
	assert.Contains(t, out, "URL changed (+1 more)")
	assert.Contains(t, out, "Element count changed (25)")
}

func TestConsole_QuietSummarySkipsTable(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleWriter(VerbosityQuiet, &buf).Summary(&Summary{
		Changes: []Change{{Iteration: 1, At: at, Level: changedetect.LevelMinor, Reasons: []string{"Button count changed (1)"}}},
	})

	assert.Contains(t, buf.String(), "WATCH SUMMARY")
	assert.NotContains(t, buf.String(), "Button count changed")
}
