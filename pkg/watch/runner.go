package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/logging"
	"github.com/entrhq/pagewatch/pkg/tools/browser"
)

// SummaryFilename is written into the output directory at the end of a run.
const SummaryFilename = "watch-summary.json"

// Target is the monitored page. *browser.Session implements it.
type Target interface {
	Detect(ctx context.Context) (changedetect.Result, error)
	Navigate(url string, opts browser.NavigateOptions) error
	browser.ArtifactWriter
}

// Change records one observation that was classified as minor or major.
type Change struct {
	Iteration int                `json:"iteration"`
	At        time.Time          `json:"at"`
	Level     changedetect.Level `json:"level"`
	Reasons   []string           `json:"reasons"`
	Files     []string           `json:"files,omitempty"`
}

// Summary describes a finished run.
type Summary struct {
	URL          string        `json:"url"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	Observations int           `json:"observations"`
	Baselines    int           `json:"baselines"`
	None         int           `json:"none"`
	Minor        int           `json:"minor"`
	Major        int           `json:"major"`
	Failures     int           `json:"failures"`
	Captures     []string      `json:"captures"`
	Changes      []Change      `json:"changes"`
}

// Runner observes a target on an interval and writes recommended captures.
type Runner struct {
	cfg     *JobConfig
	target  Target
	console *Console
	logger  *logging.Logger
	now     func() time.Time
}

// NewRunner creates a runner. The target should already show cfg.URL and its
// detector should already carry the job's thresholds.
func NewRunner(cfg *JobConfig, target Target, console *Console, logger *logging.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		target:  target,
		console: console,
		logger:  logger,
		now:     time.Now,
	}
}

// Run observes until the configured iterations are done or ctx is cancelled.
// Cancellation is a normal way to stop and is not reported as an error.
// Failed observations are counted and the run continues.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		URL:       r.cfg.URL,
		StartTime: r.now(),
		Captures:  []string{},
		Changes:   []Change{},
	}
	r.console.Header(r.cfg)
	r.logger.Infof("watch started: url=%s interval=%s iterations=%d", r.cfg.URL, r.cfg.Interval, r.cfg.Iterations)

	for i := 1; r.cfg.Iterations == 0 || i <= r.cfg.Iterations; i++ {
		if i > 1 && !r.wait(ctx) {
			break
		}
		if err := r.observe(ctx, i, summary); err != nil {
			if ctx.Err() != nil {
				break
			}
			summary.Failures++
			r.console.Warningf("observation %d failed: %v", i, err)
			r.logger.Warnf("observation %d failed: %v", i, err)
		}
	}

	summary.EndTime = r.now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	r.logger.Infof("watch finished: %d observations, %d major, %d minor, %d failures",
		summary.Observations, summary.Major, summary.Minor, summary.Failures)

	if err := WriteSummary(r.cfg.OutputDir, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	timer := time.NewTimer(r.cfg.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (r *Runner) observe(ctx context.Context, iteration int, summary *Summary) error {
	// The target is already on the page for the first observation
	if r.cfg.Reload && iteration > 1 {
		if err := r.target.Navigate(r.cfg.URL, browser.NavigateOptions{WaitUntil: r.cfg.WaitUntil}); err != nil {
			return err
		}
	}

	result, err := r.target.Detect(ctx)
	if err != nil {
		return err
	}

	at := r.now()
	summary.Observations++
	r.console.Observation(iteration, at, result)

	switch {
	case result.BaselineInitialized:
		summary.Baselines++
		return nil
	case result.Level == changedetect.LevelNone:
		summary.None++
		return nil
	case result.Level == changedetect.LevelMajor:
		summary.Major++
	case result.Level == changedetect.LevelMinor:
		summary.Minor++
	}

	change := Change{
		Iteration: iteration,
		At:        at,
		Level:     result.Level,
		Reasons:   result.Reasons,
	}

	files, err := browser.WriteRecommended(r.target, r.filter(result), r.cfg.OutputDir)
	for _, f := range files {
		r.console.Captured(f)
	}
	change.Files = files
	summary.Captures = append(summary.Captures, files...)
	summary.Changes = append(summary.Changes, change)

	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	return nil
}

// filter drops recommendations the job has switched off.
func (r *Runner) filter(result changedetect.Result) changedetect.Result {
	result.ShouldTakeScreenshot = result.ShouldTakeScreenshot && r.cfg.Capture.Screenshots
	result.ShouldTakeSnapshot = result.ShouldTakeSnapshot && r.cfg.Capture.Snapshots
	return result
}

// WriteSummary writes the run summary as JSON into dir.
func WriteSummary(dir string, summary *Summary) error {
	if dir == "" {
		return errors.New("output directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal watch summary: %w", err)
	}

	path := filepath.Join(dir, SummaryFilename)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write watch summary: %w", err)
	}
	return nil
}
