package watch

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/tools/browser"
)

// JobConfig describes one watch job.
type JobConfig struct {
	// URL is the page to monitor
	URL string `yaml:"url" json:"url" validate:"required,url"`

	// Interval between observations
	Interval time.Duration `yaml:"interval" json:"interval" validate:"gte=1s"`

	// Iterations is the number of observations; 0 runs until cancelled
	Iterations int `yaml:"iterations" json:"iterations" validate:"gte=0"`

	// Reload navigates to URL again before every observation after the
	// first instead of watching the page in place
	Reload bool `yaml:"reload" json:"reload"`

	// WaitUntil is passed to navigation: load, domcontentloaded or networkidle
	WaitUntil string `yaml:"wait_until" json:"wait_until" validate:"oneof=load domcontentloaded networkidle"`

	Headless bool             `yaml:"headless" json:"headless"`
	Viewport browser.Viewport `yaml:"viewport" json:"viewport"`

	// OutputDir receives screenshots, snapshots and the run summary
	OutputDir string `yaml:"output_dir" json:"output_dir" validate:"required"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// Thresholds are applied on top of the change_detection config section
	Thresholds changedetect.ThresholdUpdate `yaml:"thresholds" json:"thresholds"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CaptureConfig selects which recommended captures are written.
type CaptureConfig struct {
	Screenshots bool `yaml:"screenshots" json:"screenshots"`
	Snapshots   bool `yaml:"snapshots" json:"snapshots"`
}

// LoggingConfig defines console output configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity" validate:"oneof=quiet normal verbose debug"`
}

var validate = validator.New()

// Validate validates the configuration
func (c *JobConfig) Validate() error {
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	if c.WaitUntil == "" {
		c.WaitUntil = "load"
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid watch job: %w", err)
	}
	return nil
}

// DefaultJobConfig returns a configuration suitable for most pages
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		Interval:  30 * time.Second,
		WaitUntil: "load",
		Headless:  true,
		Viewport: browser.Viewport{
			Width:  browser.DefaultViewportWidth,
			Height: browser.DefaultViewportHeight,
		},
		OutputDir: browser.DefaultOutputDir,
		Capture: CaptureConfig{
			Screenshots: true,
			Snapshots:   true,
		},
		Logging: LoggingConfig{Verbosity: "normal"},
	}
}

// LoadJobConfig reads a YAML job file on top of the defaults and validates it.
func LoadJobConfig(path string) (*JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	cfg := DefaultJobConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
