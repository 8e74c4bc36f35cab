package watch

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/entrhq/pagewatch/pkg/changedetect"
)

// Verbosity controls how much the console prints.
type Verbosity int

const (
	// VerbosityQuiet shows warnings, errors and the final summary
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal also shows every change (default)
	VerbosityNormal
	// VerbosityVerbose also shows unchanged observations and deltas
	VerbosityVerbose
	// VerbosityDebug shows everything
	VerbosityDebug
)

// ParseVerbosity converts a verbosity name. Unknown names map to normal.
func ParseVerbosity(name string) Verbosity {
	switch name {
	case "quiet":
		return VerbosityQuiet
	case "verbose":
		return VerbosityVerbose
	case "debug":
		return VerbosityDebug
	default:
		return VerbosityNormal
	}
}

// Console prints watch progress for humans.
type Console struct {
	level  Verbosity
	writer io.Writer

	bold   *color.Color
	cyan   *color.Color
	gray   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

// NewConsole creates a console writing to stdout.
func NewConsole(level Verbosity) *Console {
	return NewConsoleWriter(level, os.Stdout)
}

// NewConsoleWriter creates a console writing to w.
func NewConsoleWriter(level Verbosity, w io.Writer) *Console {
	return &Console{
		level:  level,
		writer: w,
		bold:   color.New(color.Bold),
		cyan:   color.New(color.FgCyan),
		gray:   color.New(color.FgHiBlack),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
	}
}

// Header prints the job banner.
func (c *Console) Header(cfg *JobConfig) {
	if c.level < VerbosityNormal {
		return
	}
	iterations := "until stopped"
	if cfg.Iterations > 0 {
		iterations = strconv.Itoa(cfg.Iterations)
	}
	c.bold.Fprintln(c.writer, strings.Repeat("=", 70))
	c.bold.Fprintf(c.writer, "  Watching %s\n", cfg.URL)
	c.bold.Fprintln(c.writer, strings.Repeat("=", 70))
	c.gray.Fprintf(c.writer, "  interval %s, iterations %s, output %s\n\n", cfg.Interval, iterations, cfg.OutputDir)
}

// Observation prints one classification.
func (c *Console) Observation(iteration int, at time.Time, r changedetect.Result) {
	stamp := at.Format("15:04:05")

	switch {
	case r.BaselineInitialized:
		if c.level >= VerbosityNormal {
			c.cyan.Fprintf(c.writer, "[%d] %s baseline recorded (%d elements)\n", iteration, stamp, r.Details.Current.ElementCount)
		}
	case r.Level == changedetect.LevelMajor:
		if c.level >= VerbosityNormal {
			c.red.Fprintf(c.writer, "[%d] %s MAJOR %s\n", iteration, stamp, strings.Join(r.MajorReasons, "; "))
		}
	case r.Level == changedetect.LevelMinor:
		if c.level >= VerbosityNormal {
			c.yellow.Fprintf(c.writer, "[%d] %s minor %s\n", iteration, stamp, strings.Join(r.MinorReasons, "; "))
		}
	default:
		if c.level >= VerbosityVerbose {
			c.gray.Fprintf(c.writer, "[%d] %s no change\n", iteration, stamp)
		}
	}

	if c.level >= VerbosityDebug && r.Details.Previous != nil {
		d := r.Details.Deltas
		c.gray.Fprintf(c.writer, "    deltas: elements=%d dialogs=%+d overlays=%+d forms=%d zIndex=%+d viewport=%.1f%% visible=%.1f%%\n",
			d.Elements, d.Dialogs, d.Overlays, d.Forms, d.ZIndex, r.Details.Percent.Viewport, r.Details.Percent.VisibleElements)
	}
}

// Captured prints a written capture path.
func (c *Console) Captured(path string) {
	if c.level >= VerbosityVerbose {
		c.green.Fprintf(c.writer, "    saved %s\n", path)
	}
}

// Warningf prints a warning message
func (c *Console) Warningf(format string, args ...interface{}) {
	c.yellow.Fprintf(c.writer, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (c *Console) Errorf(format string, args ...interface{}) {
	c.red.Fprintf(c.writer, "Error: %s\n", fmt.Sprintf(format, args...))
}

// Summary prints the run totals and, unless quiet, a table of every change.
func (c *Console) Summary(s *Summary) {
	fmt.Fprintln(c.writer)
	c.bold.Fprintln(c.writer, strings.Repeat("=", 70))
	c.bold.Fprintln(c.writer, "  WATCH SUMMARY")
	c.bold.Fprintln(c.writer, strings.Repeat("=", 70))

	fmt.Fprintf(c.writer, "  URL: %s\n", s.URL)
	fmt.Fprintf(c.writer, "  Duration: %s\n", s.Duration.Round(time.Second))
	fmt.Fprintf(c.writer, "  Observations: %d (major %d, minor %d, none %d, failed %d)\n",
		s.Observations, s.Major, s.Minor, s.None, s.Failures)
	fmt.Fprintf(c.writer, "  Captures: %d\n", len(s.Captures))

	if c.level >= VerbosityNormal && len(s.Changes) > 0 {
		fmt.Fprintln(c.writer)
		if err := c.renderChanges(s.Changes); err != nil {
			c.Errorf("failed to render changes: %v", err)
		}
	}

	c.bold.Fprintln(c.writer, strings.Repeat("=", 70))
}

func (c *Console) renderChanges(changes []Change) error {
	table := tablewriter.NewWriter(c.writer)
	defer func() { _ = table.Close() }()

	table.Header([]string{"#", "Time", "Level", "Reason", "Files"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, ch := range changes {
		reason := ""
		if len(ch.Reasons) > 0 {
			reason = ch.Reasons[0]
			if extra := len(ch.Reasons) - 1; extra > 0 {
				reason += fmt.Sprintf(" (+%d more)", extra)
			}
		}
		data = append(data, []string{
			strconv.Itoa(ch.Iteration),
			ch.At.Format("15:04:05"),
			string(ch.Level),
			reason,
			strconv.Itoa(len(ch.Files)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
