package changedetect

// Level is the coarse outcome of a classification.
type Level string

const (
	LevelNone  Level = "none"
	LevelMinor Level = "minor"
	LevelMajor Level = "major"
)

// Suggested filenames that do not depend on the capture time.
const (
	BaselineFilename = "baseline_initialized.png"
	NoChangeFilename = "no_change.png"
)

// Deltas are the per-metric differences between the current vector and the
// baseline. Dialog, overlay and z-index deltas keep their sign so that only
// increases are reported.
type Deltas struct {
	Elements         int     `json:"elements"`
	Forms            int     `json:"forms"`
	Inputs           int     `json:"inputs"`
	Buttons          int     `json:"buttons"`
	Links            int     `json:"links"`
	ViewportHeight   float64 `json:"viewportHeight"`
	VisibleElements  int     `json:"visibleElements"`
	FixedElements    int     `json:"fixedElements"`
	AbsoluteElements int     `json:"absoluteElements"`
	Dialogs          int     `json:"dialogs"`
	Overlays         int     `json:"overlays"`
	ZIndex           int     `json:"zIndex"`
	URLChanged       bool    `json:"urlChanged"`
}

// PercentChanges are relative changes against the baseline, in percent.
type PercentChanges struct {
	Elements        float64 `json:"elements"`
	Viewport        float64 `json:"viewport"`
	VisibleElements float64 `json:"visibleElements"`
}

// Details is the diagnostic bundle attached to every result.
type Details struct {
	Current  Metrics        `json:"current"`
	Previous *Metrics       `json:"previous,omitempty"`
	Deltas   Deltas         `json:"deltas"`
	Percent  PercentChanges `json:"percent"`
}

// Result is the outcome of one Classify call.
type Result struct {
	Changed              bool     `json:"changed"`
	Level                Level    `json:"level"`
	MajorReasons         []string `json:"majorReasons"`
	MinorReasons         []string `json:"minorReasons"`
	Reasons              []string `json:"reasons"`
	ShouldTakeScreenshot bool     `json:"shouldTakeScreenshot"`
	ShouldTakeSnapshot   bool     `json:"shouldTakeSnapshot"`
	SuggestedFilename    string   `json:"suggestedFilename"`

	// BaselineInitialized is set on the first observation after construction
	// or reset, when there was nothing to compare against.
	BaselineInitialized bool `json:"baselineInitialized"`

	Details Details `json:"details"`
}
