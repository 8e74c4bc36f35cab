package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pagewatch/pkg/changedetect"
	"github.com/entrhq/pagewatch/pkg/logging"
)

// Session represents an active browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the monitored page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// Detector holds this page's baseline and thresholds. It is never shared
	// with another session.
	Detector *changedetect.Detector

	// Metrics collects metrics vectors from Page.
	Metrics changedetect.MetricsSource

	policy *URLPolicy
	logger *logging.Logger

	// detectMu serializes capture and classify so concurrent callers cannot
	// leave an older vector as the baseline.
	detectMu sync.Mutex

	mu         sync.Mutex
	lastUsedAt time.Time
	currentURL string
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// Thresholds overrides the thresholds the session's detector starts with.
	Thresholds *changedetect.Thresholds
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `json:"width" yaml:"width" validate:"gte=100,lte=5000"`
	Height int `json:"height" yaml:"height" validate:"gte=100,lte=5000"`
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// SessionInfo contains metadata about a browser session.
type SessionInfo struct {
	Name        string    `json:"name"`
	CurrentURL  string    `json:"currentUrl"`
	Headless    bool      `json:"headless"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUsedAt  time.Time `json:"lastUsedAt"`
	HasBaseline bool      `json:"hasBaseline"`
}

// Artifact kinds written by capture operations.
const (
	ArtifactScreenshot = "screenshot"
	ArtifactSnapshot   = "snapshot"
)

// Default values for various operations
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultOutputDir      = "captures"
)
