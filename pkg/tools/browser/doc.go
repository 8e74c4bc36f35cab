// Package browser monitors web pages through Playwright and classifies their
// structural changes.
//
// # Architecture
//
// The package is built around three concepts:
//
//  1. Session: a Playwright browser, context and page, plus the change
//     detector that owns that page's baseline
//  2. SessionManager: registry of all open sessions, with limits and idle
//     cleanup taken from the browser config section
//  3. Tools: JSON-argument operations dispatched by a host such as the MCP
//     server
//
// # Session Lifecycle
//
//  1. Create: start_browser_session launches a browser and opens a page
//  2. Observe: browser_navigate and detect_page_changes drive the page and
//     classify it against the previous observation
//  3. Capture: detect_page_changes can write the recommended captures;
//     capture_page writes them on demand
//  4. Close: close_browser_session, or the idle timeout, releases resources
//
// Every session owns its own changedetect.Detector. Baselines and thresholds
// therefore never leak from one page to another; update_change_thresholds and
// reset_change_baseline act on one session only.
//
// # Configuration
//
// The browser section controls headless mode, max_sessions, idle_timeout and
// allowed_urls (glob patterns checked before every navigation). The
// change_detection section supplies the thresholds new sessions start with.
//
// # Example Usage
//
//	session, err := manager.StartSession("checkout", SessionOptions{Headless: true})
//	err = session.Navigate("https://shop.example.com/cart", NavigateOptions{WaitUntil: "load"})
//
//	result, err := session.Detect(ctx) // baseline
//	result, err = session.Detect(ctx)  // classified against the baseline
//	paths, err := WriteRecommended(session, result, "captures")
//
//	err = manager.CloseSession("checkout")
package browser
