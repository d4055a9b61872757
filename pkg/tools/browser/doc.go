// Package browser provides the playwright-backed tool source: the concrete
// set of remote operations the relay dispatches to a real browser.
//
// The package exposes one dispatch.Source over a lazily launched Chromium
// instance. Tool calls address the source by name (take_snapshot, click,
// fill, navigate_page, ...) with a generic argument map, mirroring how the
// operations would arrive over a remote tool protocol.
//
// # Snapshots
//
// take_snapshot returns the page's ARIA snapshot, an indented text rendering
// of the accessibility tree. When the driver cannot produce one (older
// browser builds, detached frames), the source falls back to rendering an
// accessibility-style dump from the raw HTML itself: scripts and styles are
// dropped, structural and interactive elements become "role name" lines,
// and nesting depth becomes indentation. Both forms feed the snapshot
// compaction pipeline upstream.
//
// # Lifecycle
//
// Start launches Playwright, a browser, and a page; Close tears all three
// down. The source holds a single page: the relay's session isolation
// happens above this layer, one source per executor process.
package browser
