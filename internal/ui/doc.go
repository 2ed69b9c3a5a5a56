// Package ui provides the matchday terminal interface.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model over a game.Store. It keeps only the
// latest Snapshot and asks the store for a fresh copy after every mutation,
// store notification or tick. All game rules live in the store; the UI only
// calls its operations and renders the result.
//
// # Package Structure
//
//   - app.go: Model, Update loop, commands and the Run entry point
//   - view.go: Header, task list, sidebar and footer rendering
//   - help.go: Keyboard shortcut overlay
//   - keys.go: bubbles/key bindings
//   - theme.go: Dracula and Slate palettes with Lipgloss styles
//   - helpers.go: Session filtering and formatting helpers
//
// # Store Notifications
//
// Store listeners run while the store holds its lock, so Run registers a
// listener that only signals a one-slot channel. A waiting command turns the
// signal into a storeChangedMsg on the Bubble Tea goroutine, where the
// snapshot is refreshed. Bursts of changes collapse into one refresh.
//
// # Sessions
//
// Tasks are shown for one time of day at a time or all together, grouped in
// morning, afternoon, evening, anytime order. Tab cycles the session. The
// starting session comes from prefs ("auto" follows the clock).
//
// # External Panels
//
// Fixtures and weather are fetched through the FixtureSource and
// WeatherSource interfaces on start and every 30 minutes. Failures are logged
// and the panel keeps its previous contents.
//
// # Key Bindings
//
//   - j/k, g/G: Move selection
//   - tab/shift+tab: Cycle session
//   - space/enter: Toggle the selected task
//   - +/-: Log or remove a seizure for today
//   - c: Claim a trophy (20 points)
//   - s: Sync from the cloud now
//   - r r: Reset today's tasks (press twice)
//   - T: Cycle theme (saved to prefs)
//   - ?: Help
//   - q or Ctrl+C: Quit
package ui
