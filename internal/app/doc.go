// Package app is the composition root for matchday.
//
// # Startup
//
// Run wires the packages together in this order:
//
//  1. prefs.Load and config.Load
//  2. Redirect the standard logger to <data_dir>/matchday.log so log lines do
//     not tear the alternate screen (skipped with Options.LogStderr)
//  3. persist.Open the SQLite database and restore the saved snapshot into a
//     game.Store seeded from the catalog
//  4. persist.Track saves every committed change; a snapshot saved on an
//     earlier day is archived and reset right away
//  5. When a sync URL is configured, cloud.Attach schedules debounced pushes
//     and an initial pull runs in the background
//  6. WatchRollover resets the tasks at midnight
//  7. ui.Run blocks until the user quits
//
// # Sessions
//
// Open performs steps 1 to 5 without prefs or the initial pull and returns
// a Session. The headless commands in cmd/matchday use it directly;
// Session.Close flushes a pending push before closing the database.
//
// # Data Flow
//
//	ui key press ──> game.Store mutation ──> listeners
//	                                          ├─> persist.Track  (save)
//	                                          ├─> cloud.Attach   (debounced push)
//	                                          └─> ui signal      (re-render)
//
//	startup / "s" key ──> syncNow ──> Store.SyncFromCloud ──> Merge
//	                              └─> Client.FetchCalendar (when the document has none)
//
// # Day Rollover
//
// Open compares the snapshot's save time with the local date. If the app was
// closed over midnight the tasks are reset and the points archived under the
// day the snapshot was saved. While running, the watcher compares the local
// date once a minute and does the same with the day that ended. Several
// missed days collapse into one reset. A manual reset from the UI or the
// reset command archives under today.
//
// # Shutdown
//
// On return Run cancels and waits for the background group (initial pull,
// rollover watcher, sync requests from the UI), which refuses new work from
// then on. Session.Close then detaches the pusher, flushes any pending push
// with a bounded timeout, stops saving and closes the database.
package app
