// Package cloud connects Matchday to its spreadsheet-backed sync endpoint.
//
// # Overview
//
// The endpoint is an opaque HTTP service (typically a Google Apps Script web
// app) that stores one key-value document. Three requests are used:
//
//	GET  {sync_url}?action=getAll       full document (tasks, history, calendar)
//	GET  {sync_url}?action=getCalendar  calendar events only
//	POST {sync_url}                     {"action": "syncAll", "data": {...}}
//
// Every response is wrapped in {"success": bool, "data": ..., "error": "..."}.
// A response with success=false is reported as ErrRemote. Transport errors,
// HTTP status >= 400 and malformed bodies are all returned as errors; none of
// them are retried here.
//
// # Disabled Sync
//
// An empty sync URL is a valid configuration. NewClient returns a client whose
// Enabled method reports false and whose calls all return ErrDisabled.
//
// # Pushing
//
// Pusher debounces outbound pushes. It holds a single pending payload; each
// Schedule call replaces it and restarts the quiet period, so a burst of task
// toggles results in one POST carrying the state after the last toggle.
// Flush sends whatever is pending immediately and is used at shutdown.
//
// Attach wires a Pusher to a game.Store: every committed state change
// schedules a push, except states with IsSyncing set. Skipping those keeps a
// push from overtaking an in-flight pull; the merge that ends the pull is
// itself a state change and schedules the push.
//
// # Wire Tolerance
//
// Spreadsheet cells are loosely typed. Completion flags are accepted as JSON
// booleans, "TRUE"/"FALSE" strings or numbers, and date cells holding full
// timestamps are reduced to the local calendar date.
package cloud
