// Package game holds the authoritative in-memory state of the Matchday habit
// tracker: today's tasks, the points total, trophies, the archived point
// history, the seizure log, and the calendar pulled from the cloud.
//
// # Mutations
//
// All mutations go through Store. Each one copies the current State, applies
// its change to the copy, and swaps the copy in under a mutex. Operations whose
// preconditions are not met (completing a task twice, claiming a reward with
// fewer than RewardCost points, logging a negative seizure count on a day with
// no entry) are silent no-ops that return false and do not notify listeners.
//
// Operations that depend on the calendar date take it as an explicit argument
// (see Day), so date boundaries are decided by the caller:
//
//	store.LogSeizure(1, game.Day(time.Now()))
//	store.ResetDailyTasks(game.Day(yesterday))
//
// # Cloud Reconciliation
//
// SyncFromCloud marks the state as syncing, pulls a CloudSnapshot through the
// supplied Puller, and commits Merge's result in a single transition. Pull
// failures clear IsSyncing and otherwise leave the state untouched.
//
// Merge rules:
//
//   - task completion flags dated today are OR-merged into the local tasks
//   - the points total is recomputed from completed tasks
//   - calendar events are replaced whenever the document carries them
//   - seizure and point history are replaced only by non-empty cloud copies
//
// # Listeners
//
// Subscribe registers a Listener that receives a copy of the state after
// every committed transition. The persistence adapter and the auto-push
// subscription in package cloud are both listeners. Listeners run under the
// store lock, so they see transitions in commit order, and they must not call
// back into the Store.
package game
