package game

import "time"

// Merge reconciles a pulled cloud document into local and returns the next
// state. local is not modified.
//
// Task completion is OR-merged against the cloud flags dated today; when the
// document has no flags for today the tasks are left alone. Points are always
// recomputed from the merged tasks. Calendar events follow the cloud whenever
// the document carries them, while seizure and point history are only
// replaced by non-empty cloud copies.
func Merge(local State, cloud CloudSnapshot, now time.Time) State {
	next := local.clone()
	today := Day(now)

	flags := todayFlags(cloud.Tasks, today)
	if len(flags) > 0 {
		for i, task := range next.Tasks {
			if done, ok := flags[task.ID]; ok {
				next.Tasks[i].Completed = task.Completed || done
			}
		}
	}
	next.Points = next.CompletedPoints()

	if cloud.CalendarEvents != nil {
		next.CalendarEvents = cloneSlice(cloud.CalendarEvents)
	}
	if len(cloud.SeizureHistory) > 0 {
		next.SeizureHistory = cloneSlice(cloud.SeizureHistory)
	}
	if len(cloud.PointsHistory) > 0 {
		next.History = trimHistory(cloneSlice(cloud.PointsHistory))
	}

	synced := now
	next.LastSynced = &synced
	next.IsSyncing = false
	return next
}

func todayFlags(tasks []CloudTaskFlag, today string) map[string]bool {
	flags := make(map[string]bool)
	for _, flag := range tasks {
		if flag.Date != today || flag.TaskID == "" {
			continue
		}
		flags[flag.TaskID] = flags[flag.TaskID] || flag.Completed
	}
	return flags
}
