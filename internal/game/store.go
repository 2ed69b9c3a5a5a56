package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSyncInProgress is returned when a pull is requested while another one
// has not finished yet.
var ErrSyncInProgress = errors.New("sync already in progress")

// Puller fetches the full cloud document.
type Puller interface {
	Pull(ctx context.Context) (*CloudSnapshot, error)
}

// Listener receives a copy of the state after every transition that changed it.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

// Store owns the game state. Every mutation builds the complete next state
// and swaps it in under the lock, so observers never see a partial update.
//
// Listeners run while the lock is held and must not call back into the Store.
type Store struct {
	mu        sync.Mutex
	template  []Task
	state     State
	listeners []subscription
	nextID    int
}

// New builds a Store whose task set is a fresh copy of template.
func New(template []Task) *Store {
	tpl := cloneSlice(template)
	for i := range tpl {
		tpl[i].Completed = false
	}
	return &Store{
		template: tpl,
		state:    State{Tasks: cloneSlice(tpl)},
	}
}

// Restore replaces the state with a previously persisted snapshot. Listeners
// are not notified.
func (s *Store) Restore(p Persisted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = p.state(s.template)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it again.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// CompleteTask marks the task done and credits its points. Unknown or
// already completed tasks leave the state untouched.
func (s *Store) CompleteTask(taskID string) bool {
	return s.update(func(next *State) bool {
		idx := indexOfTask(next.Tasks, taskID)
		if idx < 0 || next.Tasks[idx].Completed {
			return false
		}
		next.Tasks[idx].Completed = true
		next.Points += next.Tasks[idx].Points
		return true
	})
}

// UncompleteTask reverts a completed task and debits its points, never
// dropping the total below zero.
func (s *Store) UncompleteTask(taskID string) bool {
	return s.update(func(next *State) bool {
		idx := indexOfTask(next.Tasks, taskID)
		if idx < 0 || !next.Tasks[idx].Completed {
			return false
		}
		next.Tasks[idx].Completed = false
		next.Points = max(0, next.Points-next.Tasks[idx].Points)
		return true
	})
}

// ToggleTask flips the completion flag of a task.
func (s *Store) ToggleTask(taskID string) bool {
	snap := s.Snapshot()
	idx := indexOfTask(snap.Tasks, taskID)
	if idx < 0 {
		return false
	}
	if snap.Tasks[idx].Completed {
		return s.UncompleteTask(taskID)
	}
	return s.CompleteTask(taskID)
}

// AddPoints adjusts the total directly, flooring at zero.
func (s *Store) AddPoints(amount int) bool {
	return s.update(func(next *State) bool {
		if amount == 0 {
			return false
		}
		updated := max(0, next.Points+amount)
		if updated == next.Points {
			return false
		}
		next.Points = updated
		return true
	})
}

// LogSeizure adjusts the seizure count for day by delta. A missing entry is
// only created for a positive delta; counts never drop below zero.
func (s *Store) LogSeizure(delta int, day string) bool {
	return s.update(func(next *State) bool {
		for i, entry := range next.SeizureHistory {
			if entry.Date != day {
				continue
			}
			count := max(0, entry.Count+delta)
			if count == entry.Count {
				return false
			}
			next.SeizureHistory[i].Count = count
			return true
		}
		if delta <= 0 {
			return false
		}
		next.SeizureHistory = append(next.SeizureHistory, SeizureEntry{Date: day, Count: delta})
		return true
	})
}

// ClaimReward trades RewardCost points for one trophy.
func (s *Store) ClaimReward() bool {
	return s.update(func(next *State) bool {
		if next.Points < RewardCost {
			return false
		}
		next.Points -= RewardCost
		next.Trophies++
		return true
	})
}

// ResetDailyTasks archives the day's points under day, makes sure day has a
// seizure record, and reinstates the task template.
func (s *Store) ResetDailyTasks(day string) {
	s.update(func(next *State) bool {
		next.History = trimHistory(append(next.History, HistoryEntry{Date: day, Points: next.Points}))
		if !hasSeizureEntry(next.SeizureHistory, day) {
			next.SeizureHistory = append(next.SeizureHistory, SeizureEntry{Date: day, Count: 0})
		}
		next.Tasks = cloneSlice(s.template)
		next.Points = 0
		return true
	})
}

// SetCalendarEvents replaces the calendar wholesale.
func (s *Store) SetCalendarEvents(events []CalendarEvent) {
	s.update(func(next *State) bool {
		next.CalendarEvents = cloneSlice(events)
		if next.CalendarEvents == nil {
			next.CalendarEvents = []CalendarEvent{}
		}
		return true
	})
}

// SyncFromCloud pulls the cloud document and reconciles it into the local
// state. Failures leave the state as it was apart from clearing IsSyncing;
// the returned error is informational.
func (s *Store) SyncFromCloud(ctx context.Context, puller Puller, now time.Time) error {
	started := s.update(func(next *State) bool {
		if next.IsSyncing {
			return false
		}
		next.IsSyncing = true
		return true
	})
	if !started {
		return ErrSyncInProgress
	}

	snap, err := pull(ctx, puller)
	if err != nil {
		s.finishSync()
		return err
	}

	s.update(func(next *State) bool {
		*next = Merge(*next, *snap, now)
		return true
	})
	return nil
}

func pull(ctx context.Context, puller Puller) (snap *CloudSnapshot, err error) {
	if puller == nil {
		return nil, fmt.Errorf("pull cloud state: no puller")
	}
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fmt.Errorf("pull cloud state: %v", r)
		}
	}()
	snap, err = puller.Pull(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull cloud state: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("pull cloud state: empty document")
	}
	return snap, nil
}

func (s *Store) finishSync() {
	s.update(func(next *State) bool {
		if !next.IsSyncing {
			return false
		}
		next.IsSyncing = false
		return true
	})
}

// update runs fn against a copy of the state and commits the copy only when
// fn reports a change.
func (s *Store) update(fn func(next *State) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if !fn(&next) {
		return false
	}
	s.state = next
	for _, sub := range s.listeners {
		sub.fn(s.state.clone())
	}
	return true
}

func indexOfTask(tasks []Task, id string) int {
	for i, task := range tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func hasSeizureEntry(entries []SeizureEntry, day string) bool {
	for _, entry := range entries {
		if entry.Date == day {
			return true
		}
	}
	return false
}

func trimHistory(history []HistoryEntry) []HistoryEntry {
	if len(history) <= HistoryLimit {
		return history
	}
	dup := make([]HistoryEntry, HistoryLimit)
	copy(dup, history[len(history)-HistoryLimit:])
	return dup
}
