package game

import "time"

// Category groups tasks for display and filtering.
type Category string

const (
	CategoryHygiene    Category = "hygiene"
	CategoryCleaning   Category = "cleaning"
	CategoryMedication Category = "meds"
	CategoryOther      Category = "other"
)

// TimeOfDay buckets tasks into sessions of the day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Anytime   TimeOfDay = "anytime"
)

// TimesOfDay lists the buckets in display order.
var TimesOfDay = []TimeOfDay{Morning, Afternoon, Evening, Anytime}

const (
	// HistoryLimit bounds the archived daily point totals.
	HistoryLimit = 5
	// RewardCost is the number of points one trophy costs.
	RewardCost = 20

	dayLayout = "2006-01-02"
)

// Task is a single entry of today's task set.
type Task struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Points     int       `json:"points" yaml:"points"`
	Completed  bool      `json:"completed" yaml:"-"`
	Category   Category  `json:"category" yaml:"category"`
	Emoji      string    `json:"emoji,omitempty" yaml:"emoji"`
	ColorClass string    `json:"colorClass,omitempty" yaml:"color"`
	TimeOfDay  TimeOfDay `json:"timeOfDay" yaml:"time_of_day"`
}

// HistoryEntry archives one day's final point total.
type HistoryEntry struct {
	Date   string `json:"date"`
	Points int    `json:"points"`
}

// SeizureEntry counts logged seizures for one calendar date.
type SeizureEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CalendarEvent is read-only data sourced from the cloud document.
type CalendarEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location"`
	Description string `json:"description"`
	IsAllDay    bool   `json:"isAllDay"`
}

// CloudTaskFlag is a completion record for one task on one date.
type CloudTaskFlag struct {
	TaskID    string
	Date      string
	Completed bool
}

// CloudSnapshot is the decoded full document pulled from the sync endpoint.
// A nil CalendarEvents slice means the document carried no calendar field.
type CloudSnapshot struct {
	Tasks          []CloudTaskFlag
	SeizureHistory []SeizureEntry
	PointsHistory  []HistoryEntry
	CalendarEvents []CalendarEvent
	LastSync       string
}

// State is the full in-memory game state.
type State struct {
	Tasks          []Task
	Points         int
	History        []HistoryEntry
	SeizureHistory []SeizureEntry
	CalendarEvents []CalendarEvent
	Trophies       int
	LastSynced     *time.Time
	IsSyncing      bool
}

// Day formats t as the calendar date key used throughout the state.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// CompletedPoints sums the points of all completed tasks.
func (s State) CompletedPoints() int {
	total := 0
	for _, task := range s.Tasks {
		if task.Completed {
			total += task.Points
		}
	}
	return total
}

// Progress reports how many of today's tasks are done.
func (s State) Progress() (done, total int) {
	for _, task := range s.Tasks {
		if task.Completed {
			done++
		}
	}
	return done, len(s.Tasks)
}

// TasksFor returns the tasks in the given time-of-day bucket, in catalog order.
func (s State) TasksFor(tod TimeOfDay) []Task {
	var out []Task
	for _, task := range s.Tasks {
		if task.TimeOfDay == tod {
			out = append(out, task)
		}
	}
	return out
}

// SeizuresOn returns the logged count for day, zero when absent.
func (s State) SeizuresOn(day string) int {
	for _, entry := range s.SeizureHistory {
		if entry.Date == day {
			return entry.Count
		}
	}
	return 0
}

// CanClaim reports whether a trophy can be claimed right now.
func (s State) CanClaim() bool {
	return s.Points >= RewardCost
}

func (s State) clone() State {
	dup := s
	dup.Tasks = cloneSlice(s.Tasks)
	dup.History = cloneSlice(s.History)
	dup.SeizureHistory = cloneSlice(s.SeizureHistory)
	dup.CalendarEvents = cloneSlice(s.CalendarEvents)
	if s.LastSynced != nil {
		ts := *s.LastSynced
		dup.LastSynced = &ts
	}
	return dup
}

func cloneSlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
