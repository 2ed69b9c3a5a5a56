package game

import "time"

// Persisted is the subset of State written to device storage. Sync
// bookkeeping that only matters to the running process is left out.
type Persisted struct {
	Points         int             `json:"points"`
	Tasks          []Task          `json:"tasks"`
	History        []HistoryEntry  `json:"history"`
	SeizureHistory []SeizureEntry  `json:"seizureHistory"`
	CalendarEvents []CalendarEvent `json:"calendarEvents"`
	LastSynced     *time.Time      `json:"lastSynced"`
	Trophies       int             `json:"trophies"`
}

// Persisted extracts the durable portion of the state.
func (s State) Persisted() Persisted {
	dup := s.clone()
	return Persisted{
		Points:         dup.Points,
		Tasks:          dup.Tasks,
		History:        dup.History,
		SeizureHistory: dup.SeizureHistory,
		CalendarEvents: dup.CalendarEvents,
		LastSynced:     dup.LastSynced,
		Trophies:       dup.Trophies,
	}
}

func (p Persisted) state(template []Task) State {
	st := State{
		Points:         p.Points,
		Tasks:          cloneSlice(p.Tasks),
		History:        cloneSlice(p.History),
		SeizureHistory: cloneSlice(p.SeizureHistory),
		CalendarEvents: cloneSlice(p.CalendarEvents),
		Trophies:       p.Trophies,
	}
	if p.LastSynced != nil {
		ts := *p.LastSynced
		st.LastSynced = &ts
	}
	if len(st.Tasks) == 0 {
		st.Tasks = cloneSlice(template)
		st.Points = 0
	}
	if st.Points < 0 {
		st.Points = 0
	}
	st.History = trimHistory(st.History)
	return st
}
