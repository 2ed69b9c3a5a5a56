package cloud

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/five82/matchday/internal/game"
)

const (
	actionGetAll      = "getAll"
	actionGetCalendar = "getCalendar"
	actionSyncAll     = "syncAll"
)

// envelope is the wrapper every endpoint response uses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// documentPayload mirrors the data field of ?action=getAll.
type documentPayload struct {
	Tasks          []taskFlag           `json:"tasks"`
	SeizureHistory []seizureRow         `json:"seizureHistory"`
	PointsHistory  []pointsRow          `json:"pointsHistory"`
	CalendarEvents []game.CalendarEvent `json:"calendarEvents"`
	LastSync       string               `json:"lastSync"`
}

type taskFlag struct {
	TaskID    string   `json:"taskId"`
	Date      flexDate `json:"date"`
	Completed flexBool `json:"completed"`
}

type seizureRow struct {
	Date  flexDate `json:"date"`
	Count int      `json:"count"`
}

type pointsRow struct {
	Date   flexDate `json:"date"`
	Points int      `json:"points"`
}

func (d documentPayload) snapshot() *game.CloudSnapshot {
	snap := &game.CloudSnapshot{
		CalendarEvents: d.CalendarEvents,
		LastSync:       d.LastSync,
	}
	for _, t := range d.Tasks {
		snap.Tasks = append(snap.Tasks, game.CloudTaskFlag{
			TaskID:    strings.TrimSpace(t.TaskID),
			Date:      string(t.Date),
			Completed: bool(t.Completed),
		})
	}
	for _, row := range d.SeizureHistory {
		snap.SeizureHistory = append(snap.SeizureHistory, game.SeizureEntry{Date: string(row.Date), Count: max(0, row.Count)})
	}
	for _, row := range d.PointsHistory {
		snap.PointsHistory = append(snap.PointsHistory, game.HistoryEntry{Date: string(row.Date), Points: row.Points})
	}
	return snap
}

// PushPayload is the data document sent with action syncAll.
type PushPayload struct {
	Tasks          []game.Task         `json:"tasks"`
	Points         int                 `json:"points"`
	SeizureHistory []game.SeizureEntry `json:"seizureHistory"`
	History        []game.HistoryEntry `json:"history"`
}

// NewPushPayload extracts the pushed fields from a state snapshot.
func NewPushPayload(st game.State) PushPayload {
	p := PushPayload{
		Tasks:          st.Tasks,
		Points:         st.Points,
		SeizureHistory: st.SeizureHistory,
		History:        st.History,
	}
	if p.Tasks == nil {
		p.Tasks = []game.Task{}
	}
	if p.SeizureHistory == nil {
		p.SeizureHistory = []game.SeizureEntry{}
	}
	if p.History == nil {
		p.History = []game.HistoryEntry{}
	}
	return p
}

type pushRequest struct {
	Action string      `json:"action"`
	Data   PushPayload `json:"data"`
}

type pushResult struct {
	Timestamp string `json:"timestamp"`
}

// flexBool accepts the loose boolean encodings spreadsheet cells produce.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*b = false
		return nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y", "1", "x", "✓":
			*b = true
		default:
			*b = false
		}
		return nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*b = flexBool(v)
		return nil
	default:
		n, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return err
		}
		*b = n != 0
		return nil
	}
}

// flexDate normalises date cells to YYYY-MM-DD. Full timestamps are
// converted to the local calendar date.
type flexDate string

func (d *flexDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = flexDate(normaliseDate(s))
	return nil
}

func normaliseDate(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) <= 10 {
		return trimmed
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return game.Day(t.Local())
		}
	}
	if _, err := time.Parse("2006-01-02", trimmed[:10]); err == nil {
		return trimmed[:10]
	}
	return trimmed
}
