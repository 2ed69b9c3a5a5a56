package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/matchday/internal/game"
)

func TestNewClient_EmptyURLDisablesSync(t *testing.T) {
	c, err := NewClient("   ")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.Enabled() {
		t.Fatalf("Enabled() = true, want false")
	}
	if _, err := c.Pull(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("Pull error = %v, want ErrDisabled", err)
	}
	if _, err := c.Push(context.Background(), PushPayload{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("Push error = %v, want ErrDisabled", err)
	}
	if _, err := c.FetchCalendar(context.Background()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("FetchCalendar error = %v, want ErrDisabled", err)
	}
}

func TestNewClient_RejectsBadURLs(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/x", "https://", "::nope"} {
		if _, err := NewClient(raw); err == nil {
			t.Fatalf("NewClient(%q) returned nil error", raw)
		}
	}
}

func TestClient_PullDecodesDocument(t *testing.T) {
	t.Parallel()

	var gotQuery string
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("action")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"success": true,
			"data": {
				"tasks": [
					{"taskId": "dinner", "date": "2025-06-01", "completed": true},
					{"taskId": "bins", "date": "2025-06-01", "completed": "FALSE"},
					{"taskId": "floors", "date": "2025-06-01", "completed": "TRUE"},
					{"taskId": "meds-8am", "date": "2025-06-01", "completed": 1}
				],
				"seizureHistory": [{"date": "2025-05-31", "count": 2}],
				"pointsHistory": [{"date": "2025-05-31", "points": 41}],
				"calendarEvents": [{"title": "Physio", "date": "2025-06-02", "startTime": "10:00", "endTime": "11:00", "location": "Clinic", "description": "", "isAllDay": false}],
				"lastSync": "2025-06-01T10:00:00Z"
			}
		}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/exec?deployment=abc")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	snap, err := c.Pull(ctx)
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if gotQuery != actionGetAll {
		t.Fatalf("action = %q, want %q", gotQuery, actionGetAll)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID header missing")
	}

	want := map[string]bool{"dinner": true, "bins": false, "floors": true, "meds-8am": true}
	if len(snap.Tasks) != len(want) {
		t.Fatalf("len(Tasks) = %d, want %d", len(snap.Tasks), len(want))
	}
	for _, flag := range snap.Tasks {
		if flag.Completed != want[flag.TaskID] || flag.Date != "2025-06-01" {
			t.Fatalf("flag %#v, want completed=%v date=2025-06-01", flag, want[flag.TaskID])
		}
	}
	if len(snap.SeizureHistory) != 1 || snap.SeizureHistory[0].Count != 2 {
		t.Fatalf("SeizureHistory = %#v, want one entry with count 2", snap.SeizureHistory)
	}
	if len(snap.PointsHistory) != 1 || snap.PointsHistory[0].Points != 41 {
		t.Fatalf("PointsHistory = %#v, want one entry with 41 points", snap.PointsHistory)
	}
	if len(snap.CalendarEvents) != 1 || snap.CalendarEvents[0].Location != "Clinic" {
		t.Fatalf("CalendarEvents = %#v, want Physio at Clinic", snap.CalendarEvents)
	}
}

func TestClient_PullKeepsExistingQuery(t *testing.T) {
	t.Parallel()

	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("deployment") + "|" + r.URL.Query().Get("action")
		_, _ = io.WriteString(w, `{"success": true, "data": {}}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/exec?deployment=abc")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	snap, err := c.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if got != "abc|getAll" {
		t.Fatalf("query = %q, want abc|getAll", got)
	}
	if snap.CalendarEvents != nil {
		t.Fatalf("CalendarEvents = %#v, want nil when omitted", snap.CalendarEvents)
	}
}

func TestClient_PullFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, "nope", "returned status 500", nil},
		{"malformed", http.StatusOK, "{not-json", "decode response", nil},
		{"remote error", http.StatusOK, `{"success": false, "error": "sheet locked"}`, "sheet locked", ErrRemote},
		{"missing data", http.StatusOK, `{"success": true}`, "missing data", nil},
		{"bad data", http.StatusOK, `{"success": true, "data": {"tasks": "oops"}}`, "decode response data", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			_, err = c.Pull(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Pull error = %v, want it to mention %q", err, tt.want)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Pull error = %v, want errors.Is %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_PushSendsSyncAll(t *testing.T) {
	t.Parallel()

	var gotMethod, gotContentType string
	var gotBody struct {
		Action string          `json:"action"`
		Data   json.RawMessage `json:"data"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"success": true, "data": {"timestamp": "2025-06-01T12:00:00Z"}}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	payload := NewPushPayload(game.State{
		Tasks:  []game.Task{{ID: "dinner", Title: "Cook Team Dinner", Points: 20, Completed: true}},
		Points: 20,
	})
	stamp, err := c.Push(context.Background(), payload)
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}
	if stamp != "2025-06-01T12:00:00Z" {
		t.Fatalf("timestamp = %q, want 2025-06-01T12:00:00Z", stamp)
	}
	if gotMethod != http.MethodPost || !strings.HasPrefix(gotContentType, "text/plain") {
		t.Fatalf("method/content-type = %s/%s, want POST/text/plain", gotMethod, gotContentType)
	}
	if gotBody.Action != actionSyncAll {
		t.Fatalf("action = %q, want %q", gotBody.Action, actionSyncAll)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(gotBody.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	for _, key := range []string{"tasks", "points", "seizureHistory", "history"} {
		if _, ok := data[key]; !ok {
			t.Fatalf("push data missing %q: %s", key, gotBody.Data)
		}
	}
	if string(data["seizureHistory"]) != "[]" {
		t.Fatalf("seizureHistory = %s, want []", data["seizureHistory"])
	}
}

func TestClient_PushRemoteFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success": false, "error": "quota"}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.Push(context.Background(), PushPayload{}); !errors.Is(err, ErrRemote) {
		t.Fatalf("Push error = %v, want ErrRemote", err)
	}
}

func TestClient_FetchCalendar(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != actionGetCalendar {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"success": true, "data": [{"title": "Away day", "date": "2025-06-07", "isAllDay": true}]}`)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	events, err := c.FetchCalendar(context.Background())
	if err != nil {
		t.Fatalf("FetchCalendar returned error: %v", err)
	}
	if len(events) != 1 || !events[0].IsAllDay || events[0].Title != "Away day" {
		t.Fatalf("events = %#v, want one all-day Away day", events)
	}
}

func TestNormaliseDate(t *testing.T) {
	if got := normaliseDate(" 2025-06-01 "); got != "2025-06-01" {
		t.Fatalf("normaliseDate plain = %q", got)
	}
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if got, want := normaliseDate(ts.Format(time.RFC3339)), game.Day(ts.Local()); got != want {
		t.Fatalf("normaliseDate RFC3339 = %q, want %q", got, want)
	}
	if got := normaliseDate("2025-06-01 08:00"); got != "2025-06-01" {
		t.Fatalf("normaliseDate with time suffix = %q, want 2025-06-01", got)
	}
}

func TestClient_PullCalendarFieldPresence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantNil bool
	}{
		{name: "field missing", data: `{"tasks": []}`, wantNil: true},
		{name: "field null", data: `{"calendarEvents": null}`, wantNil: true},
		{name: "field empty", data: `{"calendarEvents": []}`, wantNil: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"success": true, "data": `+tt.data+`}`)
			}))
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			snap, err := c.Pull(context.Background())
			if err != nil {
				t.Fatalf("Pull returned error: %v", err)
			}
			if got := snap.CalendarEvents == nil; got != tt.wantNil {
				t.Fatalf("CalendarEvents nil = %v, want %v (%#v)", got, tt.wantNil, snap.CalendarEvents)
			}
		})
	}
}
