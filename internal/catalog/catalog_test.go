package catalog

import (
	"strings"
	"testing"

	"github.com/five82/matchday/internal/game"
)

func TestTasks_EmbeddedTemplate(t *testing.T) {
	tasks := Tasks()
	if len(tasks) != 14 {
		t.Fatalf("len(Tasks()) = %d, want 14", len(tasks))
	}
	if Version() != 3 {
		t.Fatalf("Version() = %d, want 3", Version())
	}

	byID := make(map[string]game.Task, len(tasks))
	for _, task := range tasks {
		if task.Completed {
			t.Fatalf("task %q starts completed", task.ID)
		}
		byID[task.ID] = task
	}
	dinner, ok := byID["dinner"]
	if !ok {
		t.Fatalf("template missing dinner task")
	}
	if dinner.Points != 20 || dinner.TimeOfDay != game.Evening || dinner.Category != game.CategoryCleaning {
		t.Fatalf("dinner = %#v, want 20 points, evening, cleaning", dinner)
	}
	if byID["meds-8am"].Category != game.CategoryMedication {
		t.Fatalf("meds-8am category = %q, want %q", byID["meds-8am"].Category, game.CategoryMedication)
	}
}

func TestTasks_ReturnsCopy(t *testing.T) {
	first := Tasks()
	first[0].Completed = true
	first[0].Points = 999
	if second := Tasks(); second[0].Completed || second[0].Points == 999 {
		t.Fatalf("Tasks() shares backing storage between calls")
	}
}

func TestParse_RejectsBadTemplates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "version: 1\ntasks: []\n", "no tasks"},
		{"missing id", "tasks:\n  - title: x\n    points: 1\n    category: other\n    time_of_day: anytime\n", "no id"},
		{"duplicate", "tasks:\n  - {id: a, points: 1, category: other, time_of_day: anytime}\n  - {id: a, points: 1, category: other, time_of_day: anytime}\n", "duplicate"},
		{"zero points", "tasks:\n  - {id: a, points: 0, category: other, time_of_day: anytime}\n", "positive"},
		{"bad category", "tasks:\n  - {id: a, points: 1, category: sport, time_of_day: anytime}\n", "category"},
		{"bad bucket", "tasks:\n  - {id: a, points: 1, category: other, time_of_day: night}\n", "time of day"},
		{"invalid yaml", "tasks: [", "parse template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("parse error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
