// Package catalog provides the fixed daily task template.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/five82/matchday/internal/game"
)

//go:embed tasks.yaml
var rawTemplate []byte

type document struct {
	Version int         `yaml:"version"`
	Tasks   []game.Task `yaml:"tasks"`
}

var template = mustParse(rawTemplate)

// Version identifies the embedded template revision.
func Version() int {
	return template.Version
}

// Tasks returns a fresh copy of the template with every task open.
func Tasks() []game.Task {
	dup := make([]game.Task, len(template.Tasks))
	copy(dup, template.Tasks)
	return dup
}

func mustParse(data []byte) document {
	doc, err := parse(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return doc
}

func parse(data []byte) (document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("parse template: %w", err)
	}
	if len(doc.Tasks) == 0 {
		return document{}, fmt.Errorf("template has no tasks")
	}
	seen := make(map[string]struct{}, len(doc.Tasks))
	for i, task := range doc.Tasks {
		id := strings.TrimSpace(task.ID)
		if id == "" {
			return document{}, fmt.Errorf("task %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return document{}, fmt.Errorf("duplicate task id %q", id)
		}
		seen[id] = struct{}{}
		if task.Points <= 0 {
			return document{}, fmt.Errorf("task %q: points must be positive", id)
		}
		if !validCategory(task.Category) {
			return document{}, fmt.Errorf("task %q: unknown category %q", id, task.Category)
		}
		if !validTimeOfDay(task.TimeOfDay) {
			return document{}, fmt.Errorf("task %q: unknown time of day %q", id, task.TimeOfDay)
		}
		doc.Tasks[i].ID = id
		doc.Tasks[i].Completed = false
	}
	return doc, nil
}

func validCategory(c game.Category) bool {
	switch c {
	case game.CategoryHygiene, game.CategoryCleaning, game.CategoryMedication, game.CategoryOther:
		return true
	}
	return false
}

func validTimeOfDay(tod game.TimeOfDay) bool {
	for _, known := range game.TimesOfDay {
		if tod == known {
			return true
		}
	}
	return false
}
