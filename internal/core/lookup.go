package core

import (
	"errors"
	"fmt"

	"github.com/valter-silva-au/swarm/pkg/models"
)

// GoalDisplayLen is the number of characters of a goal shown in summaries.
const GoalDisplayLen = 80

// ErrTaskNotFound is returned by ResolveFull for an unknown task id.
var ErrTaskNotFound = errors.New("task not found")

// TaskSummary is the short projection of a task used inside card headers.
type TaskSummary struct {
	ID         string `json:"task_id"`
	Product    string `json:"product"`
	Team       string `json:"team"`
	Capability string `json:"capability"`
	Goal       string `json:"goal"`
}

// ResolveSummary returns the summary of a task. ok is false when the id is
// unknown; callers then display the id itself.
func ResolveSummary(id string, tasks *models.TaskTable) (summary TaskSummary, ok bool) {
	t, ok := tasks.Get(id)
	if !ok {
		return TaskSummary{}, false
	}
	return TaskSummary{
		ID:         t.ID,
		Product:    t.Product,
		Team:       t.Team,
		Capability: t.Capability,
		Goal:       truncateRunes(t.Goal, GoalDisplayLen),
	}, true
}

// TaskLine formats a task reference for display. Unknown ids are returned
// unchanged so rendering never fails on a dangling reference.
func TaskLine(id string, tasks *models.TaskTable) string {
	s, ok := ResolveSummary(id, tasks)
	if !ok {
		return id
	}
	return fmt.Sprintf("%s · %s/%s · %s · %s", s.ID, s.Product, s.Team, s.Capability, s.Goal)
}

// ResolveFull returns every field of a task, untruncated.
func ResolveFull(id string, tasks *models.TaskTable) (models.Task, error) {
	t, ok := tasks.Get(id)
	if !ok {
		return models.Task{}, fmt.Errorf("resolving task %s: %w", id, ErrTaskNotFound)
	}
	return t, nil
}

// truncateRunes cuts s to at most n characters, without an ellipsis.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
