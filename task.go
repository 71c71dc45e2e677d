package main

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus int

const (
	StatusBacklog TaskStatus = iota
	StatusPlanning
	StatusRunning
	StatusReview
	StatusDone
)

var statusNames = []string{"backlog", "planning", "running", "review", "done"}

// Columns returns the board columns in display order. Auto-layout uses the
// position in this list as the horizontal grid index.
func Columns() []TaskStatus {
	return []TaskStatus{StatusBacklog, StatusPlanning, StatusRunning, StatusReview, StatusDone}
}

func (s TaskStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

func ParseTaskStatus(s string) (TaskStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range statusNames {
		if name == s {
			return TaskStatus(i), true
		}
	}
	return StatusBacklog, false
}

func (s TaskStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TaskStatus) UnmarshalText(text []byte) error {
	status, ok := ParseTaskStatus(string(text))
	if !ok {
		status = StatusBacklog
	}
	*s = status
	return nil
}

// Task is a card on the board. A position of exactly (0,0) means the task has
// never been placed on the canvas.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Agent       string     `json:"agent"`
	ProjectID   string     `json:"project_id,omitempty"`
	CanvasX     float64    `json:"canvas_x"`
	CanvasY     float64    `json:"canvas_y"`
	HTMLContent string     `json:"html_content,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewTask(title, agent, projectID string) Task {
	now := time.Now().UTC()
	return Task{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    StatusBacklog,
		Agent:     agent,
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Task) HasHTML() bool {
	return t.HTMLContent != ""
}

func (t *Task) Placed() bool {
	return t.CanvasX != 0 || t.CanvasY != 0
}

// TaskConnection is a labeled arrow between two tasks. Endpoints are not
// validated on creation; the renderer skips connections whose tasks are gone.
type TaskConnection struct {
	ID         string    `json:"id"`
	FromTaskID string    `json:"from_task_id"`
	ToTaskID   string    `json:"to_task_id"`
	Label      string    `json:"label"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewTaskConnection(fromTaskID, toTaskID, label string) TaskConnection {
	return TaskConnection{
		ID:         uuid.New().String(),
		FromTaskID: fromTaskID,
		ToTaskID:   toTaskID,
		Label:      label,
		CreatedAt:  time.Now().UTC(),
	}
}

func (c TaskConnection) Touches(taskID string) bool {
	return c.FromTaskID == taskID || c.ToTaskID == taskID
}

func findTask(tasks []Task, id string) (int, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
