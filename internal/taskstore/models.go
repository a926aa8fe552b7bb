package taskstore

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus converts a user-supplied name into a Status.
func ParseStatus(value string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range allStatuses {
		if s == v {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", value)
}

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Task is one subtitle generation request.
type Task struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Formats   []string  `json:"formats"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	CueCount  int       `json:"cue_count"`
	Outputs   []string  `json:"outputs,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
