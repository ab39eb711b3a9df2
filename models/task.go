package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is the fixed pipeline a task moves through on the board
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "BACKLOG"
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists the board columns in display order
var TaskStatuses = []TaskStatus{
	StatusBacklog,
	StatusTodo,
	StatusInProgress,
	StatusInReview,
	StatusDone,
}

// ParseTaskStatus rejects anything outside the five enumerated values
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	for _, valid := range TaskStatuses {
		if status == valid {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid task status %q", s)
}

// Position bounds for the sparse ordering scheme. Positions within a
// column are multiples of PositionStep capped at PositionMax.
const (
	PositionStep = 1000
	PositionMax  = 1_000_000
)

// Task is a unit of work with status, assignee, due date and board position
type Task struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	Status      TaskStatus `gorm:"not null;index" json:"status"`
	DueDate     *time.Time `json:"due_date"`

	AssigneeID  string `gorm:"index" json:"assignee_id"`
	ProjectID   string `gorm:"type:uuid;not null;index" json:"project_id"`
	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`

	// Sparse ordering within the status column
	Position int `gorm:"not null" json:"position"`

	// Relations
	Project  Project `json:"-"`
	Assignee Member  `gorm:"foreignKey:AssigneeID" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
