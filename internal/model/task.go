package model

import "time"

// Priority levels accepted for tasks.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Defaults applied when a creation request leaves a field empty.
const (
	DefaultCategory = "general"
	DefaultPriority = PriorityMedium
)

// Task represents a single item in the planner.
type Task struct {
	ID             uint `gorm:"primaryKey"`
	Description    string
	Category       string `gorm:"default:general;index"`
	Priority       string `gorm:"default:medium"`
	DueDate        time.Time
	Completed      bool   `gorm:"default:false"`
	Frequency      string // e.g. Daily, Weekly Once; empty = non-recurring
	NextDueDate    *time.Time
	ReminderOffset *int // minutes before due; persisted but not used by scheduling
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Completions    []Completion `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Reminders      []Reminder   `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// Completion is one append-only history entry: the task was marked done at
// CompletedAt. Rows are only ever added while the task exists.
type Completion struct {
	ID          uint `gorm:"primaryKey"`
	TaskID      uint `gorm:"index"`
	CompletedAt time.Time
}
