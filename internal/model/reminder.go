package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder is a per-task notification preference: speak Message (or the task
// description) TimeBefore minutes ahead of the due date.
type Reminder struct {
	ID         string `gorm:"primaryKey"`
	TaskID     uint   `gorm:"index"`
	TimeBefore int    // minutes before the due date
	Message    string
	Sent       bool `gorm:"default:false"`
}

// BeforeCreate assigns a UUID when the caller did not supply one.
func (r *Reminder) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
