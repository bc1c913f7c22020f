package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskvoice/internal/model"
	"taskvoice/internal/recurrence"
	"taskvoice/internal/repository"
)

// maxImportErrors caps the error list returned in an import summary.
const maxImportErrors = 10

// TaskRecord is the JSON shape used by the HTTP API, import, and export.
// Timestamps are timezone-naive ISO-8601 strings.
type TaskRecord struct {
	ID                uint             `json:"id,omitempty"`
	Description       string           `json:"description" validate:"required,max=500"`
	Category          string           `json:"category" validate:"max=50"`
	Priority          string           `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate           string           `json:"dueDate" validate:"required"`
	Completed         bool             `json:"completed"`
	Frequency         string           `json:"frequency,omitempty"`
	NextDueDate       string           `json:"nextDueDate,omitempty"`
	ReminderOffset    *int             `json:"reminderOffset,omitempty"`
	CreatedDate       string           `json:"createdDate,omitempty"`
	CompletionHistory []string         `json:"completionHistory,omitempty"`
	Reminders         []ReminderRecord `json:"reminders,omitempty"`
}

// ReminderRecord is the JSON shape of one reminder.
type ReminderRecord struct {
	ID         string `json:"id,omitempty"`
	TimeBefore int    `json:"timeBefore" validate:"gte=0"`
	Message    string `json:"message,omitempty"`
	Sent       bool   `json:"sent"`
}

// ImportSummary reports the outcome of an import run.
type ImportSummary struct {
	SuccessCount int      `json:"successCount"`
	SkippedCount int      `json:"skippedCount"`
	InvalidCount int      `json:"invalidCount"`
	Errors       []string `json:"errors"`
}

// TransferService imports and exports the task set as JSON.
type TransferService struct {
	repo     *repository.TaskRepository
	validate *validator.Validate
}

func NewTransferService(repo *repository.TaskRepository) *TransferService {
	return &TransferService{repo: repo, validate: validator.New()}
}

// RecordFromTask converts a stored task to its wire shape.
func RecordFromTask(t model.Task) TaskRecord {
	rec := TaskRecord{
		ID:             t.ID,
		Description:    t.Description,
		Category:       t.Category,
		Priority:       t.Priority,
		DueDate:        recurrence.FormatDueDate(t.DueDate),
		Completed:      t.Completed,
		Frequency:      t.Frequency,
		ReminderOffset: t.ReminderOffset,
		CreatedDate:    recurrence.FormatDueDate(t.CreatedAt),
	}
	if t.NextDueDate != nil {
		rec.NextDueDate = recurrence.FormatDueDate(*t.NextDueDate)
	}
	for _, c := range t.Completions {
		rec.CompletionHistory = append(rec.CompletionHistory, recurrence.FormatDueDate(c.CompletedAt))
	}
	for _, r := range t.Reminders {
		rec.Reminders = append(rec.Reminders, ReminderRecord{
			ID:         r.ID,
			TimeBefore: r.TimeBefore,
			Message:    r.Message,
			Sent:       r.Sent,
		})
	}
	return rec
}

// taskFromRecord validates and converts a wire record into a task.
func (s *TransferService) taskFromRecord(rec TaskRecord) (*model.Task, error) {
	if err := s.validate.Struct(rec); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.Description) == "" {
		return nil, fmt.Errorf("description is required")
	}

	due, err := recurrence.ParseDueDate(rec.DueDate)
	if err != nil {
		return nil, err
	}

	priority, err := normalizePriority(rec.Priority)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(rec.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	task := model.Task{
		ID:             rec.ID,
		Description:    strings.TrimSpace(rec.Description),
		Category:       category,
		Priority:       priority,
		DueDate:        due,
		Completed:      rec.Completed,
		Frequency:      strings.TrimSpace(rec.Frequency),
		ReminderOffset: rec.ReminderOffset,
	}

	if rec.NextDueDate != "" {
		next, err := recurrence.ParseDueDate(rec.NextDueDate)
		if err != nil {
			return nil, err
		}
		task.NextDueDate = &next
	} else if recurrence.Recurring(task.Frequency) {
		next := recurrence.Next(due, task.Frequency)
		task.NextDueDate = &next
	}

	for _, ts := range rec.CompletionHistory {
		at, err := recurrence.ParseDueDate(ts)
		if err != nil {
			return nil, fmt.Errorf("completion history: %w", err)
		}
		task.Completions = append(task.Completions, model.Completion{CompletedAt: at})
	}
	for _, r := range rec.Reminders {
		task.Reminders = append(task.Reminders, model.Reminder{
			ID:         r.ID,
			TimeBefore: r.TimeBefore,
			Message:    r.Message,
			Sent:       r.Sent,
		})
	}

	return &task, nil
}

// Import reads a JSON array of task records and stores the valid new ones.
// Records whose id already exists are skipped; invalid records are counted
// and reported without aborting the run. With dryRun set, nothing is stored.
func (s *TransferService) Import(ctx context.Context, data []byte, dryRun bool) (*ImportSummary, error) {
	var records []TaskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}

	existing, err := s.repo.ExistingIDs(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{Errors: []string{}}
	for i, rec := range records {
		if rec.ID != 0 && existing[rec.ID] {
			summary.SkippedCount++
			continue
		}

		task, err := s.taskFromRecord(rec)
		if err != nil {
			summary.InvalidCount++
			if len(summary.Errors) < maxImportErrors {
				summary.Errors = append(summary.Errors, fmt.Sprintf("item %d: %v", i+1, err))
			}
			continue
		}

		if !dryRun {
			if err := s.repo.Create(ctx, task); err != nil {
				summary.InvalidCount++
				if len(summary.Errors) < maxImportErrors {
					summary.Errors = append(summary.Errors, fmt.Sprintf("item %d: %v", i+1, err))
				}
				continue
			}
		}
		if task.ID != 0 {
			existing[task.ID] = true
		}
		summary.SuccessCount++
	}

	return summary, nil
}

// Export renders every stored task as an indented JSON array.
func (s *TransferService) Export(ctx context.Context) ([]byte, error) {
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, RecordFromTask(t))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}
