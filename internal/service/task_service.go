package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskvoice/internal/model"
	"taskvoice/internal/recurrence"
	"taskvoice/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Description    string
	Category       string
	Priority       string
	DueDate        string // timezone-naive ISO-8601
	Frequency      string
	ReminderOffset *int
	Reminders      []ReminderInput
}

// ReminderInput configures one reminder on a new task.
type ReminderInput struct {
	TimeBefore int
	Message    string
}

// TaskUpdate carries a partial update; nil fields are left untouched.
// Due date and frequency changes here bypass the recurrence computation:
// an explicit reschedule replaces the schedule rather than advancing it.
type TaskUpdate struct {
	Description    *string
	Category       *string
	Priority       *string
	DueDate        *string
	Frequency      *string
	ReminderOffset *int
}

// TaskService wraps task-related business logic.
type TaskService struct {
	repo *repository.TaskRepository
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}

	due, err := recurrence.ParseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	priority, err := normalizePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	task := model.Task{
		Description:    description,
		Category:       category,
		Priority:       priority,
		DueDate:        due,
		Frequency:      strings.TrimSpace(input.Frequency),
		ReminderOffset: input.ReminderOffset,
	}

	if recurrence.Recurring(task.Frequency) {
		next := recurrence.Next(due, task.Frequency)
		task.NextDueDate = &next
	}

	for _, rem := range input.Reminders {
		task.Reminders = append(task.Reminders, model.Reminder{
			TimeBefore: rem.TimeBefore,
			Message:    rem.Message,
		})
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	return s.repo.FindByID(ctx, taskID)
}

// UpdateTask applies a partial update and recomputes the stored next due
// date when the schedule changed.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, update TaskUpdate) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if description == "" {
			return nil, fmt.Errorf("description is required")
		}
		task.Description = description
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			category = model.DefaultCategory
		}
		task.Category = category
	}
	if update.Priority != nil {
		priority, err := normalizePriority(*update.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}

	rescheduled := false
	if update.DueDate != nil {
		due, err := recurrence.ParseDueDate(*update.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
		rescheduled = true
	}
	if update.Frequency != nil {
		task.Frequency = strings.TrimSpace(*update.Frequency)
		rescheduled = true
	}
	if update.ReminderOffset != nil {
		task.ReminderOffset = update.ReminderOffset
	}

	if rescheduled {
		if recurrence.Recurring(task.Frequency) {
			next := recurrence.Next(task.DueDate, task.Frequency)
			task.NextDueDate = &next
		} else {
			task.NextDueDate = nil
		}
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask records a completion at completedAt. A recurring task is
// advanced from its current due date, not from the completion instant, so an
// early or late completion does not drift the schedule; it stays open.
// A non-recurring task is closed for good.
func (s *TaskService) CompleteTask(ctx context.Context, taskID uint, completedAt time.Time) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if recurrence.Recurring(task.Frequency) {
		next := recurrence.Next(task.DueDate, task.Frequency)
		task.DueDate = next
		task.NextDueDate = &next
		task.Completed = false
	} else {
		if task.Completed {
			return nil, fmt.Errorf("task %d is already completed", taskID)
		}
		task.Completed = true
	}

	if err := s.repo.RecordCompletion(ctx, task, completedAt); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task completely (one-time and recurring alike).
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	return s.repo.Delete(ctx, taskID)
}

func normalizePriority(priority string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(priority))
	switch p {
	case "":
		return model.DefaultPriority, nil
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("invalid priority %q", priority)
	}
}
