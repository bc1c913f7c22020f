package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taskvoice/internal/recurrence"
	"taskvoice/internal/repository"
)

func newTestService(t *testing.T) *TaskService {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewTaskService(repository.NewTaskRepository(db))
}

func TestCompleteRecurringTaskAdvancesDueDate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	due := time.Date(2025, time.June, 10, 10, 0, 0, 0, time.Local)
	task, err := svc.CreateTask(ctx, TaskInput{
		Description: "water plants",
		Category:    "todo",
		DueDate:     recurrence.FormatDueDate(due),
		Frequency:   "Daily",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	completedAt := due.Add(30 * time.Minute)
	done, err := svc.CompleteTask(ctx, task.ID, completedAt)
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	wantDue := due.AddDate(0, 0, 1)
	if !done.DueDate.Equal(wantDue) {
		t.Fatalf("due date = %v, want %v", done.DueDate, wantDue)
	}
	if done.Completed {
		t.Fatalf("recurring task must stay open after completion")
	}
	if done.NextDueDate == nil || !done.NextDueDate.Equal(wantDue) {
		t.Fatalf("next due date = %v, want %v", done.NextDueDate, wantDue)
	}
	if len(done.Completions) != 1 {
		t.Fatalf("completion history has %d entries, want 1", len(done.Completions))
	}
	if !done.Completions[0].CompletedAt.Equal(completedAt) {
		t.Fatalf("completion timestamp = %v, want %v", done.Completions[0].CompletedAt, completedAt)
	}
}

func TestCompleteNonRecurringTaskIsTerminal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	due := time.Date(2025, time.June, 10, 10, 0, 0, 0, time.Local)
	task, err := svc.CreateTask(ctx, TaskInput{
		Description: "file taxes",
		DueDate:     recurrence.FormatDueDate(due),
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	done, err := svc.CompleteTask(ctx, task.ID, time.Now())
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	if !done.Completed {
		t.Fatalf("non-recurring task must be closed by completion")
	}
	if !done.DueDate.Equal(due) {
		t.Fatalf("due date changed on terminal completion: %v", done.DueDate)
	}
	if len(done.Completions) != 1 {
		t.Fatalf("completion history has %d entries, want 1", len(done.Completions))
	}
}

func TestCompleteUnrecognizedFrequencyIsTerminal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	due := time.Date(2025, time.June, 10, 10, 0, 0, 0, time.Local)
	task, err := svc.CreateTask(ctx, TaskInput{
		Description: "stretch",
		DueDate:     recurrence.FormatDueDate(due),
		Frequency:   "Fortnightly",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.NextDueDate != nil {
		t.Fatalf("unknown frequency must not precompute a next due date")
	}

	done, err := svc.CompleteTask(ctx, task.ID, time.Now())
	if err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if !done.Completed || !done.DueDate.Equal(due) {
		t.Fatalf("unknown frequency must behave as non-recurring: %+v", done)
	}
}

func TestCompleteAlreadyCompletedTask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{
		Description: "file taxes",
		DueDate:     "2025-06-10T10:00:00",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, task.ID, time.Now()); err != nil {
		t.Fatalf("first CompleteTask: %v", err)
	}
	if _, err := svc.CompleteTask(ctx, task.ID, time.Now()); err == nil {
		t.Fatalf("expected error completing an already-completed task")
	}
}

func TestRepeatedCompletionsAppendHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{
		Description: "take medicine",
		Category:    "health",
		DueDate:     "2025-06-10T08:00:00",
		Frequency:   "Daily",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	base := time.Date(2025, time.June, 10, 8, 5, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		if _, err := svc.CompleteTask(ctx, task.ID, base.AddDate(0, 0, i)); err != nil {
			t.Fatalf("CompleteTask %d: %v", i, err)
		}
	}

	got, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(got.Completions) != 3 {
		t.Fatalf("history has %d entries, want 3", len(got.Completions))
	}
	for i := 1; i < len(got.Completions); i++ {
		if got.Completions[i].CompletedAt.Before(got.Completions[i-1].CompletedAt) {
			t.Fatalf("history out of order: %+v", got.Completions)
		}
	}
	wantDue := time.Date(2025, time.June, 13, 8, 0, 0, 0, time.Local)
	if !got.DueDate.Equal(wantDue) {
		t.Fatalf("due date after 3 daily completions = %v, want %v", got.DueDate, wantDue)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateTask(ctx, TaskInput{DueDate: "2025-06-10"}); err == nil {
		t.Fatalf("expected error for empty description")
	}

	_, err := svc.CreateTask(ctx, TaskInput{Description: "x", DueDate: "not a date"})
	if !errors.Is(err, recurrence.ErrInvalidDate) {
		t.Fatalf("error = %v, want ErrInvalidDate", err)
	}

	if _, err := svc.CreateTask(ctx, TaskInput{
		Description: "x", DueDate: "2025-06-10", Priority: "urgent",
	}); err == nil {
		t.Fatalf("expected error for invalid priority")
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := newTestService(t)

	task, err := svc.CreateTask(context.Background(), TaskInput{
		Description: "buy milk",
		DueDate:     "2025-06-10",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Category != "general" || task.Priority != "medium" {
		t.Fatalf("defaults = %q/%q, want general/medium", task.Category, task.Priority)
	}
}

func TestUpdateTaskRescheduleBypassesRecurrence(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{
		Description: "report",
		DueDate:     "2025-06-10T09:00:00",
		Frequency:   "Weekly Once",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	newDue := "2025-07-01T09:00:00"
	updated, err := svc.UpdateTask(ctx, task.ID, TaskUpdate{DueDate: &newDue})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	wantDue := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.Local)
	if !updated.DueDate.Equal(wantDue) {
		t.Fatalf("due date = %v, want %v", updated.DueDate, wantDue)
	}
	wantNext := wantDue.AddDate(0, 0, 7)
	if updated.NextDueDate == nil || !updated.NextDueDate.Equal(wantNext) {
		t.Fatalf("next due = %v, want %v", updated.NextDueDate, wantNext)
	}

	none := ""
	updated, err = svc.UpdateTask(ctx, task.ID, TaskUpdate{Frequency: &none})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.NextDueDate != nil {
		t.Fatalf("clearing frequency must clear next due date, got %v", updated.NextDueDate)
	}
}

func TestDeleteTask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Description: "temp", DueDate: "2025-06-10"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := svc.GetTask(ctx, task.ID); err == nil {
		t.Fatalf("expected error fetching deleted task")
	}
	if err := svc.DeleteTask(ctx, task.ID); err == nil {
		t.Fatalf("expected error deleting missing task")
	}
}
