package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"taskvoice/internal/repository"
)

func newTestTransfer(t *testing.T) (*TransferService, *TaskService) {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	repo := repository.NewTaskRepository(db)
	return NewTransferService(repo), NewTaskService(repo)
}

func TestImportCountsValidAndInvalid(t *testing.T) {
	transfers, _ := newTestTransfer(t)

	data := []byte(`[
		{"description": "water plants", "category": "todo", "dueDate": "2025-06-10T10:00:00", "frequency": "Daily"},
		{"description": "", "dueDate": "2025-06-10T10:00:00"},
		{"description": "bad date", "dueDate": "whenever"}
	]`)

	summary, err := transfers.Import(context.Background(), data, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.SuccessCount != 1 || summary.InvalidCount != 2 || summary.SkippedCount != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.Errors) != 2 {
		t.Fatalf("errors = %v", summary.Errors)
	}
}

func TestImportSkipsExistingIDs(t *testing.T) {
	transfers, tasks := newTestTransfer(t)
	ctx := context.Background()

	if _, err := tasks.CreateTask(ctx, TaskInput{Description: "existing", DueDate: "2025-06-10"}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	exported, err := transfers.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	summary, err := transfers.Import(ctx, exported, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.SkippedCount != 1 || summary.SuccessCount != 0 {
		t.Fatalf("re-import summary = %+v, want 1 skipped", summary)
	}
}

func TestImportDryRunStoresNothing(t *testing.T) {
	transfers, tasks := newTestTransfer(t)
	ctx := context.Background()

	data := []byte(`[{"description": "ephemeral", "dueDate": "2025-06-10T10:00:00"}]`)
	summary, err := transfers.Import(ctx, data, true)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.SuccessCount != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	stored, err := tasks.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("dry run stored %d tasks", len(stored))
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	transfers, _ := newTestTransfer(t)

	if _, err := transfers.Import(context.Background(), []byte(`{"description": "x"}`), false); err == nil {
		t.Fatalf("expected error for non-array payload")
	}
}

func TestExportRoundTrip(t *testing.T) {
	transfers, tasks := newTestTransfer(t)
	ctx := context.Background()

	created, err := tasks.CreateTask(ctx, TaskInput{
		Description: "water plants",
		Category:    "todo",
		DueDate:     "2025-06-10T10:00:00",
		Frequency:   "Weekly Once",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := tasks.CompleteTask(ctx, created.ID, created.DueDate); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	exported, err := transfers.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var records []TaskRecord
	if err := json.Unmarshal(exported, &records); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("export has %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Description != "water plants" || rec.Frequency != "Weekly Once" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.DueDate != "2025-06-17T10:00:00" {
		t.Fatalf("exported due date = %q, want advanced occurrence", rec.DueDate)
	}
	if len(rec.CompletionHistory) != 1 {
		t.Fatalf("completion history = %v", rec.CompletionHistory)
	}
}
