package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskvoice/internal/model"
)

// TaskRepository handles CRUD for tasks and their completion history.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// List returns every task, completion history included, ordered by due date.
func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Completions", func(db *gorm.DB) *gorm.DB {
			return db.Order("completed_at ASC")
		}).
		Preload("Reminders").
		Order("due_date ASC, created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListOpen returns the not-completed tasks, the set the announcement
// scheduler evaluates.
func (r *TaskRepository) ListOpen(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("completed = ?", false).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Completions", func(db *gorm.DB) *gorm.DB {
			return db.Order("completed_at ASC")
		}).
		Preload("Reminders").
		First(&task, taskID).Error
	if err != nil {
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// RecordCompletion appends a completion history row and persists the task's
// updated scheduling fields in one transaction. History rows are append-only.
func (r *TaskRepository) RecordCompletion(ctx context.Context, task *model.Task, completedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := model.Completion{TaskID: task.ID, CompletedAt: completedAt}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("record completion: %w", err)
		}
		if err := tx.Omit("Completions", "Reminders").Save(task).Error; err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		task.Completions = append(task.Completions, entry)
		return nil
	})
}

// Delete removes a task and, via FK cascade, its history and reminders.
func (r *TaskRepository) Delete(ctx context.Context, taskID uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, taskID)
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %d: %w", taskID, gorm.ErrRecordNotFound)
	}
	return nil
}

// ExistingIDs returns the set of stored task IDs, used to skip duplicates on
// import.
func (r *TaskRepository) ExistingIDs(ctx context.Context) (map[uint]bool, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list task ids: %w", err)
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
