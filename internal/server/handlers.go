package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskvoice/internal/model"
	"taskvoice/internal/recurrence"
	"taskvoice/internal/service"
)

// maxImportSize caps import payloads at 10 MB.
const maxImportSize = 10 << 20

type createTaskRequest struct {
	Description    string                  `json:"description" binding:"required"`
	Category       string                  `json:"category"`
	Priority       string                  `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate        string                  `json:"dueDate" binding:"required"`
	Frequency      string                  `json:"frequency"`
	ReminderOffset *int                    `json:"reminderOffset"`
	Reminders      []service.ReminderInput `json:"reminders" binding:"omitempty,dive"`
}

type updateTaskRequest struct {
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	Priority       *string `json:"priority" binding:"omitempty"`
	DueDate        *string `json:"dueDate"`
	Frequency      *string `json:"frequency"`
	ReminderOffset *int    `json:"reminderOffset"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}

	filtered := filterTasks(tasks, c.Query("due_date"), c.Query("status"), c.Query("category"), time.Now())
	filtered = paginate(filtered, c.Query("limit"), c.Query("offset"))

	records := make([]service.TaskRecord, 0, len(filtered))
	for _, t := range filtered {
		records = append(records, service.RecordFromTask(t))
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), service.TaskInput{
		Description:    req.Description,
		Category:       req.Category,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		Frequency:      req.Frequency,
		ReminderOffset: req.ReminderOffset,
		Reminders:      req.Reminders,
	})
	if err != nil {
		badRequestOrInternal(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.RecordFromTask(*task))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), id, service.TaskUpdate{
		Description:    req.Description,
		Category:       req.Category,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		Frequency:      req.Frequency,
		ReminderOffset: req.ReminderOffset,
	})
	if err != nil {
		notFoundOrBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, service.RecordFromTask(*task))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := s.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		notFoundOrBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	id, err := taskID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := s.tasks.CompleteTask(c.Request.Context(), id, time.Now())
	if err != nil {
		notFoundOrBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, service.RecordFromTask(*task))
}

func (s *Server) handleImport(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read request body"})
		return
	}
	if len(data) > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "import file too large"})
		return
	}

	dryRun := c.Query("dry_run") == "true"
	summary, err := s.transfers.Import(c.Request.Context(), data, dryRun)
	if err != nil {
		badRequestOrInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleExport(c *gin.Context) {
	data, err := s.transfers.Export(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}

	filename := fmt.Sprintf("tasks_export_%s.json", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", data)
}

func taskID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", c.Param("id"))
	}
	return uint(id), nil
}

// filterTasks applies the query-string filters from the tasks endpoint.
func filterTasks(tasks []model.Task, dueDate, status, category string, now time.Time) []model.Task {
	today := startOfDay(now)
	filtered := tasks

	switch dueDate {
	case "today":
		filtered = keep(filtered, func(t model.Task) bool { return sameDate(t.DueDate, now) })
	case "tomorrow":
		filtered = keep(filtered, func(t model.Task) bool { return sameDate(t.DueDate, now.AddDate(0, 0, 1)) })
	}

	switch status {
	case "due":
		filtered = keep(filtered, func(t model.Task) bool {
			return !t.Completed && !startOfDay(t.DueDate).After(today)
		})
	case "overdue":
		filtered = keep(filtered, func(t model.Task) bool { return !t.Completed && t.DueDate.Before(now) })
	case "completed":
		filtered = keep(filtered, func(t model.Task) bool { return t.Completed })
	}

	if category != "" {
		filtered = keep(filtered, func(t model.Task) bool {
			return strings.EqualFold(t.Category, category)
		})
	}

	return filtered
}

func paginate(tasks []model.Task, limitStr, offsetStr string) []model.Task {
	if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
		if offset >= len(tasks) {
			return nil
		}
		tasks = tasks[offset:]
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks
}

func keep(tasks []model.Task, pred func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// badRequestOrInternal maps validation failures (bad dates, bad priorities)
// to 400 and everything else to 500.
func badRequestOrInternal(c *gin.Context, err error) {
	if errors.Is(err, recurrence.ErrInvalidDate) || isValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	internalError(c, err)
}

func notFoundOrBadRequest(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	badRequestOrInternal(c, err)
}

func isValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid priority") ||
		strings.Contains(msg, "already completed") ||
		strings.Contains(msg, "parse import file")
}
