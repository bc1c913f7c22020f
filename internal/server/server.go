// Package server exposes the planner over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskvoice/internal/announce"
	"taskvoice/internal/service"
)

// NextAnnouncer reports when the next daily announcement fires.
type NextAnnouncer interface {
	NextAnnouncementAt(now time.Time) *time.Time
}

// Server wires the HTTP routes to the task and transfer services.
type Server struct {
	router    *gin.Engine
	tasks     *service.TaskService
	transfers *service.TransferService
	announcer NextAnnouncer
	addr      string
}

func New(addr string, tasks *service.TaskService, transfers *service.TransferService, announcer NextAnnouncer) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware(), metricsMiddleware())

	s := &Server{
		router:    router,
		tasks:     tasks,
		transfers: transfers,
		announcer: announcer,
		addr:      addr,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/complete", s.handleCompleteTask)
		api.POST("/tasks/import", s.handleImport)
		api.GET("/tasks/export", s.handleExport)
		api.GET("/announcements/summary", s.handleAnnouncementSummary)
		api.GET("/announcements/next", s.handleNextAnnouncement)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] http server listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleNextAnnouncement(c *gin.Context) {
	next := s.announcer.NextAnnouncementAt(time.Now())
	if next == nil {
		c.JSON(http.StatusOK, gin.H{"next": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"next":      next.Format("2006-01-02T15:04:05"),
		"trigger":   next.Format("15:04"),
		"inSeconds": int(time.Until(*next).Seconds()),
	})
}

func (s *Server) handleAnnouncementSummary(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, announce.BuildSummary(tasks, time.Now()))
}
