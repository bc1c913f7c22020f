package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskvoice/internal/config"
	"taskvoice/internal/repository"
	"taskvoice/internal/service"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskvoice",
		Short: "Personal task planner with spoken reminders",
		Long:  "taskvoice manages one-off and recurring tasks and announces what is due out loud.",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd(), importCmd(), exportCmd(), announceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the pieces every subcommand needs.
type app struct {
	cfg       config.Config
	db        *gorm.DB
	taskRepo  *repository.TaskRepository
	tasks     *service.TaskService
	transfers *service.TransferService
}

func newApp() (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	taskRepo := repository.NewTaskRepository(db)
	return &app{
		cfg:       cfg,
		db:        db,
		taskRepo:  taskRepo,
		tasks:     service.NewTaskService(taskRepo),
		transfers: service.NewTransferService(taskRepo),
	}, cleanup, nil
}
