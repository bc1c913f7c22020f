package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import tasks from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %q: %w", args[0], err)
			}

			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := a.transfers.Import(context.Background(), data, dryRun)
			if err != nil {
				return err
			}

			mode := "Imported"
			if dryRun {
				mode = "Validated"
			}
			fmt.Printf("%s: %d ok, %d skipped, %d invalid\n",
				mode, summary.SuccessCount, summary.SkippedCount, summary.InvalidCount)
			for _, e := range summary.Errors {
				fmt.Printf("  %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate without storing anything")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write all tasks as JSON to stdout",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, cleanup, err := newApp()
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := a.transfers.Export(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
