package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ruslano69/xlmerge/pkg/history"
)

// runHistory обслуживает подкоманды каталога объединений.
func runHistory(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("history: subcommand required (list/delete/clear)")
	}
	sub, rest := args[0], args[1:]

	fs := flag.NewFlagSet("history "+sub, flag.ExitOnError)
	dbPath := fs.String("db", "merged_history.db", "path to history database")
	id := fs.Int64("id", 0, "record id (for delete)")
	files := fs.Bool("files", false, "also delete artifact files")
	fs.Parse(rest)

	repo, err := history.OpenSQLite(*dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()

	switch sub {
	case "list":
		records, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("history is empty")
			return nil
		}
		for _, rec := range records {
			colored := rec.ColoredPath
			if colored == "" {
				colored = "-"
			}
			fmt.Printf("[%d] %s - %d×%d (%s)\n    clean:   %s\n    colored: %s\n",
				rec.ID, rec.BaseName, rec.Rows, rec.Cols, rec.CreatedAt, rec.CleanPath, colored)
		}
		return nil

	case "delete":
		if *id == 0 {
			return fmt.Errorf("history delete: --id is required")
		}
		if err := repo.Delete(ctx, *id, *files); err != nil {
			return err
		}
		fmt.Printf("record %d deleted\n", *id)
		return nil

	case "clear":
		if err := repo.Clear(ctx, *files); err != nil {
			return err
		}
		fmt.Println("history cleared")
		return nil

	default:
		return fmt.Errorf("history: unknown subcommand %q", sub)
	}
}
