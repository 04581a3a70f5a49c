// Seed adds sample todos through the REST API. Run from project root: go run ./scripts/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"todo-sync/internal/client"
	"todo-sync/internal/config"
	"todo-sync/internal/models"

	"github.com/samber/lo"
)

func main() {
	total := flag.Int("n", 20, "number of todos to create")
	doneEvery := flag.Int("done-every", 3, "mark every Nth todo completed (0 disables)")
	flag.Parse()

	config.LoadEnvFile(".env")
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	api := client.New(cfg.APIURL, cfg.Timeout)
	start := time.Now()

	for i := 1; i <= *total; i++ {
		todo, err := api.Create(ctx, fmt.Sprintf("Todo %d", i))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Create failed:", err)
			os.Exit(1)
		}
		if *doneEvery > 0 && i%*doneEvery == 0 {
			if _, err := api.Update(ctx, todo.ID, models.TodoPatch{Completed: lo.ToPtr(true)}); err != nil {
				fmt.Fprintln(os.Stderr, "Update failed:", err)
				os.Exit(1)
			}
		}
		fmt.Printf("\rCreated %d / %d", i, *total)
	}

	fmt.Printf("\nDone: %d todos in %v\n", *total, time.Since(start))
}
