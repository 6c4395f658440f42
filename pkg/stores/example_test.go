package stores_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/solvenv/solvenv/pkg/stores"
)

// ExampleNewSQLiteStore demonstrates creating and initializing a new SQLite store.
func ExampleNewSQLiteStore() {
	store, err := stores.NewSQLiteStore(stores.Config{
		Path: ":memory:", // Use in-memory database for example
	})
	if err != nil {
		log.Fatal(err)
	}

	// Initialize the database connection
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	// Store is now ready to use
	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleSQLiteStore_CreateRun demonstrates recording a solve run.
func ExampleSQLiteStore_CreateRun() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	// Create a run in running state
	run := &stores.Run{
		ID:        "run-001",
		Backend:   "dense",
		Problem:   "factory",
		Status:    stores.RunStatusRunning,
		StartedAt: time.Now(),
		CreatedAt: time.Now(),
	}
	if err := store.CreateRun(ctx, run); err != nil {
		log.Fatal(err)
	}

	// Record the outcome
	objective := 36.0
	if err := store.CompleteRun(ctx, run.ID, stores.RunStatusOptimal, &objective, 3, 12*time.Millisecond, nil); err != nil {
		log.Fatal(err)
	}

	retrieved, err := store.GetRun(ctx, "run-001")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Run ID: %s, Status: %s, Objective: %.0f\n", retrieved.ID, retrieved.Status, *retrieved.Objective)
	// Output: Run ID: run-001, Status: optimal, Objective: 36
}

// ExampleSQLiteStore_CreateSweep demonstrates grouping runs under a sweep.
func ExampleSQLiteStore_CreateSweep() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	sweep := &stores.Sweep{
		ID:        "sweep-001",
		Backend:   "dense",
		Problem:   "factory",
		Param:     "demand",
		Points:    2,
		CreatedAt: time.Now(),
	}
	if err := store.CreateSweep(ctx, sweep); err != nil {
		log.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		run := &stores.Run{
			ID:        fmt.Sprintf("run-%03d", i),
			Backend:   "dense",
			Problem:   "factory",
			SweepID:   &sweep.ID,
			Status:    stores.RunStatusOptimal,
			StartedAt: time.Now().Add(time.Duration(i) * time.Second),
			CreatedAt: time.Now(),
		}
		_ = store.CreateRun(ctx, run)
	}

	runs, err := store.ListSweepRuns(ctx, sweep.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Sweep runs: %d\n", len(runs))
	// Output: Sweep runs: 2
}
