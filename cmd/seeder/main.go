package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Sanjit42/naming-service/internal/bootstrap"
	"github.com/Sanjit42/naming-service/internal/database"
	"github.com/Sanjit42/naming-service/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large, xlarge")
	batches := flag.Int("batches", 0, "Number of batches (overrides preset)")
	interns := flag.Int("interns", 0, "Number of interns per batch (overrides preset)")
	firstEmpID := flag.Int64("first-emp-id", 10000, "First employee id handed out")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	yes := flag.Bool("yes", false, "Do not ask for confirmation before clearing")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("🚀 Intern Roster Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	fmt.Println("📡 Initializing application...")
	app := bootstrap.NewApp()
	app.LoadConfig(ctx)
	if err := app.Build(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		log.Fatal(err)
	}
	defer app.Close()

	seeder := database.NewDataSeeder(app.Store, app.Batches, *seed, os.Stdout)

	// Execute action
	switch *action {
	case "seed":
		performSeed(ctx, app, seeder, *preset, *batches, *interns, *firstEmpID)

	case "clear":
		performClear(ctx, seeder, *yes)

	default:
		fmt.Printf("❌ Unknown action: %s\n", *action)
		flag.PrintDefaults()
		os.Exit(2)
	}

	fmt.Println("\n✅ Done!")
}

func performSeed(ctx context.Context, app *bootstrap.App, seeder *database.DataSeeder, preset string, batches, interns int, firstEmpID int64) {
	var numBatches, numInterns int

	// Determine configuration
	if batches > 0 && interns > 0 {
		numBatches, numInterns = batches, interns
		fmt.Printf("📊 Using custom configuration: %d batches, %d interns per batch\n", numBatches, numInterns)
	} else {
		numBatches, numInterns = database.GetPresetConfig(database.SeedPreset(preset))
		fmt.Printf("📊 Using preset: %s\n", preset)
	}

	stats, err := seeder.SeedData(ctx, numBatches, numInterns, firstEmpID)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	fmt.Printf("📦 %d batches, %d interns created, %d emp ids skipped\n", stats.Batches, stats.Interns, stats.Skipped)

	// Seeded interns bypass the import service, so the index is refreshed here.
	if r := app.Reindexer(); r != nil {
		n, err := r.Reindex(ctx)
		if err != nil {
			log.Fatalf("❌ Reindex failed: %v", err)
		}
		fmt.Printf("🔎 Reindexed %d interns\n", n)
	}
}

func performClear(ctx context.Context, seeder *database.DataSeeder, yes bool) {
	if !yes {
		fmt.Println("⚠️  This will delete all interns!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("❌ Clear failed: %v", err)
	}
}
