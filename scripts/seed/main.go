// Seed creates an admin account, a few events, and a starter checklist.
// Run from project root: go run ./scripts/seed
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"race-weekend-api/internal/database"
	"race-weekend-api/internal/identity"
	"race-weekend-api/internal/models"
	"race-weekend-api/internal/repository"
)

func main() {
	loadEnvFile(".env")

	ctx := context.Background()
	db := database.InitDB(ctx)
	if db == nil {
		fmt.Fprintln(os.Stderr, "DATABASE_URL not set or DB connection failed")
		os.Exit(1)
	}
	if err := database.MigrateOrCreateSchema(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	admin, err := repository.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Lookup admin failed:", err)
		os.Exit(1)
	}
	if admin == nil {
		hash, err := identity.HashPassword("Adm1n-Pa55word!")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Hash failed:", err)
			os.Exit(1)
		}
		admin, err = repository.CreateUser(ctx, "admin@example.com", hash, string(identity.RoleAdmin))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Create admin failed:", err)
			os.Exit(1)
		}
		fmt.Println("Created admin@example.com (password Adm1n-Pa55word!)")
	}

	events := []models.Event{
		{Name: "NCM Track Day", TrackName: "NCM Motorsports Park", City: "Bowling Green", State: "KY",
			EventDate: time.Now().AddDate(0, 1, 0)},
		{Name: "Barber Fall Classic", TrackName: "Barber Motorsports Park", City: "Birmingham", State: "AL",
			EventDate: time.Now().AddDate(0, 2, 0)},
	}
	for i := range events {
		if err := repository.CreateEvent(ctx, &events[i]); err != nil {
			fmt.Fprintln(os.Stderr, "Create event failed:", err)
			os.Exit(1)
		}
	}

	checklist := []models.Task{
		{EventID: events[0].ID, Title: "Bleed brakes", Category: "prep", Priority: 1},
		{EventID: events[0].ID, Title: "Pack tire pressure gauge", Category: "pit", Priority: 3},
		{EventID: events[0].ID, Title: "Inspect harness dates", Category: "safety", Priority: 1, AssigneeID: &admin.ID},
		{EventID: events[1].ID, Title: "Book hotel near track", Category: "travel", Priority: 2},
		{EventID: events[1].ID, Title: "Update data logger firmware", Category: "tech", Priority: 4},
	}
	for i := range checklist {
		if err := repository.CreateTask(ctx, &checklist[i]); err != nil {
			fmt.Fprintln(os.Stderr, "Create task failed:", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Seeded %d events and %d tasks\n", len(events), len(checklist))
}

func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) {
			val = strings.Trim(val, `"`)
		} else if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
			val = strings.Trim(val, "'")
		}
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
