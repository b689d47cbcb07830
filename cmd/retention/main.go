// Command retention removes photos older than the configured retention
// period, deleting the stored blob before the database row. Run it from cron
// when the server's daily sweep is not enough, or with -dry-run to preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"daycaremoments/internal/config"
	"daycaremoments/internal/database"
	"daycaremoments/internal/provider"
	"daycaremoments/internal/repository"
	"daycaremoments/internal/service"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "List expired photos without deleting anything")
	days := flag.Int("days", 0, "Override PHOTO_RETENTION_DAYS from the environment")
	flag.Parse()

	cfg := config.Load()
	if *days > 0 {
		cfg.PhotoRetentionDays = *days
	}
	if cfg.PhotoRetentionDays <= 0 {
		fmt.Println("Retention is disabled (PHOTO_RETENTION_DAYS <= 0), nothing to do")
		os.Exit(0)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	providers, err := provider.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize providers: %v", err)
	}

	photoRepo := repository.NewPhotoRepository(db)

	if *dryRun {
		cutoff := time.Now().AddDate(0, 0, -cfg.PhotoRetentionDays)
		photos, err := photoRepo.GetOlderThan(cutoff)
		if err != nil {
			log.Fatalf("Failed to list expired photos: %v", err)
		}
		for _, p := range photos {
			fmt.Printf("%s\t%s\t%s\n", p.ID, p.UploadedAt.Format(time.RFC3339), p.StoragePath)
		}
		fmt.Printf("%d photos older than %d days\n", len(photos), cfg.PhotoRetentionDays)
		return
	}

	photoService := service.NewPhotoService(service.PhotoServiceConfig{
		PhotoRepo:     photoRepo,
		ChildRepo:     repository.NewChildRepository(db),
		OrgRepo:       repository.NewOrganizationRepository(db),
		UserRepo:      repository.NewUserRepository(db),
		Store:         providers.Storage(),
		LLM:           providers.LLM(),
		Notifier:      providers.Notifier(),
		RetentionDays: cfg.PhotoRetentionDays,
	})

	removed, err := photoService.SweepExpired(ctx)
	if err != nil {
		log.Fatalf("Retention sweep failed: %v", err)
	}
	fmt.Printf("Removed %d photos older than %d days\n", removed, cfg.PhotoRetentionDays)
}
