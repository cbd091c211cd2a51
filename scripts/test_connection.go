//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"fico-simulator/internal/config"
	"fico-simulator/internal/services/database"
	s3service "fico-simulator/internal/services/s3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🔍 Checking FICO simulator dependencies...")
	fmt.Println()

	fmt.Println("1️⃣  Configuration:")
	show("AWS_REGION", cfg.AWSRegion, false)
	show("S3_BUCKET", cfg.S3Bucket, false)
	show("REPORTS_PREFIX", cfg.ReportsPrefix, false)
	show("RESULTS_PREFIX", cfg.ResultsPrefix, false)
	show("SES_SENDER_EMAIL", cfg.SESSenderEmail, false)
	show("ANALYSIS_WEBHOOK_URL", cfg.AnalysisWebhookURL, true)
	show("DATABASE_URL", os.Getenv("DATABASE_URL"), true)
	fmt.Printf("   ⏱  Session TTL %s, sweep %q, retention %s on %q\n",
		cfg.SessionTTL(), cfg.SessionSweepSchedule, cfg.AnalysisRetention(), cfg.RetentionSchedule)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Println("2️⃣  Database:")
	checkDatabase(ctx, cfg)
	fmt.Println()

	fmt.Println("3️⃣  S3 presigning:")
	svc, err := s3service.NewService(ctx, cfg)
	if err != nil {
		fmt.Printf("   ❌ AWS config: %v\n", err)
	} else if res, err := svc.PresignReportUpload(ctx, "connection-check.json", 1); err != nil {
		fmt.Printf("   ❌ Presign failed: %v\n", err)
	} else {
		fmt.Printf("   ✅ Presigned %s\n", res.Key)
	}
	fmt.Println()

	fmt.Println("✅ Connection checks complete!")
}

func show(name, value string, sensitive bool) {
	if value == "" {
		fmt.Printf("   ❌ %s: NOT SET\n", name)
		return
	}
	if sensitive && len(value) > 12 {
		value = value[:8] + "..." + value[len(value)-4:]
	}
	fmt.Printf("   ✅ %s: %s\n", name, value)
}

func checkDatabase(ctx context.Context, cfg *config.Config) {
	var (
		db  *database.DB
		err error
	)
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err = database.NewFromURL(url)
	} else {
		db, err = database.New(cfg)
	}
	if err != nil {
		fmt.Printf("   ❌ Database connection failed: %v\n", err)
		return
	}
	defer db.Close()

	if err := db.HealthCheck(ctx); err != nil {
		fmt.Printf("   ❌ Database ping failed: %v\n", err)
		return
	}
	fmt.Println("   ✅ Database connection successful!")

	var tableCount int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN ('analyses', 'analysis_goals')
	`).Scan(&tableCount)
	if err == nil {
		fmt.Printf("   📊 Tables found: %d/2 (analyses, analysis_goals)\n", tableCount)
	}
}
