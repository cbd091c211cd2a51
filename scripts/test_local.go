//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/analyzer"
	"fico-simulator/internal/services/database"
	"fico-simulator/internal/services/simulator"
	"fico-simulator/internal/utils"
)

// Usage: go run scripts/test_local.go [tradelines.csv] [inquiries]
func main() {
	fmt.Println("=== FICO Simulator - Local Test ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	path := "data/sample_tradelines.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	inquiries := 1
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil {
			inquiries = n
		}
	}

	fmt.Printf("📖 Parsing %s...\n", path)
	csvContent, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Failed to read CSV: %v\n", err)
		os.Exit(1)
	}

	imported, parseErrors := utils.NewCSVParser().ParseTradelines(string(csvContent))
	for _, e := range parseErrors {
		fmt.Printf("⚠️  %v\n", e)
	}
	if imported == nil {
		os.Exit(1)
	}
	fmt.Printf("✅ Parsed %d tradelines\n", len(imported.Accounts))

	a := analyzer.New()
	profile := imported.Profile(inquiries)
	result := a.Score(profile)

	fmt.Println()
	fmt.Printf("📊 Estimated score: %d\n", result.Score)
	fmt.Printf("   %s\n", result.Advice.CurrentState.Summary)
	fmt.Printf("   Payment history:   %s\n", result.Advice.ImpactBreakdown.PaymentHistory)
	fmt.Printf("   Amounts owed:      %s\n", result.Advice.ImpactBreakdown.AmountsOwed)
	fmt.Printf("   Length of history: %s\n", result.Advice.ImpactBreakdown.LengthOfHistory)
	fmt.Printf("   New credit:        %s\n", result.Advice.ImpactBreakdown.NewCredit)
	fmt.Printf("   Credit mix:        %s\n", result.Advice.ImpactBreakdown.CreditMix)
	fmt.Printf("   Expected %d, best case %d within %s\n",
		result.Advice.ProjectedOutcomes.ExpectedScore,
		result.Advice.ProjectedOutcomes.BestCaseScore,
		result.Advice.ProjectedOutcomes.Timeframe)

	// Walk a sample goal through the simulator
	plan := []models.ActionStep{
		{Description: "Pay revolving balances below 30% of limits", Impact: 10},
		{Description: "Keep every account current", Impact: 5},
		{Description: "Skip new applications for six months", Impact: 3},
	}
	goal := models.Goal{
		ID:              "local-1",
		Category:        models.GoalCategoryAmountsOwed,
		TimeframeMonths: 6,
		ActionPlan:      plan,
	}
	goal.Title = models.BuildGoalTitle(goal.TotalImpact())

	session := simulator.NewSession(goal, profile, result.Score, simulator.WithScorer(a.Engine()))
	fmt.Println()
	fmt.Printf("🎯 %s\n", goal.Title)
	for !session.Completed() {
		session.Advance()
		view := session.View()
		fmt.Printf("   Step %d/%d: score %d, badges %v\n",
			view.CurrentStep, view.TotalSteps, view.ScoreHistory[len(view.ScoreHistory)-1], view.Badges)
	}
	fmt.Printf("   Projected score with completed plan: %d\n", session.ProjectedScore())

	// Optionally persist the analysis
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println()
		fmt.Println("ℹ️  DATABASE_URL not set, skipping persistence")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewFromURL(databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	analysis := models.NewAnalysis(models.AnalysisSourceCSV, profile, []models.Goal{goal})
	analysis.SourceKey = path
	analysis.Categories = result.Categories
	analysis.BaselineScore = result.Score
	analysis.Advice = result.Advice

	if err := database.NewAnalysisRepository(db).Create(ctx, analysis); err != nil {
		fmt.Printf("❌ Failed to save analysis: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Printf("✅ Saved analysis %s\n", analysis.ID)
}
