// Package analyzer turns extracted credit reports into scored analyses.
package analyzer

import (
	"fmt"
	"strings"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/advisor"
	"fico-simulator/internal/services/scoring"
)

// ScoreResult is the synchronous score estimate for a profile.
type ScoreResult struct {
	Score      int                    `json:"score"`
	Categories models.CategoryProfile `json:"categories"`
	Advice     models.Advice          `json:"advice"`
	Profile    *models.CreditProfile  `json:"credit_profile"`
}

// Analyzer scores profiles and assembles analyses.
type Analyzer struct {
	engine *scoring.Engine
}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{engine: scoring.NewEngine()}
}

// Engine exposes the score engine, which simulator sessions use as their scorer.
func (a *Analyzer) Engine() *scoring.Engine {
	return a.engine
}

// Score estimates a profile and generates advice for it.
func (a *Analyzer) Score(profile *models.CreditProfile) ScoreResult {
	if profile == nil {
		profile = &models.CreditProfile{}
	}
	categories := a.engine.ComputeCategoryProfile(profile)
	return ScoreResult{
		Score:      categories.BaselineScore,
		Categories: categories,
		Advice:     advisor.Generate(categories),
		Profile:    profile,
	}
}

// Analyze builds a full analysis from a request. The request must carry a
// credit_data object.
func (a *Analyzer) Analyze(source models.AnalysisSource, req *models.AnalysisRequest) (*models.Analysis, error) {
	if req == nil || req.CreditData == nil {
		return nil, models.ErrMissingCreditData
	}

	result := a.Score(req.Profile())
	analysis := models.NewAnalysis(source, result.Profile, req.Goals())
	analysis.Email = strings.TrimSpace(req.Email)
	analysis.Categories = result.Categories
	analysis.BaselineScore = result.Score
	analysis.Advice = result.Advice
	return analysis, nil
}

// InvalidGoals reports the goals that fail validation, keyed by goal ID or
// position when the ID is missing.
func InvalidGoals(goals []models.Goal) map[string]error {
	invalid := make(map[string]error)
	for i := range goals {
		if err := models.ValidateGoal(&goals[i]); err != nil {
			key := goals[i].ID
			if key == "" {
				key = fmt.Sprintf("#%d", i)
			}
			invalid[key] = err
		}
	}
	return invalid
}
