// Package models defines the data structures for the FICO score simulator.
package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisSource indicates where an analyzed report came from.
type AnalysisSource string

const (
	AnalysisSourceAPI    AnalysisSource = "api"
	AnalysisSourceS3     AnalysisSource = "s3"
	AnalysisSourceCSV    AnalysisSource = "csv_import"
	AnalysisSourceLambda AnalysisSource = "lambda"
)

// Analysis is a scored credit report together with its goals and advice.
type Analysis struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Source        AnalysisSource  `json:"source" db:"source"`
	SourceKey     string          `json:"source_key,omitempty" db:"source_key"`
	Email         string          `json:"email,omitempty" db:"email"`
	Profile       *CreditProfile  `json:"credit_profile" db:"profile"`
	Goals         []Goal          `json:"goals" db:"goals"`
	Categories    CategoryProfile `json:"categories" db:"categories"`
	Advice        Advice          `json:"advice" db:"advice"`
	BaselineScore int             `json:"baseline_score" db:"baseline_score"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// NewAnalysis stamps a fresh ID and creation time.
func NewAnalysis(source AnalysisSource, profile *CreditProfile, goals []Goal) *Analysis {
	if goals == nil {
		goals = []Goal{}
	}
	return &Analysis{
		ID:        uuid.New(),
		Source:    source,
		Profile:   profile,
		Goals:     goals,
		CreatedAt: time.Now().UTC(),
	}
}

// AnalysisSummary is a lightweight view for listings.
type AnalysisSummary struct {
	ID            uuid.UUID      `json:"id"`
	Source        AnalysisSource `json:"source"`
	BaselineScore int            `json:"baseline_score"`
	GoalCount     int            `json:"goal_count"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ToSummary converts an Analysis to AnalysisSummary.
func (a *Analysis) ToSummary() AnalysisSummary {
	return AnalysisSummary{
		ID:            a.ID,
		Source:        a.Source,
		BaselineScore: a.BaselineScore,
		GoalCount:     len(a.Goals),
		CreatedAt:     a.CreatedAt,
	}
}

// AnalysisRequest is the envelope accepted by the HTTP API and the report
// processor: an extraction result plus an optional address to email the
// summary to.
type AnalysisRequest struct {
	AnalyzeResponse
	Email string `json:"email,omitempty"`
}
