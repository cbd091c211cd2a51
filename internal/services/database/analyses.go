package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fico-simulator/internal/models"
)

// Listing bounds.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// AnalysisRepository handles analysis database operations.
type AnalysisRepository struct {
	db *DB
}

// NewAnalysisRepository creates a new analysis repository.
func NewAnalysisRepository(db *DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create stores an analysis and its goals in one transaction.
func (r *AnalysisRepository) Create(ctx context.Context, a *models.Analysis) error {
	profileJSON, err := json.Marshal(a.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	categoriesJSON, err := json.Marshal(a.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	adviceJSON, err := json.Marshal(a.Advice)
	if err != nil {
		return fmt.Errorf("failed to encode advice: %w", err)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO analyses (
				id, source, source_key, email, baseline_score,
				payment_history_status, amounts_owed_status, utilization_percent,
				profile, categories, advice, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID.String(),
			string(a.Source),
			a.SourceKey,
			a.Email,
			a.BaselineScore,
			string(a.Categories.PaymentHistory.Status),
			string(a.Categories.AmountsOwed.Status),
			a.Categories.AmountsOwed.OverallUtilization,
			profileJSON,
			categoriesJSON,
			adviceJSON,
			a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert analysis: %w", err)
		}

		for i := range a.Goals {
			goal := &a.Goals[i]
			planJSON, err := json.Marshal(goal.ActionPlan)
			if err != nil {
				return fmt.Errorf("failed to encode action plan for goal %s: %w", goal.ID, err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO analysis_goals (
					analysis_id, position, goal_id, title, category,
					timeframe_months, total_impact, title_consistent, action_plan
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				a.ID.String(),
				i,
				goal.ID,
				goal.Title,
				string(goal.Category),
				goal.TimeframeMonths,
				goal.TotalImpact(),
				goal.TitleConsistent(),
				planJSON,
			)
			if err != nil {
				return fmt.Errorf("failed to insert goal %s: %w", goal.ID, err)
			}
		}

		return nil
	})
}

// GetByID retrieves an analysis with its goals. It returns
// models.ErrAnalysisNotFound when no row matches.
func (r *AnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	query := `
		SELECT source, source_key, email, baseline_score, profile, categories, advice, created_at
		FROM analyses
		WHERE id = $1`

	a := &models.Analysis{ID: id}
	var source string
	var profileJSON, categoriesJSON, adviceJSON []byte

	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&source,
		&a.SourceKey,
		&a.Email,
		&a.BaselineScore,
		&profileJSON,
		&categoriesJSON,
		&adviceJSON,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	a.Source = models.AnalysisSource(source)
	if err := json.Unmarshal(profileJSON, &a.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := json.Unmarshal(categoriesJSON, &a.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if err := json.Unmarshal(adviceJSON, &a.Advice); err != nil {
		return nil, fmt.Errorf("failed to decode advice: %w", err)
	}

	goals, err := r.goalsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Goals = goals

	return a, nil
}

func (r *AnalysisRepository) goalsFor(ctx context.Context, id uuid.UUID) ([]models.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT goal_id, title, category, timeframe_months, action_plan
		FROM analysis_goals
		WHERE analysis_id = $1
		ORDER BY position`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		var g models.Goal
		var category string
		var planJSON []byte

		if err := rows.Scan(&g.ID, &g.Title, &category, &g.TimeframeMonths, &planJSON); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if err := json.Unmarshal(planJSON, &g.ActionPlan); err != nil {
			return nil, fmt.Errorf("failed to decode action plan for goal %s: %w", g.ID, err)
		}

		g.Category = models.GoalCategory(category)
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

// List returns analysis summaries, newest first.
func (r *AnalysisRepository) List(ctx context.Context, limit, offset int) ([]models.AnalysisSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.source, a.baseline_score, a.created_at,
		       (SELECT COUNT(*) FROM analysis_goals g WHERE g.analysis_id = a.id)
		FROM analyses a
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	summaries := []models.AnalysisSummary{}
	for rows.Next() {
		var s models.AnalysisSummary
		var id, source string

		if err := rows.Scan(&id, &source, &s.BaselineScore, &s.CreatedAt, &s.GoalCount); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		s.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid analysis id %q: %w", id, err)
		}
		s.Source = models.AnalysisSource(source)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// DeleteOlderThan purges analyses created before cutoff. Goals cascade.
func (r *AnalysisRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.db.ExecContext(ctx, `DELETE FROM analyses WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge analyses: %w", err)
	}
	return n, nil
}
