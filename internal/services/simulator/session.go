// Package simulator walks a goal's action plan step by step, layering the
// completed steps' point impacts on top of a live what-if score.
package simulator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/adjuster"
	"fico-simulator/internal/services/scoring"
)

// Badge is an achievement awarded while stepping through a plan.
type Badge string

const (
	BadgeGoalCompleted Badge = "Goal Completed"
	BadgeGreatProgress Badge = "Great Progress"
)

// GreatProgressThreshold is the step impact a single step must exceed to
// earn BadgeGreatProgress.
const GreatProgressThreshold = 8

// Scorer computes a score for a profile.
type Scorer interface {
	ComputeScore(profile *models.CreditProfile) int
}

// CalendarEntry is one month of the plan calendar. Description and Score are
// set only once the step for that slot has been completed.
type CalendarEntry struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Score       int    `json:"score,omitempty"`
	Completed   bool   `json:"completed"`
}

// Snapshot captures the projected score and adjustments at a point in time.
type Snapshot struct {
	ID          uuid.UUID                `json:"id"`
	Score       int                      `json:"score"`
	Adjustments models.ManualAdjustments `json:"adjustments"`
	Timestamp   time.Time                `json:"timestamp"`
}

// Option configures a Session.
type Option func(*Session)

// WithScorer overrides the score engine used for the live projection.
func WithScorer(scorer Scorer) Option {
	return func(s *Session) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is the state of one goal simulation. It is not safe for concurrent
// use; Registry serializes access when sessions are shared.
type Session struct {
	goal    models.Goal
	profile *models.CreditProfile
	scorer  Scorer
	now     func() time.Time

	step     int
	history  []int
	calendar []CalendarEntry
	badges   []Badge

	initial     models.ManualAdjustments
	adjustments models.ManualAdjustments
	snapshots   []Snapshot
}

// NewSession starts a simulation at step 0. The session keeps its own copies
// of the goal and the baseline profile; startingScore seeds the score
// history.
func NewSession(goal models.Goal, baseline *models.CreditProfile, startingScore int, opts ...Option) *Session {
	profile := baseline.Clone()
	profile.Normalize()

	s := &Session{
		goal:    goal.Clone(),
		profile: profile,
		scorer:  scoring.NewEngine(),
		now:     time.Now,
		history: []int{startingScore},
	}

	for _, opt := range opts {
		opt(s)
	}

	size := 0
	if goal.TimeframeMonths > 0 {
		size = min(goal.TimeframeMonths, models.MaxTimeframeMonths)
	}
	if len(s.goal.ActionPlan) > size {
		size = len(s.goal.ActionPlan)
	}
	s.calendar = make([]CalendarEntry, size)
	for i := range s.calendar {
		s.calendar[i].Label = fmt.Sprintf("Month %d", i+1)
	}

	s.initial = adjuster.Initial(profile)
	s.adjustments = s.initial
	return s
}

// Advance completes the next step. It is a no-op once the plan is complete.
func (s *Session) Advance() {
	if s.Completed() {
		return
	}

	step := s.goal.ActionPlan[s.step]
	score := s.history[len(s.history)-1] + step.Impact
	s.history = append(s.history, score)

	s.calendar[s.step] = CalendarEntry{
		Label:       s.calendar[s.step].Label,
		Description: step.Description,
		Score:       score,
		Completed:   true,
	}
	s.step++

	if step.Impact > GreatProgressThreshold {
		s.award(BadgeGreatProgress)
	}
	if s.Completed() {
		s.award(BadgeGoalCompleted)
	}
}

// Revert undoes the most recently completed step. It is a no-op at step 0.
func (s *Session) Revert() {
	if s.step == 0 {
		return
	}

	s.step--
	s.history = s.history[:len(s.history)-1]
	s.calendar[s.step] = CalendarEntry{Label: s.calendar[s.step].Label}

	s.revoke(BadgeGoalCompleted)

	great := false
	for _, step := range s.goal.ActionPlan[:s.step] {
		if step.Impact > GreatProgressThreshold {
			great = true
			break
		}
	}
	if !great {
		s.revoke(BadgeGreatProgress)
	}
}

// SetAdjustment sets a single what-if field from a number or user-entered
// text. Values are clamped and unparsable text counts as 0.
func (s *Session) SetAdjustment(field models.AdjustmentField, raw interface{}) error {
	return s.adjustments.Set(field, raw)
}

// SetAdjustments applies a partial update keyed by field name. Unknown field
// names reject the whole update.
func (s *Session) SetAdjustments(patch map[string]interface{}) error {
	next := s.adjustments

	names := make([]string, 0, len(patch))
	for name := range patch {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, err := models.ParseAdjustmentField(name)
		if err != nil {
			return fmt.Errorf("%w: %q", err, name)
		}
		if err := next.Set(field, patch[name]); err != nil {
			return err
		}
	}

	s.adjustments = next
	return nil
}

// ResetAdjustments restores the adjustments captured when the session began.
func (s *Session) ResetAdjustments() {
	s.adjustments = s.initial
}

// SaveSnapshot records the current projected score and adjustments.
func (s *Session) SaveSnapshot() Snapshot {
	snap := Snapshot{
		ID:          uuid.New(),
		Score:       s.ProjectedScore(),
		Adjustments: s.adjustments,
		Timestamp:   s.now().UTC(),
	}
	s.snapshots = append(s.snapshots, snap)
	return snap
}

// ProjectedScore scores the baseline profile with the current adjustments
// applied, then adds the impact of every completed step.
func (s *Session) ProjectedScore() int {
	base := s.scorer.ComputeScore(adjuster.Apply(s.profile, s.adjustments))

	completed := 0
	for _, step := range s.goal.ActionPlan[:s.step] {
		completed += step.Impact
	}
	return scoring.ClampScore(base + completed)
}

// CurrentStep returns the number of completed steps.
func (s *Session) CurrentStep() int {
	return s.step
}

// Completed reports whether every step has been completed.
func (s *Session) Completed() bool {
	return s.step >= len(s.goal.ActionPlan)
}

// Goal returns a copy of the simulated goal.
func (s *Session) Goal() models.Goal {
	return s.goal.Clone()
}

// Adjustments returns the current what-if values.
func (s *Session) Adjustments() models.ManualAdjustments {
	return s.adjustments
}

// InitialAdjustments returns the values ResetAdjustments restores.
func (s *Session) InitialAdjustments() models.ManualAdjustments {
	return s.initial
}

// ScoreHistory returns the starting score followed by the score after each
// completed step.
func (s *Session) ScoreHistory() []int {
	out := make([]int, len(s.history))
	copy(out, s.history)
	return out
}

// Badges returns the awarded badges in the order they were earned.
func (s *Session) Badges() []Badge {
	out := make([]Badge, len(s.badges))
	copy(out, s.badges)
	return out
}

// HasBadge reports whether b is currently awarded.
func (s *Session) HasBadge(b Badge) bool {
	for _, have := range s.badges {
		if have == b {
			return true
		}
	}
	return false
}

// Calendar returns the month-by-month plan calendar.
func (s *Session) Calendar() []CalendarEntry {
	out := make([]CalendarEntry, len(s.calendar))
	copy(out, s.calendar)
	return out
}

// Snapshots returns saved snapshots, oldest first.
func (s *Session) Snapshots() []Snapshot {
	out := make([]Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

func (s *Session) award(b Badge) {
	if !s.HasBadge(b) {
		s.badges = append(s.badges, b)
	}
}

func (s *Session) revoke(b Badge) {
	kept := s.badges[:0]
	for _, have := range s.badges {
		if have != b {
			kept = append(kept, have)
		}
	}
	s.badges = kept
}

// View is a read-only rendering of a session.
type View struct {
	ID                 uuid.UUID                `json:"id"`
	Goal               models.Goal              `json:"goal"`
	TitleConsistent    bool                     `json:"title_consistent"`
	CurrentStep        int                      `json:"current_step"`
	TotalSteps         int                      `json:"total_steps"`
	Completed          bool                     `json:"completed"`
	ProjectedScore     int                      `json:"projected_score"`
	ScoreHistory       []int                    `json:"score_history"`
	Badges             []Badge                  `json:"badges"`
	Calendar           []CalendarEntry          `json:"calendar"`
	Adjustments        models.ManualAdjustments `json:"adjustments"`
	InitialAdjustments models.ManualAdjustments `json:"initial_adjustments"`
	Snapshots          []Snapshot               `json:"snapshots"`
}

// View renders the session's current state.
func (s *Session) View() View {
	return View{
		Goal:               s.Goal(),
		TitleConsistent:    s.goal.TitleConsistent(),
		CurrentStep:        s.step,
		TotalSteps:         len(s.goal.ActionPlan),
		Completed:          s.Completed(),
		ProjectedScore:     s.ProjectedScore(),
		ScoreHistory:       s.ScoreHistory(),
		Badges:             s.Badges(),
		Calendar:           s.Calendar(),
		Adjustments:        s.adjustments,
		InitialAdjustments: s.initial,
		Snapshots:          s.Snapshots(),
	}
}
