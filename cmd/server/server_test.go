package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fico-simulator/internal/config"
	"fico-simulator/internal/models"
	"fico-simulator/internal/services/simulator"
)

const analysisBody = `{
	"credit_data": {
		"accounts": [{"type": "credit_card", "balance": 3000, "limit": 10000}],
		"late_payments": 0,
		"inquiries": 1,
		"average_account_age_months": 60,
		"credit_mix": {"revolving": 1}
	},
	"personalized_goals": [{
		"goal_id": "g-1",
		"title": "Increase Score by 13 Points",
		"category": "Amounts Owed",
		"timeframe_months": 6,
		"action_plan": [
			{"step": "Pay down card", "impact": 10},
			{"step": "Keep utilization low", "impact": 5},
			{"step": "Open a new card", "impact": -2}
		]
	}]
}`

type memoryRepo struct {
	analyses map[uuid.UUID]*models.Analysis
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{analyses: map[uuid.UUID]*models.Analysis{}}
}

func (m *memoryRepo) Create(_ context.Context, a *models.Analysis) error {
	m.analyses[a.ID] = a
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrAnalysisNotFound, id)
	}
	return a, nil
}

func (m *memoryRepo) List(_ context.Context, limit, offset int) ([]models.AnalysisSummary, error) {
	out := []models.AnalysisSummary{}
	for _, a := range m.analyses {
		out = append(out, a.ToSummary())
	}
	return out, nil
}

func newTestServer(repo analysisRepository) *Server {
	sessions := simulator.NewRegistry(time.Hour, simulator.WithLogger(zap.NewNop()))
	s := NewServer(nil, repo, sessions, "test")
	s.logger = zap.NewNop()
	return s
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	h := newTestServer(nil).Handler()

	rec, env := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"database":"not configured"`)
}

func TestScore(t *testing.T) {
	h := newTestServer(nil).Handler()

	rec, env := do(t, h, http.MethodPost, "/api/score", analysisBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Score int `json:"score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 726, data.Score)

	rec, env = do(t, h, http.MethodPost, "/api/score", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, _ = do(t, h, http.MethodGet, "/api/score", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(nil).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/score", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestImport_RawCSV(t *testing.T) {
	h := newTestServer(nil).Handler()

	csv := "type,balance,limit,age_months\ncredit_card,3000,10000,60\n"
	req := httptest.NewRequest(http.MethodPost, "/api/profiles/import?inquiries=1", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var data ImportResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 726, data.Score)
	assert.Equal(t, 1, data.Rows)
	assert.Empty(t, data.ParseErrors)
}

func TestImport_Multipart(t *testing.T) {
	h := newTestServer(nil).Handler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "tradelines.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("type,balance\nmortgage,200000\nbogus_row\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("inquiries", "0"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profiles/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var data ImportResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Rows)
	assert.Len(t, data.ParseErrors, 1)
}

func TestImport_Invalid(t *testing.T) {
	h := newTestServer(nil).Handler()

	rec, env := do(t, h, http.MethodPost, "/api/profiles/import", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No valid tradelines found", env.Error)

	rec, _ = do(t, h, http.MethodPost, "/api/profiles/import?inquiries=-1", "type,balance\ncard,1\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/profiles/import", "kind,limit\ncard,500\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required columns", env.Error)
	var data ImportResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"balance"}, data.MissingColumns)
}

func createAnalysis(t *testing.T, h http.Handler) models.Analysis {
	t.Helper()

	rec, env := do(t, h, http.MethodPost, "/api/analyses", analysisBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var a models.Analysis
	require.NoError(t, json.Unmarshal(env.Data, &a))
	return a
}

func TestAnalyses(t *testing.T) {
	h := newTestServer(newMemoryRepo()).Handler()

	a := createAnalysis(t, h)
	assert.Equal(t, 726, a.BaselineScore)
	assert.Equal(t, models.AnalysisSourceAPI, a.Source)

	rec, env := do(t, h, http.MethodGet, "/api/analyses/"+a.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Analysis
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, a.ID, got.ID)

	rec, env = do(t, h, http.MethodGet, "/api/analyses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.AnalysisSummary
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	rec, _ = do(t, h, http.MethodGet, "/api/analyses/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/analyses/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/api/analyses", `{"personalized_goals": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ErrMissingCreditData.Error(), env.Error)
}

func TestAnalyses_NoDatabase(t *testing.T) {
	h := newTestServer(nil).Handler()

	rec, env := do(t, h, http.MethodPost, "/api/analyses", analysisBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, env.Message, "not persisted")

	rec, _ = do(t, h, http.MethodGet, "/api/analyses", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func sessionView(t *testing.T, env envelope) simulator.View {
	t.Helper()
	var v simulator.View
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(newMemoryRepo()).Handler()
	a := createAnalysis(t, h)

	rec, env := do(t, h, http.MethodPost, "/api/sessions", fmt.Sprintf(`{"analysis_id": %q, "goal_id": "g-1"}`, a.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := sessionView(t, env)
	assert.Equal(t, []int{726}, view.ScoreHistory)
	assert.Equal(t, 3, view.TotalSteps)
	assert.True(t, view.TitleConsistent)
	base := "/api/sessions/" + view.ID.String()

	for i := 0; i < 3; i++ {
		rec, env = do(t, h, http.MethodPost, base+"/advance", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	view = sessionView(t, env)
	assert.Equal(t, []int{726, 736, 741, 739}, view.ScoreHistory)
	assert.True(t, view.Completed)
	assert.Contains(t, view.Badges, simulator.BadgeGreatProgress)
	assert.Contains(t, view.Badges, simulator.BadgeGoalCompleted)
	assert.Equal(t, 739, view.ProjectedScore)

	_, env = do(t, h, http.MethodPost, base+"/revert", "")
	view = sessionView(t, env)
	assert.Equal(t, 2, view.CurrentStep)
	assert.NotContains(t, view.Badges, simulator.BadgeGoalCompleted)

	rec, env = do(t, h, http.MethodPatch, base+"/adjustments", `{"utilization": 5, "inquiries": "0"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = sessionView(t, env)
	assert.Equal(t, 5, view.Adjustments.UtilizationPercent)
	assert.Equal(t, 0, view.Adjustments.Inquiries)

	rec, env = do(t, h, http.MethodPatch, base+"/adjustments", `{"credit_age": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "unknown adjustment field")

	_, env = do(t, h, http.MethodPost, base+"/snapshots", "")
	view = sessionView(t, env)
	require.Len(t, view.Snapshots, 1)
	assert.Equal(t, view.ProjectedScore, view.Snapshots[0].Score)

	_, env = do(t, h, http.MethodPost, base+"/adjustments/reset", "")
	view = sessionView(t, env)
	assert.Equal(t, view.InitialAdjustments, view.Adjustments)
	assert.Equal(t, 30, view.Adjustments.UtilizationPercent)

	rec, _ = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSession_Inline(t *testing.T) {
	h := newTestServer(nil).Handler()

	body := `{
		"credit_data": {"accounts": [{"type": "credit_card", "balance": 3000, "limit": 10000}], "inquiries": 1, "average_account_age_months": 60, "credit_mix": {"revolving": 1}},
		"goal": {"goal_id": "g-2", "title": "Increase Score by 5 Points", "category": "new credit", "timeframe_months": 2, "action_plan": [{"step": "Wait", "impact": 5}]},
		"starting_score": 700
	}`
	rec, env := do(t, h, http.MethodPost, "/api/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	view := sessionView(t, env)
	assert.Equal(t, []int{700}, view.ScoreHistory)
	assert.Len(t, view.Calendar, 2)
	assert.Equal(t, models.GoalCategoryNewCredit, view.Goal.Category)
}

func TestCreateSession_Errors(t *testing.T) {
	h := newTestServer(newMemoryRepo()).Handler()
	a := createAnalysis(t, h)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"no credit data", `{"goal": {"goal_id": "g"}}`, http.StatusBadRequest},
		{"no goal", `{"credit_data": {}}`, http.StatusBadRequest},
		{"unknown analysis", fmt.Sprintf(`{"analysis_id": %q}`, uuid.NewString()), http.StatusNotFound},
		{"unknown goal", fmt.Sprintf(`{"analysis_id": %q, "goal_id": "nope"}`, a.ID), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, env.Success)
		})
	}

	rec, _ := do(t, h, http.MethodPost, "/api/sessions/not-a-uuid/advance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeRetention struct {
	cutoff time.Time
	n      int64
}

func (f *fakeRetention) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, nil
}

func TestRetention(t *testing.T) {
	store := &fakeRetention{n: 3}
	assert.Equal(t, int64(3), purgeAnalyses(context.Background(), store, 24*time.Hour))
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), store.cutoff, time.Minute)

	c, err := startRetentionPurge(&config.Config{AnalysisRetentionDays: 0}, store)
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = startRetentionPurge(&config.Config{AnalysisRetentionDays: 1, RetentionSchedule: "not a schedule"}, store)
	assert.Error(t, err)

	c, err = startRetentionPurge(&config.Config{AnalysisRetentionDays: 1, RetentionSchedule: "@daily"}, store)
	require.NoError(t, err)
	c.Stop()
}
