package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/analyzer"
	"fico-simulator/internal/utils"
)

// ErrEmptyBody is returned for requests without a body.
var ErrEmptyBody = errors.New("request body is empty")

// ScoreRequest is a decoded score request: a profile plus any goals that
// came with it.
type ScoreRequest struct {
	Profile *models.CreditProfile
	Goals   []models.Goal
	Email   string
}

// DecodeScoreRequest accepts either an analyze envelope
// ({"credit_data": ..., "personalized_goals": ...}) or a bare credit_data
// object.
func DecodeScoreRequest(body []byte) (*ScoreRequest, error) {
	if strings.TrimSpace(string(body)) == "" {
		return nil, ErrEmptyBody
	}

	var envelope models.AnalysisRequest
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON in request body: %w", err)
	}
	if envelope.CreditData != nil {
		return &ScoreRequest{
			Profile: envelope.Profile(),
			Goals:   envelope.Goals(),
			Email:   strings.TrimSpace(envelope.Email),
		}, nil
	}

	var bare models.CreditReportPayload
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("invalid JSON in request body: %w", err)
	}
	return &ScoreRequest{
		Profile: bare.ToProfile(),
		Goals:   envelope.Goals(),
	}, nil
}

// ScoreResponse is returned by the score endpoint.
type ScoreResponse struct {
	analyzer.ScoreResult
	Goals        []models.Goal     `json:"goals"`
	GoalWarnings map[string]string `json:"goal_warnings,omitempty"`
}

// BuildScoreResponse scores a decoded request and validates its goals.
// Invalid goals are reported, not rejected.
func BuildScoreResponse(a *analyzer.Analyzer, req *ScoreRequest) ScoreResponse {
	resp := ScoreResponse{
		ScoreResult: a.Score(req.Profile),
		Goals:       req.Goals,
	}
	if resp.Goals == nil {
		resp.Goals = []models.Goal{}
	}

	if invalid := analyzer.InvalidGoals(req.Goals); len(invalid) > 0 {
		resp.GoalWarnings = make(map[string]string, len(invalid))
		for id, err := range invalid {
			resp.GoalWarnings[id] = strings.ReplaceAll(err.Error(), "\n", "; ")
		}
	}
	return resp
}

// ScoreHandler estimates a score from a posted credit report.
type ScoreHandler struct {
	analyzer *analyzer.Analyzer
	logger   *zap.Logger
}

// NewScoreHandler creates a score handler.
func NewScoreHandler() *ScoreHandler {
	return &ScoreHandler{
		analyzer: analyzer.New(),
		logger:   utils.Named("score"),
	}
}

// Handle processes API Gateway score requests.
func (h *ScoreHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	req, err := DecodeScoreRequest([]byte(request.Body))
	if err != nil {
		h.logger.Warn("Rejected score request", utils.Error(err))
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	resp := BuildScoreResponse(h.analyzer, req)

	h.logger.Info("Estimated score",
		utils.Int("score", resp.Score),
		utils.Int("accounts", len(req.Profile.Accounts)),
		utils.Int("goals", len(resp.Goals)),
		utils.Int("goalWarnings", len(resp.GoalWarnings)))

	return jsonResponse(headers, http.StatusOK, resp)
}
