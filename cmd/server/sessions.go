package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/simulator"
	"fico-simulator/internal/utils"
)

var (
	errMissingGoal  = errors.New("a goal is required")
	errGoalNotFound = errors.New("goal not found in analysis")
)

// CreateSessionRequest starts a simulation either from a stored analysis
// (analysis_id plus optional goal_id) or from an inline report and goal.
type CreateSessionRequest struct {
	AnalysisID    string                      `json:"analysis_id"`
	GoalID        string                      `json:"goal_id"`
	CreditData    *models.CreditReportPayload `json:"credit_data"`
	Goal          *models.GoalPayload         `json:"goal"`
	StartingScore *int                        `json:"starting_score"`
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, profile, baseline, err := s.resolveSessionInput(r, &req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	starting := baseline
	if req.StartingScore != nil {
		starting = *req.StartingScore
	}

	_, view := s.sessions.Create(goal, profile, starting, simulator.WithScorer(s.analyzer.Engine()))

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Simulation started",
		Data:    view,
	})
}

// resolveSessionInput returns the goal, baseline profile and baseline score
// for a new session.
func (s *Server) resolveSessionInput(r *http.Request, req *CreateSessionRequest) (models.Goal, *models.CreditProfile, int, error) {
	if req.AnalysisID != "" {
		if s.analyses == nil {
			return models.Goal{}, nil, 0, fmt.Errorf("%w: database not configured", models.ErrAnalysisNotFound)
		}
		id, err := uuid.Parse(req.AnalysisID)
		if err != nil {
			return models.Goal{}, nil, 0, fmt.Errorf("%w: %s", models.ErrAnalysisNotFound, req.AnalysisID)
		}
		analysis, err := s.analyses.GetByID(r.Context(), id)
		if err != nil {
			return models.Goal{}, nil, 0, err
		}
		goal, err := pickGoal(analysis.Goals, req.GoalID)
		if err != nil {
			return models.Goal{}, nil, 0, err
		}
		return goal, analysis.Profile, analysis.BaselineScore, nil
	}

	if req.CreditData == nil {
		return models.Goal{}, nil, 0, models.ErrMissingCreditData
	}
	if req.Goal == nil {
		return models.Goal{}, nil, 0, errMissingGoal
	}

	profile := req.CreditData.ToProfile()
	return req.Goal.ToGoal(), profile, s.analyzer.Engine().ComputeScore(profile), nil
}

// pickGoal selects goalID, or the first goal when goalID is empty.
func pickGoal(goals []models.Goal, goalID string) (models.Goal, error) {
	if len(goals) == 0 {
		return models.Goal{}, errMissingGoal
	}
	if goalID == "" {
		return goals[0], nil
	}
	for _, g := range goals {
		if g.ID == goalID {
			return g, nil
		}
	}
	return models.Goal{}, fmt.Errorf("%w: %s", errGoalNotFound, goalID)
}

// sessionID parses the {id} route variable.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

// withSession runs fn against the session in the URL and writes its view.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*simulator.Session) error) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	view, err := s.sessions.Do(id, fn)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: view})
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, nil)
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := s.sessions.Delete(id); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Session deleted"})
}

func (s *Server) advanceHandler(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(session *simulator.Session) error {
		session.Advance()
		return nil
	})
}

func (s *Server) revertHandler(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(session *simulator.Session) error {
		session.Revert()
		return nil
	})
}

func (s *Server) adjustmentsHandler(w http.ResponseWriter, r *http.Request) {
	var patch map[string]interface{}
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.withSession(w, r, func(session *simulator.Session) error {
		return session.SetAdjustments(patch)
	})
}

func (s *Server) resetAdjustmentsHandler(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(session *simulator.Session) error {
		session.ResetAdjustments()
		return nil
	})
}

func (s *Server) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	var snap simulator.Snapshot
	s.withSession(w, r, func(session *simulator.Session) error {
		snap = session.SaveSnapshot()
		return nil
	})

	if snap.ID != uuid.Nil {
		s.logger.Info("Saved snapshot",
			utils.String("snapshotId", snap.ID.String()),
			utils.Int("score", snap.Score),
			utils.String("session", mux.Vars(r)["id"]))
	}
}
