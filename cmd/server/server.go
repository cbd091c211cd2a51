package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"fico-simulator/internal/handlers"
	"fico-simulator/internal/models"
	"fico-simulator/internal/services/analyzer"
	"fico-simulator/internal/services/database"
	"fico-simulator/internal/services/simulator"
	"fico-simulator/internal/utils"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 10 << 20

// analysisRepository is the persistence used by the analyses routes.
type analysisRepository interface {
	Create(ctx context.Context, a *models.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	List(ctx context.Context, limit, offset int) ([]models.AnalysisSummary, error)
}

// Server holds all dependencies
type Server struct {
	health   *handlers.HealthHandler
	analyses analysisRepository
	analyzer *analyzer.Analyzer
	sessions *simulator.Registry
	logger   *zap.Logger
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewServer wires the API. db and analyses may be nil, in which case the
// analyses routes run without persistence.
func NewServer(db handlers.Pinger, analyses analysisRepository, sessions *simulator.Registry, stage string) *Server {
	return &Server{
		health:   handlers.NewHealthHandlerWithDB(db, stage),
		analyses: analyses,
		analyzer: analyzer.New(),
		sessions: sessions,
		logger:   utils.Named("server"),
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/health", s.healthHandler).Methods(http.MethodGet)

	// Scoring
	r.HandleFunc("/api/score", s.scoreHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/profiles/import", s.importHandler).Methods(http.MethodPost)

	// Analyses
	r.HandleFunc("/api/analyses", s.createAnalysisHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/analyses", s.listAnalysesHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/analyses/{id}", s.getAnalysisHandler).Methods(http.MethodGet)

	// Simulation sessions
	r.HandleFunc("/api/sessions", s.createSessionHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}", s.getSessionHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}", s.deleteSessionHandler).Methods(http.MethodDelete)
	r.HandleFunc("/api/sessions/{id}/advance", s.advanceHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/revert", s.revertHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/adjustments", s.adjustmentsHandler).Methods(http.MethodPatch)
	r.HandleFunc("/api/sessions/{id}/adjustments/reset", s.resetAdjustmentsHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}/snapshots", s.snapshotHandler).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// Handler wraps the router with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.Router())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health, status := s.health.Check(r.Context())

	writeJSON(w, status, Response{
		Success: status == http.StatusOK,
		Message: "FICO simulator API is running",
		Data: map[string]interface{}{
			"health":   health,
			"sessions": s.sessions.Len(),
		},
	})
}

func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	req, err := handlers.DecodeScoreRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    handlers.BuildScoreResponse(s.analyzer, req),
	})
}

// ImportResponse contains the result of a tradeline CSV import.
type ImportResponse struct {
	analyzer.ScoreResult
	Rows           int      `json:"rows"`
	ParseErrors    []string `json:"parse_errors,omitempty"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	ProcessingMs   int64    `json:"processing_ms"`
}

func (s *Server) importHandler(w http.ResponseWriter, r *http.Request) {
	content, inquiries, err := readImport(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if check, err := utils.CheckTradelineHeader(string(content)); err == nil && !check.OK() {
		s.logger.Warn("Rejected tradeline import", utils.Strings("missingColumns", check.MissingColumns))
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Missing required columns",
			Data:    ImportResponse{MissingColumns: check.MissingColumns},
		})
		return
	}

	start := time.Now()
	imported, parseErrors := utils.NewCSVParser().ParseTradelines(string(content))

	messages := make([]string, 0, len(parseErrors))
	for i, e := range parseErrors {
		if i >= 10 { // Limit errors in response
			break
		}
		messages = append(messages, e.Error())
	}

	if imported == nil {
		s.logger.Warn("Rejected tradeline import", utils.Strings("errors", messages))
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No valid tradelines found",
			Data:    ImportResponse{ParseErrors: messages},
		})
		return
	}

	result := ImportResponse{
		ScoreResult:  s.analyzer.Score(imported.Profile(inquiries)),
		Rows:         len(imported.Accounts) + len(parseErrors),
		ParseErrors:  messages,
		ProcessingMs: time.Since(start).Milliseconds(),
	}

	s.logger.Info("Imported tradelines",
		utils.Int("accounts", len(imported.Accounts)),
		utils.Int("parseErrors", len(parseErrors)),
		utils.Int("score", result.Score))

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "CSV processed successfully",
		Data:    result,
	})
}

// readImport accepts a multipart "file" field or a raw CSV body. The
// inquiry count comes from the "inquiries" form or query value.
func readImport(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	var content []byte

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, 0, errors.New("failed to parse form: " + err.Error())
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, 0, errors.New("no file provided")
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			return nil, 0, errors.New("only CSV files are allowed")
		}
		if content, err = io.ReadAll(file); err != nil {
			return nil, 0, errors.New("failed to read file")
		}
	} else {
		body, err := readBody(w, r)
		if err != nil {
			return nil, 0, errors.New("failed to read request body")
		}
		content = body
	}

	inquiries := 0
	if raw := r.FormValue("inquiries"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, 0, errors.New("inquiries must be a non-negative integer")
		}
		inquiries = n
	}

	return content, inquiries, nil
}

func (s *Server) createAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := s.analyzer.Analyze(models.AnalysisSourceAPI, &req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	// Without a database the analysis is returned but not stored
	if s.analyses == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Analysis computed (not persisted: no database)",
			Data:    analysis,
		})
		return
	}

	if err := s.analyses.Create(r.Context(), analysis); err != nil {
		s.logger.Error("Failed to save analysis", utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save analysis")
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Analysis created",
		Data:    analysis,
	})
}

func (s *Server) getAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if s.analyses == nil {
		writeError(w, http.StatusServiceUnavailable, "Database not configured")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid analysis id")
		return
	}

	analysis, err := s.analyses.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: analysis})
}

func (s *Server) listAnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if s.analyses == nil {
		writeError(w, http.StatusServiceUnavailable, "Database not configured")
		return
	}

	limit := queryInt(r, "limit", database.DefaultListLimit)
	offset := queryInt(r, "offset", 0)

	summaries, err := s.analyses.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list analyses", utils.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: summaries})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrAnalysisNotFound), errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrMissingCreditData),
		errors.Is(err, models.ErrUnknownAdjustmentField),
		errors.Is(err, errGoalNotFound),
		errors.Is(err, errMissingGoal):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return n
	}
	return defaultVal
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
