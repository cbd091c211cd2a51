package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "fico-simulator/internal/config"
	"fico-simulator/internal/services/database"
)

// ServiceName is reported by health checks.
const ServiceName = "fico-simulator"

// Pinger checks a backing store's connectivity.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db    Pinger
	close func()
	stage string
}

// NewHealthHandler creates a health handler. The database is optional: when
// it cannot be reached at startup the handler reports it as not configured.
func NewHealthHandler() (*HealthHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return &HealthHandler{}, nil // Return handler without DB
	}

	db, err := database.New(cfg)
	if err != nil {
		return &HealthHandler{stage: cfg.Stage}, nil // Return handler without DB
	}

	return &HealthHandler{db: db, close: db.Close, stage: cfg.Stage}, nil
}

// NewHealthHandlerWithDB creates a health handler around an existing store.
// db may be nil.
func NewHealthHandlerWithDB(db Pinger, stage string) *HealthHandler {
	return &HealthHandler{db: db, stage: stage}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database,omitempty"`
}

// Check builds the health report and the matching status code.
func (h *HealthHandler) Check(ctx context.Context) (HealthResponse, int) {
	stage := h.stage
	if stage == "" {
		stage = getEnvOrDefault("STAGE", "unknown")
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   ServiceName,
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     stage,
	}

	// Check database connectivity
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	} else {
		response.Database = "not configured"
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return response, statusCode
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response, statusCode := h.Check(ctx)
	return jsonResponse(corsHeaders("GET,OPTIONS"), statusCode, response)
}

// Close cleans up resources.
func (h *HealthHandler) Close() {
	if h.close != nil {
		h.close()
	}
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
