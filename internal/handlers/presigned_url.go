package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	appConfig "fico-simulator/internal/config"
	s3service "fico-simulator/internal/services/s3"
	"fico-simulator/internal/utils"
)

// DefaultUploadExpiryMinutes is how long an upload URL stays valid.
const DefaultUploadExpiryMinutes = 60

// ReportPresigner issues upload URLs for report payloads.
type ReportPresigner interface {
	PresignReportUpload(ctx context.Context, fileName string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler handles requests for generating presigned S3 URLs.
type PresignedURLHandler struct {
	presigner ReportPresigner
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(ctx context.Context) (*PresignedURLHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, err
	}

	svc, err := s3service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &PresignedURLHandler{presigner: svc}, nil
}

// NewPresignedURLHandlerWith creates a handler around an existing presigner.
func NewPresignedURLHandlerWith(presigner ReportPresigner) *PresignedURLHandler {
	return &PresignedURLHandler{presigner: presigner}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
	ExpiresAt string `json:"expiresAt"`
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := corsHeaders("GET,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return preflight(headers), nil
	}

	// Get filename from query params
	filename := strings.TrimSpace(request.QueryStringParameters["filename"])
	if filename == "" {
		filename = "report_" + uuid.New().String()[:8] + ".json"
	}

	// Validate filename
	if !strings.HasSuffix(strings.ToLower(filename), ".json") {
		return errorResponse(headers, http.StatusBadRequest, "Only JSON report files are allowed")
	}

	expiry := DefaultUploadExpiryMinutes
	if raw := request.QueryStringParameters["expires"]; raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 || minutes > 7*24*60 {
			return errorResponse(headers, http.StatusBadRequest, "expires must be between 1 and 10080 minutes")
		}
		expiry = minutes
	}

	result, err := h.presigner.PresignReportUpload(ctx, filename, expiry)
	if err != nil {
		logger.Error("Failed to generate presigned URL", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL")
	}

	logger.Info("Generated presigned URL", utils.String("s3Key", result.Key))

	return jsonResponse(headers, http.StatusOK, PresignedURLResponse{
		UploadURL: result.URL,
		S3Key:     result.Key,
		ExpiresIn: expiry * 60,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
