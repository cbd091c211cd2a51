package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	appConfig "fico-simulator/internal/config"
	"fico-simulator/internal/models"
	"fico-simulator/internal/services/analyzer"
	"fico-simulator/internal/services/database"
	s3service "fico-simulator/internal/services/s3"
	"fico-simulator/internal/services/ses"
	"fico-simulator/internal/utils"
)

// ReportStore reads uploaded reports and stores results.
type ReportStore interface {
	ReadReport(ctx context.Context, bucket, key string) (*models.AnalysisRequest, error)
	WriteResult(ctx context.Context, a *models.Analysis) (string, error)
	PresignResultDownload(ctx context.Context, key string, expiryMinutes int) (*s3service.PresignedURLResult, error)
	Archive(ctx context.Context, bucket, key string) (string, error)
}

// AnalysisStore persists analyses.
type AnalysisStore interface {
	Create(ctx context.Context, a *models.Analysis) error
}

// SummaryMailer emails score summaries.
type SummaryMailer interface {
	Enabled() bool
	SendScoreSummary(ctx context.Context, params ses.ScoreSummaryParams) (*ses.SendEmailResult, error)
}

// Notifier announces completed analyses.
type Notifier interface {
	Notify(ctx context.Context, a *models.Analysis) error
}

// WebhookNotifier posts analysis summaries to a webhook URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for url.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// WebhookPayload is the body posted to the analysis webhook.
type WebhookPayload struct {
	AnalysisID    string `json:"analysis_id"`
	Source        string `json:"source"`
	SourceKey     string `json:"source_key,omitempty"`
	BaselineScore int    `json:"baseline_score"`
	ExpectedScore int    `json:"expected_score"`
	GoalCount     int    `json:"goal_count"`
	TriggerType   string `json:"trigger_type"`
	Timestamp     string `json:"timestamp"`
}

// Notify posts the analysis summary to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, a *models.Analysis) error {
	payload := WebhookPayload{
		AnalysisID:    a.ID.String(),
		Source:        string(a.Source),
		SourceKey:     a.SourceKey,
		BaselineScore: a.BaselineScore,
		ExpectedScore: a.Advice.ProjectedOutcomes.ExpectedScore,
		GoalCount:     len(a.Goals),
		TriggerType:   "analysis_completed",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// ReportProcessorDeps wires a ReportProcessorHandler. Mailer and Notifier
// are optional.
type ReportProcessorDeps struct {
	Reports  ReportStore
	Analyses AnalysisStore
	Mailer   SummaryMailer
	Notifier Notifier
	Logger   *zap.Logger
}

// ReportProcessorHandler handles S3 events for uploaded report payloads.
type ReportProcessorHandler struct {
	analyzer *analyzer.Analyzer
	reports  ReportStore
	analyses AnalysisStore
	mailer   SummaryMailer
	notifier Notifier
	logger   *zap.Logger
	close    func()
}

// NewReportProcessorHandler creates a report processor from the environment.
func NewReportProcessorHandler(ctx context.Context) (*ReportProcessorHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	reports, err := s3service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deps := ReportProcessorDeps{
		Reports:  reports,
		Analyses: database.NewAnalysisRepository(db),
	}

	if cfg.SESSenderEmail != "" {
		mailer, err := ses.NewService(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		deps.Mailer = mailer
	}

	if cfg.AnalysisWebhookURL != "" {
		deps.Notifier = NewWebhookNotifier(cfg.AnalysisWebhookURL)
	}

	h := NewReportProcessor(deps)
	h.close = db.Close
	return h, nil
}

// NewReportProcessor creates a report processor from explicit dependencies.
func NewReportProcessor(deps ReportProcessorDeps) *ReportProcessorHandler {
	logger := deps.Logger
	if logger == nil {
		logger = utils.Named("report-processor")
	}

	return &ReportProcessorHandler{
		analyzer: analyzer.New(),
		reports:  deps.Reports,
		analyses: deps.Analyses,
		mailer:   deps.Mailer,
		notifier: deps.Notifier,
		logger:   logger,
	}
}

// ProcessedReport describes one report that was analyzed.
type ProcessedReport struct {
	Key           string `json:"key"`
	AnalysisID    string `json:"analysis_id"`
	BaselineScore int    `json:"baseline_score"`
	ResultKey     string `json:"result_key"`
	ResultURL     string `json:"result_url,omitempty"`
	Emailed       bool   `json:"emailed"`
}

// ReportProcessResult is the result of processing an S3 event.
type ReportProcessResult struct {
	Message   string            `json:"message"`
	Processed []ProcessedReport `json:"processed"`
	Errors    []string          `json:"errors,omitempty"`
}

// Handle processes every record of an S3 event. A failing record does not
// stop the others; the handler only errors when no record succeeded.
func (h *ReportProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (ReportProcessResult, error) {
	if len(s3Event.Records) == 0 {
		return ReportProcessResult{Message: "No records to process"}, nil
	}

	result := ReportProcessResult{Processed: []ProcessedReport{}}
	var failures []error

	for _, record := range s3Event.Records {
		bucket := record.S3.Bucket.Name
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			failures = append(failures, fmt.Errorf("failed to decode S3 key %q: %w", record.S3.Object.Key, err))
			continue
		}

		processed, err := h.ProcessReport(ctx, bucket, key)
		if err != nil {
			h.logger.Error("Failed to process report",
				utils.String("bucket", bucket),
				utils.String("key", key),
				utils.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", key, err))
			continue
		}
		result.Processed = append(result.Processed, *processed)
	}

	for _, err := range failures {
		result.Errors = append(result.Errors, err.Error())
	}

	if len(result.Processed) == 0 {
		result.Message = "No reports processed"
		return result, errors.Join(failures...)
	}

	result.Message = fmt.Sprintf("Processed %d of %d reports", len(result.Processed), len(s3Event.Records))
	return result, nil
}

// ProcessReport analyzes a single uploaded report.
func (h *ReportProcessorHandler) ProcessReport(ctx context.Context, bucket, key string) (*ProcessedReport, error) {
	logger := h.logger.With(utils.String("bucket", bucket), utils.String("key", key))
	logger.Info("Processing report")

	req, err := h.reports.ReadReport(ctx, bucket, key)
	if err != nil {
		return nil, err
	}

	analysis, err := h.analyzer.Analyze(models.AnalysisSourceS3, req)
	if err != nil {
		return nil, err
	}
	analysis.SourceKey = key

	for id, err := range analyzer.InvalidGoals(analysis.Goals) {
		logger.Warn("Goal failed validation",
			utils.String("goalId", id),
			utils.Error(err))
	}

	if err := h.analyses.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	resultKey, err := h.reports.WriteResult(ctx, analysis)
	if err != nil {
		return nil, err
	}

	processed := &ProcessedReport{
		Key:           key,
		AnalysisID:    analysis.ID.String(),
		BaselineScore: analysis.BaselineScore,
		ResultKey:     resultKey,
	}

	if link, err := h.reports.PresignResultDownload(ctx, resultKey, DefaultUploadExpiryMinutes); err != nil {
		logger.Warn("Failed to presign result download", utils.Error(err))
	} else {
		processed.ResultURL = link.URL
	}

	if analysis.Email != "" && h.mailer != nil && h.mailer.Enabled() {
		params := ses.BuildScoreSummaryParams(analysis, analysis.Email)
		if _, err := h.mailer.SendScoreSummary(ctx, params); err != nil {
			logger.Warn("Failed to send score summary", utils.Error(err))
		} else {
			processed.Emailed = true
		}
	}

	if h.notifier != nil {
		if err := h.notifier.Notify(ctx, analysis); err != nil {
			logger.Warn("Failed to trigger analysis webhook", utils.Error(err))
		}
	}

	// Archive processed file
	if _, err := h.reports.Archive(ctx, bucket, key); err != nil {
		logger.Warn("Failed to archive report", utils.Error(err))
	}

	logger.Info("Processed report",
		utils.String("analysisId", processed.AnalysisID),
		utils.Int("baselineScore", processed.BaselineScore),
		utils.Bool("emailed", processed.Emailed))

	return processed, nil
}

// Close cleans up resources.
func (h *ReportProcessorHandler) Close() {
	if h.close != nil {
		h.close()
	}
}

