// Package ses sends score summary emails via AWS SES.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "fico-simulator/internal/config"
	"fico-simulator/internal/models"
	"fico-simulator/internal/utils"
)

// SendAPI is the subset of the SES client used by Service.
type SendAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client       SendAPI
	fromEmail    string
	dashboardURL string
	logger       *zap.Logger
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// ScoreSummaryParams is the data rendered into a score summary email.
type ScoreSummaryParams struct {
	To             string
	AnalysisID     string
	BaselineScore  int
	ExpectedScore  int
	BestCaseScore  int
	Timeframe      string
	Summary        string
	Breakdown      []BreakdownLine
	Actions        []models.AdviceAction
	Goals          []GoalLine
	RevolvingOwed  string
	RevolvingLimit string
	DashboardURL   string
}

// BreakdownLine is one category row in the summary email.
type BreakdownLine struct {
	Category string
	Detail   string
}

// GoalLine is one goal row in the summary email.
type GoalLine struct {
	Title           string
	Category        string
	TimeframeMonths int
	Steps           int
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service using the default AWS credential chain.
func NewService(ctx context.Context, cfg *appConfig.Config) (*Service, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(ses.NewFromConfig(awsCfg), cfg), nil
}

// NewWithClient builds a Service around an existing client.
func NewWithClient(client SendAPI, cfg *appConfig.Config) *Service {
	return &Service{
		client:       client,
		fromEmail:    cfg.SESSenderEmail,
		dashboardURL: cfg.DashboardURL,
		logger:       utils.Named("ses"),
	}
}

// Enabled reports whether a sender address is configured.
func (s *Service) Enabled() bool {
	return s.fromEmail != ""
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	s.logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// SendScoreSummary emails the score estimate and advice for an analysis.
func (s *Service) SendScoreSummary(ctx context.Context, params ScoreSummaryParams) (*SendEmailResult, error) {
	if params.DashboardURL == "" {
		params.DashboardURL = s.dashboardURL
	}

	htmlBody, err := RenderScoreSummaryHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.To,
		Subject:  fmt.Sprintf("Your estimated FICO score: %d", params.BaselineScore),
		HTMLBody: htmlBody,
		TextBody: RenderScoreSummaryText(params),
	})
}

// BuildScoreSummaryParams creates email params from an analysis.
func BuildScoreSummaryParams(a *models.Analysis, to string) ScoreSummaryParams {
	c := a.Categories
	params := ScoreSummaryParams{
		To:            to,
		AnalysisID:    a.ID.String(),
		BaselineScore: a.BaselineScore,
		ExpectedScore: a.Advice.ProjectedOutcomes.ExpectedScore,
		BestCaseScore: a.Advice.ProjectedOutcomes.BestCaseScore,
		Timeframe:     a.Advice.ProjectedOutcomes.Timeframe,
		Summary:       a.Advice.CurrentState.Summary,
		Breakdown: []BreakdownLine{
			{string(models.GoalCategoryPaymentHistory), string(c.PaymentHistory.Status)},
			{string(models.GoalCategoryAmountsOwed), string(c.AmountsOwed.Status)},
			{string(models.GoalCategoryLengthOfHistory), string(c.LengthOfHistory.Status)},
			{string(models.GoalCategoryNewCredit), string(c.NewCredit.Status)},
			{string(models.GoalCategoryCreditMix), string(c.CreditMix.Status)},
		},
		Actions: a.Advice.ActionPlan,
		Goals:   make([]GoalLine, 0, len(a.Goals)),
	}

	if a.Profile != nil {
		balance, limit, _ := a.Profile.RevolvingTotals()
		params.RevolvingOwed = utils.FormatUSD(balance)
		params.RevolvingLimit = utils.FormatUSD(limit)
	}

	for _, g := range a.Goals {
		params.Goals = append(params.Goals, GoalLine{
			Title:           g.Title,
			Category:        string(g.Category),
			TimeframeMonths: g.TimeframeMonths,
			Steps:           len(g.ActionPlan),
		})
	}

	return params
}

var summaryTemplate = template.Must(template.New("score_summary").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f3a93; color: white; padding: 24px; border-radius: 10px 10px 0 0; text-align: center; }
        .score { font-size: 48px; font-weight: bold; margin: 8px 0; }
        .content { background: #f7f7f9; padding: 24px; border-radius: 0 0 10px 10px; }
        table { width: 100%; border-collapse: collapse; margin: 12px 0; }
        td { padding: 6px 4px; border-bottom: 1px solid #e2e2e8; }
        .action { background: white; border-radius: 8px; padding: 12px 16px; margin: 10px 0; }
        .muted { color: #888; font-size: 12px; }
        .cta-button { display: inline-block; background: #1f3a93; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; }
    </style>
</head>
<body>
    <div class="header">
        <div>Estimated FICO score</div>
        <div class="score">{{.BaselineScore}}</div>
        <div>Expected {{.ExpectedScore}}, best case {{.BestCaseScore}} within {{.Timeframe}}</div>
    </div>
    <div class="content">
        <p>{{.Summary}}</p>
        <table>
        {{range .Breakdown}}
            <tr><td>{{.Category}}</td><td>{{.Detail}}</td></tr>
        {{end}}
        </table>
        {{if .RevolvingLimit}}<p class="muted">Revolving balance {{.RevolvingOwed}} of {{.RevolvingLimit}} available credit.</p>{{end}}
        {{range .Actions}}
        <div class="action">
            <strong>{{.Action}}</strong><br>
            {{.EstimatedPointGain}} points in {{.Timeframe}}
        </div>
        {{end}}
        {{if .Goals}}
        <h3>Your goals</h3>
        <ul>
        {{range .Goals}}
            <li>{{.Title}} ({{.Category}}, {{.TimeframeMonths}} months, {{.Steps}} steps)</li>
        {{end}}
        </ul>
        {{end}}
        {{if .DashboardURL}}
        <div style="text-align: center;">
            <a href="{{.DashboardURL}}" class="cta-button">Open the simulator</a>
        </div>
        {{end}}
        <p class="muted">Estimates are approximations and may differ from scores reported by credit bureaus. Reference {{.AnalysisID}}.</p>
    </div>
</body>
</html>`))

// RenderScoreSummaryHTML renders the HTML email body.
func RenderScoreSummaryHTML(params ScoreSummaryParams) (string, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderScoreSummaryText renders the plain text email body.
func RenderScoreSummaryText(params ScoreSummaryParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your estimated FICO score is %d.\n", params.BaselineScore)
	fmt.Fprintf(&b, "Expected %d, best case %d within %s.\n\n", params.ExpectedScore, params.BestCaseScore, params.Timeframe)
	b.WriteString(params.Summary + "\n\n")

	for _, line := range params.Breakdown {
		fmt.Fprintf(&b, "%s: %s\n", line.Category, line.Detail)
	}
	if params.RevolvingLimit != "" {
		fmt.Fprintf(&b, "Revolving balance %s of %s available credit.\n", params.RevolvingOwed, params.RevolvingLimit)
	}
	b.WriteString("\n")

	for i, a := range params.Actions {
		fmt.Fprintf(&b, "%d. %s (%s points, %s)\n", i+1, a.Action, a.EstimatedPointGain, a.Timeframe)
	}

	if len(params.Goals) > 0 {
		b.WriteString("\nYour goals:\n")
		for _, g := range params.Goals {
			fmt.Fprintf(&b, "- %s (%s, %d months, %d steps)\n", g.Title, g.Category, g.TimeframeMonths, g.Steps)
		}
	}

	if params.DashboardURL != "" {
		fmt.Fprintf(&b, "\nOpen the simulator: %s\n", params.DashboardURL)
	}

	fmt.Fprintf(&b, "\nReference %s\n", params.AnalysisID)
	return b.String()
}
