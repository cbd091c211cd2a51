// Package s3service stores uploaded credit reports and analysis results in S3.
package s3service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appConfig "fico-simulator/internal/config"
	"fico-simulator/internal/models"
	"fico-simulator/internal/utils"
)

// ArchivePrefix is where processed reports are moved.
const ArchivePrefix = "processed/"

// ObjectAPI is the subset of the S3 client used by Service.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner is the subset of the S3 presign client used by Service.
type Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Service handles S3 operations
type Service struct {
	client        ObjectAPI
	presigner     Presigner
	bucketName    string
	reportsPrefix string
	resultsPrefix string
	logger        *zap.Logger
}

// PresignedURLResult contains the presigned URL details
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewService creates a new S3 service using the default AWS credential chain.
func NewService(ctx context.Context, cfg *appConfig.Config) (*Service, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return NewWithClient(client, s3.NewPresignClient(client), cfg), nil
}

// NewWithClient builds a Service around existing clients. presigner may be
// nil when presigning is not needed.
func NewWithClient(client ObjectAPI, presigner Presigner, cfg *appConfig.Config) *Service {
	return &Service{
		client:        client,
		presigner:     presigner,
		bucketName:    cfg.S3Bucket,
		reportsPrefix: cfg.ReportsPrefix,
		resultsPrefix: cfg.ResultsPrefix,
		logger:        utils.Named("s3"),
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportKey builds a unique object key for an uploaded report.
func ReportKey(prefix, fileName string, id uuid.UUID) string {
	name := unsafeKeyChars.ReplaceAllString(path.Base(strings.TrimSpace(fileName)), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "report"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	return prefix + id.String() + "-" + name
}

// ResultKey is the object key for an analysis result.
func ResultKey(prefix string, id uuid.UUID) string {
	return prefix + id.String() + ".json"
}

// ArchiveKey is where a processed report is moved to.
func ArchiveKey(key string) string {
	return ArchivePrefix + path.Base(key)
}

// PresignReportUpload creates a presigned PUT URL for a report payload.
func (s *Service) PresignReportUpload(ctx context.Context, fileName string, expiryMinutes int) (*PresignedURLResult, error) {
	if s.presigner == nil {
		return nil, fmt.Errorf("presigning is not configured")
	}
	if expiryMinutes <= 0 {
		expiryMinutes = 15 // Default 15 minutes
	}

	key := ReportKey(s.reportsPrefix, fileName, uuid.New())
	expiry := time.Duration(expiryMinutes) * time.Minute

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String("application/json"),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		s.logger.Error("Failed to generate presigned URL",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.Info("Generated presigned upload URL",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("expiry_minutes", expiryMinutes),
	)

	return &PresignedURLResult{
		URL:       req.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// PresignResultDownload creates a presigned GET URL for a stored result.
func (s *Service) PresignResultDownload(ctx context.Context, key string, expiryMinutes int) (*PresignedURLResult, error) {
	if s.presigner == nil {
		return nil, fmt.Errorf("presigning is not configured")
	}
	if expiryMinutes <= 0 {
		expiryMinutes = 60
	}

	expiry := time.Duration(expiryMinutes) * time.Minute
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURLResult{
		URL:       req.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// ReadReport downloads and decodes an analysis request from bucket/key.
func (s *Service) ReadReport(ctx context.Context, bucket, key string) (*models.AnalysisRequest, error) {
	if bucket == "" {
		bucket = s.bucketName
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to download report",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report content: %w", err)
	}

	var req models.AnalysisRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", key, err)
	}

	s.logger.Info("Downloaded report",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return &req, nil
}

// WriteResult stores an analysis as JSON under the results prefix and
// returns its key.
func (s *Service) WriteResult(ctx context.Context, a *models.Analysis) (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}

	key := ResultKey(s.resultsPrefix, a.ID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error("Failed to upload analysis result",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload result: %w", err)
	}

	s.logger.Info("Uploaded analysis result",
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return key, nil
}

// Archive moves a processed report out of the upload prefix.
func (s *Service) Archive(ctx context.Context, bucket, key string) (string, error) {
	if bucket == "" {
		bucket = s.bucketName
	}
	dest := ArchiveKey(key)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(bucket + "/" + key),
		Key:        aws.String(dest),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy report: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete report: %w", err)
	}

	s.logger.Info("Archived report",
		zap.String("source", key),
		zap.String("destination", dest),
	)
	return dest, nil
}
