package s3service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fico-simulator/internal/config"
	"fico-simulator/internal/models"
	s3service "fico-simulator/internal/services/s3"
)

type fakeObjects struct {
	objects map[string][]byte
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.CopySource)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func testConfig() *config.Config {
	return &config.Config{S3Bucket: "reports-bucket", ReportsPrefix: "reports/", ResultsPrefix: "results/"}
}

func TestReportKey(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

	assert.Equal(t, "reports/7c9e6679-7425-40de-944b-e07fc1f90ae7-my_report.json", s3service.ReportKey("reports/", "my report", id))
	assert.Equal(t, "reports/7c9e6679-7425-40de-944b-e07fc1f90ae7-report.json", s3service.ReportKey("reports/", "", id))
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7-credit.JSON", s3service.ReportKey("", "credit.JSON", id))
	assert.True(t, strings.HasSuffix(s3service.ReportKey("reports/", "../../etc/passwd", id), "-passwd.json"))
}

func TestArchiveAndResultKeys(t *testing.T) {
	id := uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")

	assert.Equal(t, "results/7c9e6679-7425-40de-944b-e07fc1f90ae7.json", s3service.ResultKey("results/", id))
	assert.Equal(t, "processed/a.json", s3service.ArchiveKey("reports/a.json"))
}

func TestReadReport(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["reports-bucket/reports/r1.json"] = []byte(`{
		"credit_data": {
			"accounts": [{"type": "Credit Card", "balance": "3,000", "limit": 10000}],
			"inquiries": "1",
			"average_account_age_months": 60,
			"credit_mix": {"revolving": 1}
		},
		"personalized_goals": [],
		"email": "user@example.com"
	}`)
	svc := s3service.NewWithClient(objects, nil, testConfig())

	req, err := svc.ReadReport(context.Background(), "", "reports/r1.json")
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", req.Email)
	profile := req.Profile()
	require.Len(t, profile.Accounts, 1)
	assert.Equal(t, models.AccountTypeRevolving, profile.Accounts[0].Type)
	assert.Equal(t, 3000.0, profile.Accounts[0].Balance)
	assert.Equal(t, 1, profile.InquiriesTotal)

	_, err = svc.ReadReport(context.Background(), "reports-bucket", "missing.json")
	assert.Error(t, err)
}

func TestReadReport_InvalidJSON(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["reports-bucket/bad.json"] = []byte(`not json`)
	svc := s3service.NewWithClient(objects, nil, testConfig())

	_, err := svc.ReadReport(context.Background(), "", "bad.json")
	assert.ErrorContains(t, err, "failed to decode report")
}

func TestWriteResultAndArchive(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["reports-bucket/reports/r1.json"] = []byte(`{}`)
	svc := s3service.NewWithClient(objects, nil, testConfig())

	a := models.NewAnalysis(models.AnalysisSourceS3, &models.CreditProfile{}, nil)
	key, err := svc.WriteResult(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "results/"+a.ID.String()+".json", key)
	assert.Contains(t, string(objects.objects["reports-bucket/"+key]), a.ID.String())

	dest, err := svc.Archive(context.Background(), "reports-bucket", "reports/r1.json")
	require.NoError(t, err)
	assert.Equal(t, "processed/r1.json", dest)
	assert.Contains(t, objects.objects, "reports-bucket/processed/r1.json")
	assert.NotContains(t, objects.objects, "reports-bucket/reports/r1.json")
}

type fakePresigner struct{}

func (fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://put/" + aws.ToString(in.Key), Method: "PUT"}, nil
}

func (fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://get/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key), Method: "GET"}, nil
}

func TestPresignResultDownload(t *testing.T) {
	svc := s3service.NewWithClient(newFakeObjects(), fakePresigner{}, testConfig())

	res, err := svc.PresignResultDownload(context.Background(), "results/a.json", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://get/reports-bucket/results/a.json", res.URL)
	assert.Equal(t, "results/a.json", res.Key)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
}

func TestPresignWithoutPresigner(t *testing.T) {
	svc := s3service.NewWithClient(newFakeObjects(), nil, testConfig())

	_, err := svc.PresignReportUpload(context.Background(), "r.json", 5)
	assert.Error(t, err)

	_, err = svc.PresignResultDownload(context.Background(), "results/a.json", 5)
	assert.Error(t, err)
}
