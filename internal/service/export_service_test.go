package service

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
	"github.com/aglm/review-api/pkg/config"
	appErrors "github.com/aglm/review-api/pkg/errors"
)

type exportSubmissionStub struct {
	exists      bool
	existsErr   error
	submissions []models.Submission
	outputs     []models.AutograderOutput
}

func (s exportSubmissionStub) RepoExists(ctx context.Context, repo string) (bool, error) {
	return s.exists, s.existsErr
}

func (s exportSubmissionStub) ListByRepo(ctx context.Context, repo string) ([]models.Submission, error) {
	return s.submissions, nil
}

func (s exportSubmissionStub) ListOutputsByRepo(ctx context.Context, repo string) ([]models.AutograderOutput, error) {
	return s.outputs, nil
}

type exportFeedbackStub struct {
	feedback []models.Feedback
}

func (s exportFeedbackStub) ListByRepo(ctx context.Context, repo string) ([]models.Feedback, error) {
	return s.feedback, nil
}

type fakeCache struct {
	entries map[string]dto.ReportFile
	sets    int
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*dto.ReportFile) = cached
	return nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.entries == nil {
		c.entries = map[string]dto.ReportFile{}
	}
	c.entries[key] = *value.(*dto.ReportFile)
	c.sets++
	return nil
}

func exportFixture() (exportSubmissionStub, exportFeedbackStub) {
	code := "print(1)"
	comments := "Looks fine."
	generated := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	reviewed := generated.Add(time.Hour)
	subs := exportSubmissionStub{
		exists: true,
		submissions: []models.Submission{
			{ID: 1, StudentRepo: "hw3-ada", AssignmentID: 101, Code: &code, SubmittedAt: generated},
		},
		outputs: []models.AutograderOutput{
			{ID: 1, SubmissionID: 1, Output: "2/3 passed", GeneratedAt: generated},
		},
	}
	fb := exportFeedbackStub{feedback: []models.Feedback{
		{ID: 5, SubmissionID: 1, RepoName: "hw3-ada", FeedbackText: "What about empty input?",
			GeneratedAt: generated, Reviewed: true, TeacherComments: &comments, ReviewedAt: &reviewed},
	}}
	return subs, fb
}

func TestRenderMarkdownReport(t *testing.T) {
	subs, fb := exportFixture()
	svc := NewExportService(subs, fb, nil, config.ReportsConfig{}, nil)

	report, hit, err := svc.Render(context.Background(), "hw3-ada", FormatMarkdown)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "student_data_hw3-ada.md", report.Filename)
	assert.Equal(t, "text/markdown; charset=utf-8", report.ContentType)

	body := string(report.Body)
	assert.Contains(t, body, "# Data for hw3-ada")
	assert.Contains(t, body, "## Submissions")
	assert.Contains(t, body, "print(1)")
	assert.Contains(t, body, "## Feedback")
	assert.Contains(t, body, "REVIEWED")
	assert.Contains(t, body, "Looks fine.")
	assert.Contains(t, body, "## Autograder Outputs")
	assert.Contains(t, body, "2/3 passed")
}

func TestRenderCSVReport(t *testing.T) {
	subs, fb := exportFixture()
	svc := NewExportService(subs, fb, nil, config.ReportsConfig{}, nil)

	report, _, err := svc.Render(context.Background(), "hw3-ada", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "student_data_hw3-ada.csv", report.Filename)
	assert.Equal(t, "text/csv", report.ContentType)

	body := string(report.Body)
	assert.Contains(t, body, "Feedback ID,Submission ID,State,Generated At,Reviewed At,Teacher Comments")
	assert.Contains(t, body, "5,1,REVIEWED,2026-03-01T10:00:00Z,2026-03-01T11:00:00Z,Looks fine.")
}

func TestRenderPDFReport(t *testing.T) {
	subs, fb := exportFixture()
	svc := NewExportService(subs, fb, nil, config.ReportsConfig{}, nil)

	report, _, err := svc.Render(context.Background(), "hw3-ada", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "student_data_hw3-ada.pdf", report.Filename)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, len(report.Body) > 0)
}

func TestRenderUnknownRepo(t *testing.T) {
	svc := NewExportService(exportSubmissionStub{}, exportFeedbackStub{}, nil, config.ReportsConfig{}, nil)

	_, _, err := svc.Render(context.Background(), "ghost", FormatMarkdown)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRenderUnsupportedFormat(t *testing.T) {
	svc := NewExportService(exportSubmissionStub{}, exportFeedbackStub{}, nil, config.ReportsConfig{}, nil)

	_, _, err := svc.Render(context.Background(), "hw3-ada", "docx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRenderStoreDown(t *testing.T) {
	subs := exportSubmissionStub{existsErr: driver.ErrBadConn}
	svc := NewExportService(subs, exportFeedbackStub{}, nil, config.ReportsConfig{}, nil)

	_, _, err := svc.Render(context.Background(), "hw3-ada", FormatMarkdown)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
}

func TestRenderUsesCache(t *testing.T) {
	subs, fb := exportFixture()
	cache := &fakeCache{}
	svc := NewExportService(subs, fb, cache, config.ReportsConfig{CacheTTL: time.Minute}, nil)

	first, hit, err := svc.Render(context.Background(), "hw3-ada", FormatMarkdown)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, cache.sets)

	second, hit, err := svc.Render(context.Background(), "hw3-ada", FormatMarkdown)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, 1, cache.sets)
}
