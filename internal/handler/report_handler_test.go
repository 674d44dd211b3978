package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/service"
	appErrors "github.com/aglm/review-api/pkg/errors"
)

type reportServiceMock struct {
	resp       *dto.ReportFile
	hit        bool
	err        error
	lastRepo   string
	lastFormat string
}

func (m *reportServiceMock) Render(ctx context.Context, repo, format string) (*dto.ReportFile, bool, error) {
	m.lastRepo = repo
	m.lastFormat = format
	return m.resp, m.hit, m.err
}

func TestReportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{resp: &dto.ReportFile{
		Filename:    "student_data_hw3-ada.md",
		ContentType: "text/markdown; charset=utf-8",
		Body:        []byte("# Data for hw3-ada\n"),
	}}
	h := NewReportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/repos/hw3-ada/report", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "repo", Value: "hw3-ada"}}

	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hw3-ada", mockSvc.lastRepo)
	assert.Equal(t, service.FormatMarkdown, mockSvc.lastFormat)
	assert.Equal(t, `attachment; filename="student_data_hw3-ada.md"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, "# Data for hw3-ada\n", w.Body.String())
}

func TestReportHandlerDownloadFormatAndCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{hit: true, resp: &dto.ReportFile{
		Filename:    "student_data_hw3-ada.csv",
		ContentType: "text/csv",
		Body:        []byte("Feedback ID,State\n"),
	}}
	h := NewReportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/repos/hw3-ada/report?format=csv", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "repo", Value: "hw3-ada"}}

	h.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.FormatCSV, mockSvc.lastFormat)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}

func TestReportHandlerUnknownRepo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "no data found for repository ghost")}
	h := NewReportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/repos/ghost/report", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "repo", Value: "ghost"}}

	h.Download(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
