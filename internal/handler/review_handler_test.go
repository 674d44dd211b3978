package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
	appErrors "github.com/aglm/review-api/pkg/errors"
	"github.com/aglm/review-api/pkg/response"
)

type reviewServiceMock struct {
	resp    *models.Feedback
	err     error
	lastID  int64
	lastReq dto.MarkReviewedRequest
	called  bool
}

func (m *reviewServiceMock) MarkReviewed(ctx context.Context, id int64, req dto.MarkReviewedRequest) (*models.Feedback, error) {
	m.called = true
	m.lastID = id
	m.lastReq = req
	return m.resp, m.err
}

func TestReviewHandlerMarkReviewed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reviewedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comments := "Ask about the base case."
	mockSvc := &reviewServiceMock{resp: &models.Feedback{
		ID: 5, SubmissionID: 1, RepoName: "hw3-ada",
		Reviewed: true, TeacherComments: &comments, ReviewedAt: &reviewedAt,
	}}
	h := NewReviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewBufferString(`{"teacher_comments":"Ask about the base case."}`)
	req, _ := http.NewRequest(http.MethodPost, "/feedback/5/review", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.MarkReviewed(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.called)
	assert.Equal(t, int64(5), mockSvc.lastID)
	assert.Equal(t, "Ask about the base case.", mockSvc.lastReq.TeacherComments)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestReviewHandlerEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reviewedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comments := ""
	mockSvc := &reviewServiceMock{resp: &models.Feedback{
		ID: 5, SubmissionID: 1, RepoName: "hw3-ada",
		Reviewed: true, TeacherComments: &comments, ReviewedAt: &reviewedAt,
	}}
	h := NewReviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/feedback/5/review", bytes.NewBufferString(""))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.MarkReviewed(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.called)
	assert.Equal(t, "", mockSvc.lastReq.TeacherComments)
}

func TestReviewHandlerNonNumericID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{}
	h := NewReviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/feedback/abc/review", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.MarkReviewed(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.called)
}

func TestReviewHandlerMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{}
	h := NewReviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/feedback/5/review", bytes.NewBufferString(`{"teacher_comments":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.MarkReviewed(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.called)
}

func TestReviewHandlerNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "feedback 99 not found")}
	h := NewReviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/feedback/99/review", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	h.MarkReviewed(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}
