package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/service"
	appErrors "github.com/aglm/review-api/pkg/errors"
	"github.com/aglm/review-api/pkg/response"
)

type reportRenderer interface {
	Render(ctx context.Context, repo, format string) (*dto.ReportFile, bool, error)
}

// ReportHandler serves downloadable repo history reports.
type ReportHandler struct {
	service reportRenderer
}

// NewReportHandler builds a new handler.
func NewReportHandler(service reportRenderer) *ReportHandler {
	return &ReportHandler{service: service}
}

// Download renders the repository report in the requested format
// (markdown, csv or pdf; defaults to markdown) and streams it inline.
func (h *ReportHandler) Download(c *gin.Context) {
	repo := c.Param("repo")
	if repo == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "repo is required"))
		return
	}
	format := c.DefaultQuery("format", service.FormatMarkdown)

	report, cacheHit, err := h.service.Render(c.Request.Context(), repo, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Header("X-Cache", cacheStatus(cacheHit))
	c.Data(http.StatusOK, report.ContentType, report.Body)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
