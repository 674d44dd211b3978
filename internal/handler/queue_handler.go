package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aglm/review-api/internal/dto"
	appErrors "github.com/aglm/review-api/pkg/errors"
	"github.com/aglm/review-api/pkg/response"
)

type queueBuilder interface {
	BuildReviewQueue(ctx context.Context, repoFilter string) ([]dto.FeedbackView, error)
}

// QueueHandler exposes the aggregated review queue.
type QueueHandler struct {
	service queueBuilder
}

// NewQueueHandler builds a new handler.
func NewQueueHandler(service queueBuilder) *QueueHandler {
	return &QueueHandler{service: service}
}

// List returns the pending review queue across every repository.
func (h *QueueHandler) List(c *gin.Context) {
	views, err := h.service.BuildReviewQueue(c.Request.Context(), "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}

// ListForRepo returns the pending review queue for one repository.
func (h *QueueHandler) ListForRepo(c *gin.Context) {
	repo := c.Param("repo")
	if repo == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "repo is required"))
		return
	}
	views, err := h.service.BuildReviewQueue(c.Request.Context(), repo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}
