package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
	appErrors "github.com/aglm/review-api/pkg/errors"
	"github.com/aglm/review-api/pkg/response"
)

type reviewMarker interface {
	MarkReviewed(ctx context.Context, id int64, req dto.MarkReviewedRequest) (*models.Feedback, error)
}

// ReviewHandler accepts teacher review decisions.
type ReviewHandler struct {
	service reviewMarker
}

// NewReviewHandler builds a new handler.
func NewReviewHandler(service reviewMarker) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// MarkReviewed flips one feedback item to reviewed with the submitted
// teacher comment. An absent or empty comment is accepted.
func (h *ReviewHandler) MarkReviewed(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "feedback id must be an integer"))
		return
	}

	// A body-less POST is a review with no comment.
	var req dto.MarkReviewedRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	item, err := h.service.MarkReviewed(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}
