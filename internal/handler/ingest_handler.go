package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aglm/review-api/internal/dto"
	appErrors "github.com/aglm/review-api/pkg/errors"
	"github.com/aglm/review-api/pkg/response"
)

type ingestService interface {
	Ingest(ctx context.Context, req dto.IngestRequest) (*dto.IngestResult, error)
	Enqueue(req dto.IngestRequest) (*dto.IngestAccepted, error)
	Async() bool
}

// IngestHandler accepts grading-run ingestion events.
type IngestHandler struct {
	service ingestService
}

// NewIngestHandler builds a new handler.
func NewIngestHandler(service ingestService) *IngestHandler {
	return &IngestHandler{service: service}
}

// Create persists one ingestion event. In async mode the event is queued and
// the call returns 202 with a job id.
func (h *IngestHandler) Create(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ingestion payload"))
		return
	}

	if h.service.Async() {
		accepted, err := h.service.Enqueue(req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, accepted)
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
