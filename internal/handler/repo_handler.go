package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/pkg/response"
)

type repoLister interface {
	ListRepos(ctx context.Context) ([]dto.RepoSummary, error)
}

// RepoHandler serves the teacher's home view listing.
type RepoHandler struct {
	service repoLister
}

// NewRepoHandler builds a new handler.
func NewRepoHandler(service repoLister) *RepoHandler {
	return &RepoHandler{service: service}
}

// List returns every repository with pending feedback, its unreviewed count
// and its at-risk flag.
func (h *RepoHandler) List(c *gin.Context) {
	repos, err := h.service.ListRepos(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, repos)
}
