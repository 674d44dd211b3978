package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
	appErrors "github.com/aglm/review-api/pkg/errors"
)

type reviewStore interface {
	MarkReviewed(ctx context.Context, id int64, comment string, reviewedAt time.Time) (*models.Feedback, error)
}

type reviewMetrics interface {
	ObserveReview()
}

// ReviewService drives the UNREVIEWED -> REVIEWED transition of feedback
// items. There is no transition back.
type ReviewService struct {
	repo    reviewStore
	metrics reviewMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewReviewService builds a ReviewService. Metrics may be nil.
func NewReviewService(repo reviewStore, metrics reviewMetrics, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{repo: repo, metrics: metrics, logger: logger, now: time.Now}
}

// MarkReviewed records a teacher decision: state flips to REVIEWED, the
// comment is stored verbatim (empty permitted) and reviewed_at is stamped,
// as one atomic write. Re-reviewing an already reviewed item is allowed and
// overwrites comment and timestamp, last write wins.
func (s *ReviewService) MarkReviewed(ctx context.Context, id int64, req dto.MarkReviewedRequest) (*models.Feedback, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "feedback id must be positive")
	}

	item, err := s.repo.MarkReviewed(ctx, id, req.TeacherComments, s.now().UTC())
	if err != nil {
		return nil, appErrors.StoreError(err, "failed to mark feedback reviewed")
	}
	if item == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "feedback item not found")
	}

	if s.metrics != nil {
		s.metrics.ObserveReview()
	}
	s.logger.Sugar().Infow("feedback reviewed", "feedback_id", item.ID, "repo", item.RepoName)
	return item, nil
}

func stateOf(reviewed bool) models.ReviewState {
	if reviewed {
		return models.ReviewStateReviewed
	}
	return models.ReviewStateUnreviewed
}
