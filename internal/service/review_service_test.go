package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
	appErrors "github.com/aglm/review-api/pkg/errors"
)

type reviewStoreStub struct {
	err      error
	missing  bool
	comments []string
	stamps   []time.Time
}

func (s *reviewStoreStub) MarkReviewed(ctx context.Context, id int64, comment string, reviewedAt time.Time) (*models.Feedback, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.missing {
		return nil, nil
	}
	s.comments = append(s.comments, comment)
	s.stamps = append(s.stamps, reviewedAt)
	c := comment
	at := reviewedAt
	return &models.Feedback{
		ID:              id,
		SubmissionID:    10,
		RepoName:        "hw3-ada",
		FeedbackText:    "check loop",
		Reviewed:        true,
		TeacherComments: &c,
		ReviewedAt:      &at,
	}, nil
}

func TestMarkReviewedSetsCommentAndTimestamp(t *testing.T) {
	store := &reviewStoreStub{}
	svc := NewReviewService(store, nil, nil)

	item, err := svc.MarkReviewed(context.Background(), 1, dto.MarkReviewedRequest{TeacherComments: "fixed, good job"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStateReviewed, item.State())
	require.NotNil(t, item.TeacherComments)
	assert.Equal(t, "fixed, good job", *item.TeacherComments)
	require.NotNil(t, item.ReviewedAt)
	assert.Equal(t, time.UTC, item.ReviewedAt.Location())
}

func TestMarkReviewedEmptyCommentPermitted(t *testing.T) {
	store := &reviewStoreStub{}
	svc := NewReviewService(store, nil, nil)

	item, err := svc.MarkReviewed(context.Background(), 1, dto.MarkReviewedRequest{})
	require.NoError(t, err)
	require.NotNil(t, item.TeacherComments)
	assert.Equal(t, "", *item.TeacherComments)
}

func TestMarkReviewedIdempotentLastWriteWins(t *testing.T) {
	store := &reviewStoreStub{}
	svc := NewReviewService(store, nil, nil)

	first, err := svc.MarkReviewed(context.Background(), 1, dto.MarkReviewedRequest{TeacherComments: "a"})
	require.NoError(t, err)
	second, err := svc.MarkReviewed(context.Background(), 1, dto.MarkReviewedRequest{TeacherComments: "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, store.comments)
	assert.Equal(t, "b", *second.TeacherComments)
	assert.False(t, second.ReviewedAt.Before(*first.ReviewedAt))
}

func TestMarkReviewedNotFound(t *testing.T) {
	store := &reviewStoreStub{missing: true}
	svc := NewReviewService(store, nil, nil)

	_, err := svc.MarkReviewed(context.Background(), 99, dto.MarkReviewedRequest{TeacherComments: "late"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestMarkReviewedInvalidID(t *testing.T) {
	svc := NewReviewService(&reviewStoreStub{}, nil, nil)

	_, err := svc.MarkReviewed(context.Background(), 0, dto.MarkReviewedRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
