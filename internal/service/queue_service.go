package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/repository"
	"github.com/aglm/review-api/pkg/config"
	appErrors "github.com/aglm/review-api/pkg/errors"
)

const defaultLegacyFilename = "submission.py"

type queueStore interface {
	ListQueueRows(ctx context.Context, repoFilter string) ([]repository.QueueRow, error)
}

type queueMetrics interface {
	ObserveQueueBuild(duration time.Duration)
}

// QueueService assembles the nested review queue from flattened join rows.
type QueueService struct {
	repo           queueStore
	legacyFilename string
	metrics        queueMetrics
	logger         *zap.Logger
}

// NewQueueService builds a QueueService. Metrics may be nil.
func NewQueueService(repo queueStore, cfg config.QueueConfig, metrics queueMetrics, logger *zap.Logger) *QueueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	legacy := cfg.LegacyFilename
	if legacy == "" {
		legacy = defaultLegacyFilename
	}
	return &QueueService{repo: repo, legacyFilename: legacy, metrics: metrics, logger: logger}
}

// BuildReviewQueue returns every unreviewed feedback item, each with its
// full set of code files, optionally restricted to one repository. Rows are
// folded once, keyed by feedback id, preserving the store's ordering: repo
// ascending, generation time descending, filename ascending.
//
// Fallback rule: a view that accumulated no code files borrows the owning
// submission's legacy blob as a single synthesized file. One real code file
// suppresses the fallback entirely.
func (s *QueueService) BuildReviewQueue(ctx context.Context, repoFilter string) ([]dto.FeedbackView, error) {
	start := time.Now()
	rows, err := s.repo.ListQueueRows(ctx, repoFilter)
	if err != nil {
		return nil, appErrors.StoreError(err, "failed to load review queue")
	}

	views := make([]dto.FeedbackView, 0)
	index := make(map[int64]int)
	legacyByID := make(map[int64]string)
	seenFiles := make(map[int64]map[string]struct{})

	for _, row := range rows {
		if row.RepoName != row.StudentRepo {
			s.logger.Sugar().Errorw("denormalized repo_name diverged",
				"feedback_id", row.FeedbackID,
				"repo_name", row.RepoName,
				"student_repo", row.StudentRepo,
			)
			return nil, appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("feedback %d repo_name %q does not match submission owner %q", row.FeedbackID, row.RepoName, row.StudentRepo))
		}

		i, ok := index[row.FeedbackID]
		if !ok {
			views = append(views, dto.FeedbackView{
				ID:              row.FeedbackID,
				SubmissionID:    row.SubmissionID,
				RepoName:        row.RepoName,
				FeedbackText:    row.FeedbackText,
				GeneratedAt:     row.GeneratedAt,
				State:           stateOf(row.Reviewed),
				TeacherComments: row.TeacherComments,
				ReviewedAt:      row.ReviewedAt,
				CodeFiles:       []dto.CodeFileView{},
			})
			i = len(views) - 1
			index[row.FeedbackID] = i
			seenFiles[row.FeedbackID] = make(map[string]struct{})
			if row.LegacyCode != nil {
				legacyByID[row.FeedbackID] = *row.LegacyCode
			}
		}

		if row.Filename == nil {
			continue
		}
		if _, dup := seenFiles[row.FeedbackID][*row.Filename]; dup {
			continue
		}
		seenFiles[row.FeedbackID][*row.Filename] = struct{}{}

		code := ""
		if row.FileCode != nil {
			code = *row.FileCode
		}
		views[i].CodeFiles = append(views[i].CodeFiles, dto.CodeFileView{Filename: *row.Filename, Code: code})
	}

	for i := range views {
		if len(views[i].CodeFiles) > 0 {
			continue
		}
		blob := legacyByID[views[i].ID]
		if blob == "" {
			continue
		}
		views[i].CodeFiles = append(views[i].CodeFiles, dto.CodeFileView{Filename: s.legacyFilename, Code: blob})
	}

	if s.metrics != nil {
		s.metrics.ObserveQueueBuild(time.Since(start))
	}
	return views, nil
}
