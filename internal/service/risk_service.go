package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/repository"
	"github.com/aglm/review-api/pkg/config"
	appErrors "github.com/aglm/review-api/pkg/errors"
)

type riskStore interface {
	PendingRepos(ctx context.Context) ([]repository.RepoPending, error)
	CommentRows(ctx context.Context, repoFilter string) ([]repository.CommentRow, error)
}

// RiskService scans historical teacher commentary for recurring issue
// topics. It is a best-effort substring heuristic over free text, evaluated
// fresh on every query; no flag state is ever persisted.
type RiskService struct {
	repo      riskStore
	keywords  []string
	threshold int
	logger    *zap.Logger
}

// NewRiskService builds a RiskService from the configured keyword set and
// threshold.
func NewRiskService(repo riskStore, cfg config.RiskConfig, logger *zap.Logger) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 3
	}
	return &RiskService{repo: repo, keywords: keywords, threshold: threshold, logger: logger}
}

// FlagAtRisk reports whether any single submission of the repository has
// accumulated at least threshold keyword hits across its teacher comments.
func (s *RiskService) FlagAtRisk(ctx context.Context, repo string) (bool, error) {
	rows, err := s.repo.CommentRows(ctx, repo)
	if err != nil {
		return false, appErrors.StoreError(err, "failed to scan feedback history")
	}
	return s.scan(rows)[repo], nil
}

// ListRepos returns the teacher's home view: every repository with pending
// feedback, its unreviewed count and its at-risk flag, ascending by repo.
func (s *RiskService) ListRepos(ctx context.Context) ([]dto.RepoSummary, error) {
	pending, err := s.repo.PendingRepos(ctx)
	if err != nil {
		return nil, appErrors.StoreError(err, "failed to list pending repositories")
	}
	comments, err := s.repo.CommentRows(ctx, "")
	if err != nil {
		return nil, appErrors.StoreError(err, "failed to scan feedback history")
	}

	flagged := s.scan(comments)
	summaries := make([]dto.RepoSummary, 0, len(pending))
	for _, p := range pending {
		summaries = append(summaries, dto.RepoSummary{
			RepoName:     p.RepoName,
			PendingCount: p.PendingCount,
			AtRisk:       flagged[p.RepoName],
		})
	}
	return summaries, nil
}

// scan accumulates keyword hits per (repo, submission). A missing or empty
// comment contributes nothing. Any submission reaching the threshold flags
// its repository.
func (s *RiskService) scan(rows []repository.CommentRow) map[string]bool {
	hits := make(map[string]map[int64]int)
	for _, row := range rows {
		if row.TeacherComments == nil {
			continue
		}
		comment := strings.ToLower(*row.TeacherComments)
		if comment == "" {
			continue
		}
		count := 0
		for _, kw := range s.keywords {
			if strings.Contains(comment, kw) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		perSubmission := hits[row.RepoName]
		if perSubmission == nil {
			perSubmission = make(map[int64]int)
			hits[row.RepoName] = perSubmission
		}
		perSubmission[row.SubmissionID] += count
	}

	flagged := make(map[string]bool)
	for repo, perSubmission := range hits {
		for _, count := range perSubmission {
			if count >= s.threshold {
				flagged[repo] = true
				break
			}
		}
	}
	return flagged
}
