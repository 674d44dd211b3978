package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aglm/review-api/internal/models"
)

// QueueRow is one flattened row of the review-queue join: a pending feedback
// item with its submission and at most one code file. File columns are NULL
// when the submission has no code_files rows.
type QueueRow struct {
	FeedbackID      int64      `db:"feedback_id"`
	SubmissionID    int64      `db:"submission_id"`
	RepoName        string     `db:"repo_name"`
	StudentRepo     string     `db:"student_repo"`
	FeedbackText    string     `db:"feedback_text"`
	GeneratedAt     time.Time  `db:"generated_at"`
	Reviewed        bool       `db:"reviewed"`
	TeacherComments *string    `db:"teacher_comments"`
	ReviewedAt      *time.Time `db:"reviewed_at"`
	LegacyCode      *string    `db:"legacy_code"`
	Filename        *string    `db:"filename"`
	FileCode        *string    `db:"file_code"`
}

// RepoPending is one repository with its count of unreviewed feedback items.
type RepoPending struct {
	RepoName     string `db:"repo_name"`
	PendingCount int    `db:"pending_count"`
}

// CommentRow carries one teacher comment with its grouping keys for the
// recurring-issue scan.
type CommentRow struct {
	RepoName        string  `db:"repo_name"`
	SubmissionID    int64   `db:"submission_id"`
	TeacherComments *string `db:"teacher_comments"`
}

// FeedbackRepository provides persistence for feedback items and the joined
// review-queue projection.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// ListQueueRows returns the flattened join for every unreviewed feedback
// item, optionally restricted to one repository. Ordering is repo ascending,
// then generation time descending, then filename ascending — the fold in the
// queue service depends on rows of one item arriving contiguously.
func (r *FeedbackRepository) ListQueueRows(ctx context.Context, repoFilter string) ([]QueueRow, error) {
	query := strings.Builder{}
	query.WriteString(`
SELECT
	f.id AS feedback_id,
	f.submission_id,
	f.repo_name,
	f.feedback_text,
	f.generated_at,
	f.reviewed,
	f.teacher_comments,
	f.reviewed_at,
	s.student_repo,
	s.code AS legacy_code,
	cf.filename,
	cf.code AS file_code
FROM feedback f
JOIN submissions s ON s.id = f.submission_id
LEFT JOIN code_files cf ON cf.submission_id = s.id
WHERE f.reviewed = FALSE`)

	args := []interface{}{}
	if repoFilter != "" {
		args = append(args, repoFilter)
		fmt.Fprintf(&query, " AND f.repo_name = $%d", len(args))
	}
	query.WriteString("\nORDER BY f.repo_name ASC, f.generated_at DESC, f.id ASC, cf.filename ASC")

	var rows []QueueRow
	if err := r.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list queue rows: %w", err)
	}
	return rows, nil
}

// MarkReviewed flips one feedback item to reviewed, storing the comment
// verbatim and stamping reviewedAt, all in a single statement. Re-reviewing
// an already reviewed item overwrites comment and timestamp. Returns nil
// when the item does not exist.
func (r *FeedbackRepository) MarkReviewed(ctx context.Context, id int64, comment string, reviewedAt time.Time) (*models.Feedback, error) {
	const query = `
UPDATE feedback
SET reviewed = TRUE, teacher_comments = $1, reviewed_at = $2
WHERE id = $3
RETURNING id, submission_id, repo_name, feedback_text, generated_at, reviewed, teacher_comments, reviewed_at`

	var item models.Feedback
	if err := r.db.GetContext(ctx, &item, query, comment, reviewedAt, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("mark feedback %d reviewed: %w", id, err)
	}
	return &item, nil
}

// PendingRepos lists repositories holding at least one unreviewed feedback
// item, ascending, with their pending counts.
func (r *FeedbackRepository) PendingRepos(ctx context.Context) ([]RepoPending, error) {
	const query = `
SELECT repo_name, COUNT(*) AS pending_count
FROM feedback
WHERE reviewed = FALSE
GROUP BY repo_name
ORDER BY repo_name ASC`

	var repos []RepoPending
	if err := r.db.SelectContext(ctx, &repos, query); err != nil {
		return nil, fmt.Errorf("list pending repos: %w", err)
	}
	return repos, nil
}

// CommentRows returns teacher comments across the feedback history,
// optionally restricted to one repository. Rows without a comment are
// excluded up front; they can never contribute keyword hits.
func (r *FeedbackRepository) CommentRows(ctx context.Context, repoFilter string) ([]CommentRow, error) {
	query := strings.Builder{}
	query.WriteString(`
SELECT f.repo_name, f.submission_id, f.teacher_comments
FROM feedback f
WHERE f.teacher_comments IS NOT NULL`)

	args := []interface{}{}
	if repoFilter != "" {
		args = append(args, repoFilter)
		fmt.Fprintf(&query, " AND f.repo_name = $%d", len(args))
	}
	query.WriteString("\nORDER BY f.repo_name ASC, f.submission_id ASC")

	var rows []CommentRow
	if err := r.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list comment rows: %w", err)
	}
	return rows, nil
}

// ListByRepo returns every feedback item of one repository, newest first.
func (r *FeedbackRepository) ListByRepo(ctx context.Context, repo string) ([]models.Feedback, error) {
	const query = `
SELECT id, submission_id, repo_name, feedback_text, generated_at, reviewed, teacher_comments, reviewed_at
FROM feedback
WHERE repo_name = $1
ORDER BY generated_at DESC, id ASC`

	var items []models.Feedback
	if err := r.db.SelectContext(ctx, &items, query, repo); err != nil {
		return nil, fmt.Errorf("list feedback for %s: %w", repo, err)
	}
	return items, nil
}
