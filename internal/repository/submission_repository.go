package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
)

// IngestionParams holds everything one grading run produces for a repo.
type IngestionParams struct {
	RepoName         string
	AssignmentID     int64
	LegacyCode       string
	Files            []dto.IngestFile
	AutograderOutput string
	FeedbackText     string
	Timestamp        time.Time
}

// IngestionResult reports the row identifiers created by CreateIngestion.
type IngestionResult struct {
	SubmissionID int64
	FeedbackID   int64
}

// SubmissionRepository persists submissions and their attached rows.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// CreateIngestion inserts the submission, its code files, the autograder
// output and the initial unreviewed feedback row as one transaction. The
// student row is created on first sight. The legacy code blob stays
// populated on the submission for quick single-field viewing.
func (r *SubmissionRepository) CreateIngestion(ctx context.Context, params IngestionParams) (result IngestionResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin ingestion: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsertStudent = `INSERT INTO students (student_repo) VALUES ($1) ON CONFLICT (student_repo) DO NOTHING`
	if _, err = tx.ExecContext(ctx, upsertStudent, params.RepoName); err != nil {
		return result, fmt.Errorf("upsert student %s: %w", params.RepoName, err)
	}

	const insertSubmission = `
INSERT INTO submissions (student_repo, assignment_id, code, submitted_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err = tx.GetContext(ctx, &result.SubmissionID, insertSubmission,
		params.RepoName, params.AssignmentID, params.LegacyCode, params.Timestamp); err != nil {
		return result, fmt.Errorf("insert submission: %w", err)
	}

	const insertFile = `INSERT INTO code_files (submission_id, filename, code) VALUES ($1, $2, $3)`
	for _, file := range params.Files {
		if _, err = tx.ExecContext(ctx, insertFile, result.SubmissionID, file.Filename, file.Code); err != nil {
			return result, fmt.Errorf("insert code file %s: %w", file.Filename, err)
		}
	}

	const insertOutput = `INSERT INTO autograder_outputs (submission_id, output, generated_at) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, insertOutput, result.SubmissionID, params.AutograderOutput, params.Timestamp); err != nil {
		return result, fmt.Errorf("insert autograder output: %w", err)
	}

	const insertFeedback = `
INSERT INTO feedback (submission_id, repo_name, feedback_text, generated_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err = tx.GetContext(ctx, &result.FeedbackID, insertFeedback,
		result.SubmissionID, params.RepoName, params.FeedbackText, params.Timestamp); err != nil {
		return result, fmt.Errorf("insert feedback: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return result, fmt.Errorf("commit ingestion: %w", err)
	}
	return result, nil
}

// RepoExists reports whether any submission belongs to the repository.
func (r *SubmissionRepository) RepoExists(ctx context.Context, repo string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM submissions WHERE student_repo = $1)`
	if err := r.db.GetContext(ctx, &exists, query, repo); err != nil {
		return false, fmt.Errorf("check repo %s: %w", repo, err)
	}
	return exists, nil
}

// ListByRepo returns every submission of one repository, oldest first.
func (r *SubmissionRepository) ListByRepo(ctx context.Context, repo string) ([]models.Submission, error) {
	const query = `
SELECT id, student_repo, assignment_id, code, submitted_at
FROM submissions
WHERE student_repo = $1
ORDER BY submitted_at ASC, id ASC`

	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query, repo); err != nil {
		return nil, fmt.Errorf("list submissions for %s: %w", repo, err)
	}
	return subs, nil
}

// ListOutputsByRepo returns every autograder output recorded for the repo.
func (r *SubmissionRepository) ListOutputsByRepo(ctx context.Context, repo string) ([]models.AutograderOutput, error) {
	const query = `
SELECT a.id, a.submission_id, a.output, a.generated_at
FROM autograder_outputs a
JOIN submissions s ON s.id = a.submission_id
WHERE s.student_repo = $1
ORDER BY a.generated_at ASC, a.id ASC`

	var outputs []models.AutograderOutput
	if err := r.db.SelectContext(ctx, &outputs, query, repo); err != nil {
		return nil, fmt.Errorf("list autograder outputs for %s: %w", repo, err)
	}
	return outputs, nil
}
