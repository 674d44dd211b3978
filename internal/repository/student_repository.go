package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aglm/review-api/internal/models"
)

// StudentRepository manages the administratively created reference rows.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateStudent inserts a student row, ignoring duplicates. The repo slug is
// immutable once created.
func (r *StudentRepository) CreateStudent(ctx context.Context, student models.Student) error {
	const query = `
INSERT INTO students (student_repo, additional_data)
VALUES ($1, $2)
ON CONFLICT (student_repo) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, student.Repo, student.AdditionalData); err != nil {
		return fmt.Errorf("create student %s: %w", student.Repo, err)
	}
	return nil
}

// ListStudents returns every student, ascending by repo slug.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT student_repo, additional_data FROM students ORDER BY student_repo ASC`

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// CreateAssignment inserts an assignment description under a fixed id.
func (r *StudentRepository) CreateAssignment(ctx context.Context, assignment models.Assignment) error {
	const query = `
INSERT INTO assignments (id, description)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET description = EXCLUDED.description`
	if _, err := r.db.ExecContext(ctx, query, assignment.ID, assignment.Description); err != nil {
		return fmt.Errorf("create assignment %d: %w", assignment.ID, err)
	}
	return nil
}

// GetAssignment fetches one assignment. Returns nil when absent.
func (r *StudentRepository) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	const query = `SELECT id, description FROM assignments WHERE id = $1`

	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment %d: %w", id, err)
	}
	return &assignment, nil
}

// ListAssignments returns every assignment, ascending by id.
func (r *StudentRepository) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	const query = `SELECT id, description FROM assignments ORDER BY id ASC`

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
