package migrations

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Migrator applies the canonical schema and the one-time legacy adapters.
// Earlier schema generations stored only the whole-submission code blob and
// lacked the denormalized repo_name on feedback; migrations converge those
// rows onto the current shape instead of branching read logic per version.
type Migrator struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMigrator creates a migrator bound to the given database.
func NewMigrator(db *sqlx.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, logger: logger}
}

type migration struct {
	version string
	stmts   []string
}

var all = []migration{
	{
		version: "001_schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS students (
				student_repo    TEXT PRIMARY KEY,
				additional_data TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS assignments (
				id          BIGINT PRIMARY KEY,
				description TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS submissions (
				id            BIGSERIAL PRIMARY KEY,
				student_repo  TEXT NOT NULL REFERENCES students(student_repo),
				assignment_id BIGINT NOT NULL REFERENCES assignments(id),
				code          TEXT,
				submitted_at  TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS code_files (
				id            BIGSERIAL PRIMARY KEY,
				submission_id BIGINT NOT NULL REFERENCES submissions(id),
				filename      TEXT NOT NULL,
				code          TEXT NOT NULL,
				UNIQUE (submission_id, filename)
			)`,
			`CREATE TABLE IF NOT EXISTS autograder_outputs (
				id            BIGSERIAL PRIMARY KEY,
				submission_id BIGINT NOT NULL REFERENCES submissions(id),
				output        TEXT NOT NULL,
				generated_at  TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS feedback (
				id               BIGSERIAL PRIMARY KEY,
				submission_id    BIGINT NOT NULL REFERENCES submissions(id),
				repo_name        TEXT NOT NULL,
				feedback_text    TEXT NOT NULL,
				generated_at     TIMESTAMPTZ NOT NULL,
				reviewed         BOOLEAN NOT NULL DEFAULT FALSE,
				teacher_comments TEXT,
				reviewed_at      TIMESTAMPTZ,
				CHECK (reviewed = (reviewed_at IS NOT NULL))
			)`,
			`CREATE INDEX IF NOT EXISTS idx_feedback_repo ON feedback (repo_name, reviewed)`,
			`CREATE INDEX IF NOT EXISTS idx_codefiles_sub ON code_files (submission_id)`,
		},
	},
	{
		// Legacy feedback rows predate the denormalized repo_name column and
		// carry an empty value. Backfill once from the owning submission;
		// after this point divergence is an integrity error, never repaired.
		version: "002_backfill_repo_name",
		stmts: []string{
			`UPDATE feedback f
			 SET repo_name = s.student_repo
			 FROM submissions s
			 WHERE s.id = f.submission_id AND (f.repo_name = '' OR f.repo_name IS NULL)`,
		},
	},
}

// Run applies every pending migration in order, each inside one transaction.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.ensureVersionTable(ctx); err != nil {
		return err
	}

	for _, mig := range all {
		applied, err := m.isApplied(ctx, mig.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return err
		}
		m.logger.Sugar().Infow("migration applied", "version", mig.version)
	}
	return nil
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) isApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`
	if err := m.db.GetContext(ctx, &exists, query, version); err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}

func (m *Migrator) apply(ctx context.Context, mig migration) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", mig.version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range mig.stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", mig.version, err)
		}
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, mig.version); err != nil {
		return fmt.Errorf("record migration %s: %w", mig.version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", mig.version, err)
	}
	return nil
}
