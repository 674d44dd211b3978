package models

import "time"

// Submission is one graded ingestion of a student repository. Code holds the
// legacy whole-submission blob from the previous schema generation; newer
// rows carry it alongside per-file CodeFile rows.
type Submission struct {
	ID           int64     `db:"id" json:"id"`
	StudentRepo  string    `db:"student_repo" json:"student_repo"`
	AssignmentID int64     `db:"assignment_id" json:"assignment_id"`
	Code         *string   `db:"code" json:"code,omitempty"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

// CodeFile is one file attached to a submission. Filenames are unique per
// submission.
type CodeFile struct {
	ID           int64  `db:"id" json:"id"`
	SubmissionID int64  `db:"submission_id" json:"submission_id"`
	Filename     string `db:"filename" json:"filename"`
	Code         string `db:"code" json:"code"`
}

// AutograderOutput is the raw grader output captured with a submission.
type AutograderOutput struct {
	ID           int64     `db:"id" json:"id"`
	SubmissionID int64     `db:"submission_id" json:"submission_id"`
	Output       string    `db:"output" json:"output"`
	GeneratedAt  time.Time `db:"generated_at" json:"generated_at"`
}
