package models

import "time"

// ReviewState is the lifecycle position of a feedback row.
type ReviewState string

const (
	ReviewStateUnreviewed ReviewState = "UNREVIEWED"
	ReviewStateReviewed   ReviewState = "REVIEWED"
)

// Feedback is one model-generated feedback item. RepoName is a denormalized
// copy of the owning submission's student repo; the two must always agree.
// ReviewedAt is set iff Reviewed is true.
type Feedback struct {
	ID              int64      `db:"id" json:"id"`
	SubmissionID    int64      `db:"submission_id" json:"submission_id"`
	RepoName        string     `db:"repo_name" json:"repo_name"`
	FeedbackText    string     `db:"feedback_text" json:"feedback_text"`
	GeneratedAt     time.Time  `db:"generated_at" json:"generated_at"`
	Reviewed        bool       `db:"reviewed" json:"-"`
	TeacherComments *string    `db:"teacher_comments" json:"teacher_comments,omitempty"`
	ReviewedAt      *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// State maps the stored flag onto the review lifecycle.
func (f Feedback) State() ReviewState {
	if f.Reviewed {
		return ReviewStateReviewed
	}
	return ReviewStateUnreviewed
}
