package dto

import (
	"time"

	"github.com/aglm/review-api/internal/models"
)

// CodeFileView is one file shown alongside a feedback item.
type CodeFileView struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
}

// FeedbackView is the aggregated read model for the teacher's review screen:
// one feedback item with its metadata and the full set of associated code
// files. It is assembled from joined rows, never stored.
type FeedbackView struct {
	ID              int64              `json:"id"`
	SubmissionID    int64              `json:"submission_id"`
	RepoName        string             `json:"repo_name"`
	FeedbackText    string             `json:"feedback_text"`
	GeneratedAt     time.Time          `json:"generated_at"`
	State           models.ReviewState `json:"state"`
	TeacherComments *string            `json:"teacher_comments,omitempty"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	CodeFiles       []CodeFileView     `json:"code_files"`
}

// RepoSummary is one entry of the teacher's home view listing.
type RepoSummary struct {
	RepoName     string `json:"repo_name"`
	PendingCount int    `json:"pending_count"`
	AtRisk       bool   `json:"at_risk"`
}

// MarkReviewedRequest carries a teacher decision for one feedback item.
// An empty comment is permitted.
type MarkReviewedRequest struct {
	TeacherComments string `json:"teacher_comments"`
}
