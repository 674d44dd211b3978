package dto

// IngestFile is one (path, content) pair collected from a student repo.
type IngestFile struct {
	Filename string `json:"filename" validate:"required"`
	Code     string `json:"code"`
}

// IngestRequest is one ingestion event: everything produced by a grading run
// for a single repository. FeedbackText may be supplied directly; when empty
// the reviewer generates it from the files and autograder output.
type IngestRequest struct {
	RepoName         string       `json:"repo_name" validate:"required"`
	AssignmentID     int64        `json:"assignment_id" validate:"required,gt=0"`
	Files            []IngestFile `json:"files" validate:"required,min=1,dive"`
	AutograderOutput string       `json:"autograder_output"`
	Instructions     string       `json:"instructions"`
	FeedbackText     string       `json:"feedback_text"`
}

// IngestResult reports the rows created by one ingestion event.
type IngestResult struct {
	SubmissionID int64 `json:"submission_id"`
	FeedbackID   int64 `json:"feedback_id"`
}

// IngestAccepted is returned when ingestion runs asynchronously.
type IngestAccepted struct {
	JobID string `json:"job_id"`
}
