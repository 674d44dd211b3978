package models

// Student is a write-once row identified by its repository slug
// (e.g. "hw3-LeonardAlmeida").
type Student struct {
	Repo           string  `db:"student_repo" json:"student_repo"`
	AdditionalData *string `db:"additional_data" json:"additional_data,omitempty"`
}
