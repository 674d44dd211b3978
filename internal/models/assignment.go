package models

// Assignment is static reference data describing one graded exercise.
type Assignment struct {
	ID          int64  `db:"id" json:"id"`
	Description string `db:"description" json:"description"`
}
