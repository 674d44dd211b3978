// Package reviewer generates guided feedback for a submission by calling an
// OpenAI-compatible completion endpoint. The usual deployment points it at a
// locally served fine-tuned model.
package reviewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/aglm/review-api/internal/dto"
)

// Request carries everything the model needs to produce feedback.
type Request struct {
	RepoName         string
	Files            []dto.IngestFile
	AutograderOutput string
	Instructions     string
}

// Reviewer produces free-text feedback for one submission.
type Reviewer interface {
	Review(ctx context.Context, req Request) (string, error)
}

// CodeBlob concatenates the submission files into the single-string form
// used both in the prompt and in the legacy submissions.code column.
func CodeBlob(files []dto.IngestFile) string {
	var b strings.Builder
	for _, file := range files {
		fmt.Fprintf(&b, "File: %s\n%s\n\n", file.Filename, file.Code)
	}
	return b.String()
}

// BuildPrompt assembles the guided-feedback prompt. The model is instructed
// to ask questions rather than hand out corrections.
func BuildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("DO NOT CORRECT THE CODE! Provide question-based guided feedback only.\n\n")
	fmt.Fprintf(&b, "**Student Code**\n%s\n", CodeBlob(req.Files))
	fmt.Fprintf(&b, "**Autograder Output**\n%s\n", req.AutograderOutput)
	fmt.Fprintf(&b, "**Professor Instructions**\n%s\n", req.Instructions)
	return b.String()
}
