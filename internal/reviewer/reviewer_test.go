package reviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aglm/review-api/internal/dto"
)

func TestCodeBlobConcatenatesFiles(t *testing.T) {
	blob := CodeBlob([]dto.IngestFile{
		{Filename: "main.py", Code: "print(1)"},
		{Filename: "util.py", Code: "def f():\n    pass"},
	})
	assert.Equal(t, "File: main.py\nprint(1)\n\nFile: util.py\ndef f():\n    pass\n\n", blob)
}

func TestCodeBlobEmpty(t *testing.T) {
	assert.Equal(t, "", CodeBlob(nil))
}

func TestBuildPromptForbidsCorrections(t *testing.T) {
	prompt := BuildPrompt(Request{
		Files:            []dto.IngestFile{{Filename: "main.py", Code: "print(1)"}},
		AutograderOutput: "all passed",
		Instructions:     "focus on style",
	})

	assert.True(t, len(prompt) > 0)
	assert.Contains(t, prompt, "DO NOT CORRECT THE CODE! Provide question-based guided feedback only.\n\n")
	assert.Contains(t, prompt, "**Student Code**\nFile: main.py\nprint(1)\n\n\n")
	assert.Contains(t, prompt, "**Autograder Output**\nall passed\n")
	assert.Contains(t, prompt, "**Professor Instructions**\nfocus on style\n")
}
