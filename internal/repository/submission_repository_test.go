package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglm/review-api/internal/dto"
)

func TestSubmissionRepositoryCreateIngestion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs("hw3-ada").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO submissions")).
		WithArgs("hw3-ada", int64(101), "File: main.py\nprint(1)\n\n", ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO code_files")).
		WithArgs(int64(7), "main.py", "print(1)").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO autograder_outputs")).
		WithArgs(int64(7), "all tests passed", ts).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO feedback")).
		WithArgs(int64(7), "hw3-ada", "Consider edge cases.", ts).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectCommit()

	result, err := repo.CreateIngestion(context.Background(), IngestionParams{
		RepoName:         "hw3-ada",
		AssignmentID:     101,
		LegacyCode:       "File: main.py\nprint(1)\n\n",
		Files:            []dto.IngestFile{{Filename: "main.py", Code: "print(1)"}},
		AutograderOutput: "all tests passed",
		FeedbackText:     "Consider edge cases.",
		Timestamp:        ts,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.SubmissionID)
	assert.Equal(t, int64(3), result.FeedbackID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryCreateIngestionRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs("hw3-ada").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO submissions")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.CreateIngestion(context.Background(), IngestionParams{
		RepoName:     "hw3-ada",
		AssignmentID: 101,
		Files:        []dto.IngestFile{{Filename: "main.py", Code: "print(1)"}},
		FeedbackText: "text",
		Timestamp:    time.Now().UTC(),
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryRepoExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("hw3-ada").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.RepoExists(context.Background(), "hw3-ada")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSubmissionRepositoryListByRepo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_repo", "assignment_id", "code", "submitted_at"}).
		AddRow(int64(7), "hw3-ada", int64(101), nil, ts)

	mock.ExpectQuery(regexp.QuoteMeta("FROM submissions")).
		WithArgs("hw3-ada").
		WillReturnRows(rows)

	subs, err := repo.ListByRepo(context.Background(), "hw3-ada")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, int64(101), subs[0].AssignmentID)
	assert.Nil(t, subs[0].Code)
}
