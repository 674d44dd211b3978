package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
	"github.com/aglm/review-api/internal/repository"
	"github.com/aglm/review-api/internal/reviewer"
	"github.com/aglm/review-api/pkg/config"
	appErrors "github.com/aglm/review-api/pkg/errors"
	"github.com/aglm/review-api/pkg/jobs"
)

type ingestStore interface {
	CreateIngestion(ctx context.Context, params repository.IngestionParams) (repository.IngestionResult, error)
}

type assignmentReader interface {
	GetAssignment(ctx context.Context, id int64) (*models.Assignment, error)
}

type ingestMetrics interface {
	ObserveIngestion(success bool)
}

// IngestService turns one grading run into persisted rows: submission, code
// files, autograder output and the initial unreviewed feedback, written
// atomically. Feedback text comes from the request or, when absent, from the
// reviewer model. In async mode the whole event runs on a worker queue.
type IngestService struct {
	repo        ingestStore
	assignments assignmentReader
	reviewer    reviewer.Reviewer
	queue       *jobs.Queue
	async       bool
	validator   *validator.Validate
	metrics     ingestMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewIngestService builds an IngestService. The reviewer may be nil when
// generation is disabled; metrics may be nil.
func NewIngestService(
	repo ingestStore,
	assignments assignmentReader,
	rev reviewer.Reviewer,
	cfg config.IngestConfig,
	metrics ingestMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
) *IngestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &IngestService{
		repo:        repo,
		assignments: assignments,
		reviewer:    rev,
		async:       cfg.Async,
		validator:   validate,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
	if cfg.Async {
		s.queue = jobs.NewQueue("ingest", s.handleJob, jobs.QueueConfig{
			Workers:    cfg.Workers,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Logger:     logger,
		})
	}
	return s
}

// Start launches the worker pool in async mode. No-op otherwise.
func (s *IngestService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the worker pool.
func (s *IngestService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

// Async reports whether ingestion runs on the worker queue.
func (s *IngestService) Async() bool {
	return s.async
}

// Ingest validates and persists one ingestion event synchronously.
func (s *IngestService) Ingest(ctx context.Context, req dto.IngestRequest) (*dto.IngestResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ingestion payload")
	}

	assignment, err := s.assignments.GetAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, appErrors.StoreError(err, "failed to load assignment")
	}
	if assignment == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("assignment %d not found", req.AssignmentID))
	}

	feedbackText := req.FeedbackText
	if feedbackText == "" {
		if s.reviewer == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "feedback_text required while the reviewer is disabled")
		}
		feedbackText, err = s.reviewer.Review(ctx, reviewer.Request{
			RepoName:         req.RepoName,
			Files:            req.Files,
			AutograderOutput: req.AutograderOutput,
			Instructions:     req.Instructions,
		})
		if err != nil {
			s.observe(false)
			return nil, appErrors.Wrap(err, appErrors.ErrReviewerFailed.Code, appErrors.ErrReviewerFailed.Status, "feedback generation failed")
		}
	}

	result, err := s.repo.CreateIngestion(ctx, repository.IngestionParams{
		RepoName:         req.RepoName,
		AssignmentID:     req.AssignmentID,
		LegacyCode:       reviewer.CodeBlob(req.Files),
		Files:            req.Files,
		AutograderOutput: req.AutograderOutput,
		FeedbackText:     feedbackText,
		Timestamp:        s.now().UTC(),
	})
	if err != nil {
		s.observe(false)
		return nil, appErrors.StoreError(err, "failed to persist ingestion")
	}

	s.observe(true)
	s.logger.Sugar().Infow("ingestion persisted",
		"repo", req.RepoName,
		"submission_id", result.SubmissionID,
		"feedback_id", result.FeedbackID,
		"files", len(req.Files),
	)
	return &dto.IngestResult{SubmissionID: result.SubmissionID, FeedbackID: result.FeedbackID}, nil
}

// Enqueue schedules one ingestion event on the worker queue and returns the
// job id. Validation still happens up front so the caller gets an immediate
// rejection for malformed payloads.
func (s *IngestService) Enqueue(req dto.IngestRequest) (*dto.IngestAccepted, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "async ingestion is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ingestion payload")
	}

	job := jobs.Job{ID: uuid.NewString(), Type: "ingest", Payload: req}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue ingestion")
	}
	return &dto.IngestAccepted{JobID: job.ID}, nil
}

func (s *IngestService) handleJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.IngestRequest)
	if !ok {
		s.logger.Sugar().Errorw("unexpected ingest payload", "job_id", job.ID)
		return nil
	}
	_, err := s.Ingest(ctx, req)
	return err
}

func (s *IngestService) observe(success bool) {
	if s.metrics != nil {
		s.metrics.ObserveIngestion(success)
	}
}
