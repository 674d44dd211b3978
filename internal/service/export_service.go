package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/aglm/review-api/internal/dto"
	"github.com/aglm/review-api/internal/models"
	"github.com/aglm/review-api/pkg/config"
	appErrors "github.com/aglm/review-api/pkg/errors"
	"github.com/aglm/review-api/pkg/export"
)

// Supported report formats.
const (
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatPDF      = "pdf"
)

type exportSubmissionReader interface {
	RepoExists(ctx context.Context, repo string) (bool, error)
	ListByRepo(ctx context.Context, repo string) ([]models.Submission, error)
	ListOutputsByRepo(ctx context.Context, repo string) ([]models.AutograderOutput, error)
}

type exportFeedbackReader interface {
	ListByRepo(ctx context.Context, repo string) ([]models.Feedback, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ExportService renders the full history of one repository (submissions,
// feedback, autograder outputs) as markdown, CSV or PDF. Rendered reports
// are cached; review activity simply ages out at the TTL.
type ExportService struct {
	submissions exportSubmissionReader
	feedback    exportFeedbackReader
	cache       reportCache
	ttl         time.Duration
	markdown    *export.MarkdownExporter
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService builds an ExportService. The cache may be nil.
func NewExportService(
	submissions exportSubmissionReader,
	feedback exportFeedbackReader,
	cache reportCache,
	cfg config.ReportsConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		submissions: submissions,
		feedback:    feedback,
		cache:       cache,
		ttl:         cfg.CacheTTL,
		markdown:    export.NewMarkdownExporter(),
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// Render produces the repo report in the requested format. The second return
// reports whether the response came from cache.
func (s *ExportService) Render(ctx context.Context, repo, format string) (*dto.ReportFile, bool, error) {
	switch format {
	case FormatMarkdown, FormatCSV, FormatPDF:
	default:
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	cacheKey := fmt.Sprintf("report:%s:%s", repo, format)
	if s.cache != nil {
		var cached dto.ReportFile
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, true, nil
		}
	}

	exists, err := s.submissions.RepoExists(ctx, repo)
	if err != nil {
		return nil, false, appErrors.StoreError(err, "failed to check repository")
	}
	if !exists {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no data found for repository %s", repo))
	}

	subs, err := s.submissions.ListByRepo(ctx, repo)
	if err != nil {
		return nil, false, appErrors.StoreError(err, "failed to load submissions")
	}
	feedback, err := s.feedback.ListByRepo(ctx, repo)
	if err != nil {
		return nil, false, appErrors.StoreError(err, "failed to load feedback")
	}
	outputs, err := s.submissions.ListOutputsByRepo(ctx, repo)
	if err != nil {
		return nil, false, appErrors.StoreError(err, "failed to load autograder outputs")
	}

	var report *dto.ReportFile
	switch format {
	case FormatMarkdown:
		report, err = s.renderMarkdown(repo, subs, feedback, outputs)
	case FormatCSV:
		report, err = s.renderCSV(repo, feedback)
	case FormatPDF:
		report, err = s.renderPDF(repo, feedback)
	}
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report, s.ttl); err != nil {
			s.logger.Sugar().Warnw("report cache write failed", "key", cacheKey, "error", err)
		}
	}
	return report, false, nil
}

func (s *ExportService) renderMarkdown(repo string, subs []models.Submission, feedback []models.Feedback, outputs []models.AutograderOutput) (*dto.ReportFile, error) {
	doc := export.Document{Title: fmt.Sprintf("Data for %s", repo)}

	subSection := export.Section{Heading: "Submissions", Empty: "No submissions found."}
	for _, sub := range subs {
		code := ""
		if sub.Code != nil {
			code = *sub.Code
		}
		subSection.Items = append(subSection.Items, export.Item{Fields: []export.Field{
			{Label: "Submission ID", Value: strconv.FormatInt(sub.ID, 10)},
			{Label: "Assignment ID", Value: strconv.FormatInt(sub.AssignmentID, 10)},
			{Label: "Code", Value: code, Code: true},
			{Label: "Submitted At", Value: sub.SubmittedAt.UTC().Format(time.RFC3339)},
		}})
	}
	doc.Sections = append(doc.Sections, subSection)

	fbSection := export.Section{Heading: "Feedback", Empty: "No feedback found."}
	for _, item := range feedback {
		fields := []export.Field{
			{Label: "Feedback ID", Value: strconv.FormatInt(item.ID, 10)},
			{Label: "Submission ID", Value: strconv.FormatInt(item.SubmissionID, 10)},
			{Label: "State", Value: string(item.State())},
			{Label: "Feedback", Value: item.FeedbackText},
			{Label: "Generated At", Value: item.GeneratedAt.UTC().Format(time.RFC3339)},
		}
		if item.TeacherComments != nil {
			fields = append(fields, export.Field{Label: "Teacher Comments", Value: *item.TeacherComments})
		}
		if item.ReviewedAt != nil {
			fields = append(fields, export.Field{Label: "Reviewed At", Value: item.ReviewedAt.UTC().Format(time.RFC3339)})
		}
		fbSection.Items = append(fbSection.Items, export.Item{Fields: fields})
	}
	doc.Sections = append(doc.Sections, fbSection)

	outSection := export.Section{Heading: "Autograder Outputs", Empty: "No autograder outputs found."}
	for _, out := range outputs {
		outSection.Items = append(outSection.Items, export.Item{Fields: []export.Field{
			{Label: "Output ID", Value: strconv.FormatInt(out.ID, 10)},
			{Label: "Submission ID", Value: strconv.FormatInt(out.SubmissionID, 10)},
			{Label: "Output", Value: out.Output, Code: true},
			{Label: "Generated At", Value: out.GeneratedAt.UTC().Format(time.RFC3339)},
		}})
	}
	doc.Sections = append(doc.Sections, outSection)

	body, err := s.markdown.Render(doc)
	if err != nil {
		return nil, err
	}
	return &dto.ReportFile{
		Filename:    fmt.Sprintf("student_data_%s.md", repo),
		ContentType: "text/markdown; charset=utf-8",
		Body:        body,
	}, nil
}

// feedbackTable lays out the review log for the tabular formats. The
// teacher-comments column gets the widest share of the PDF page since it is
// the only free-text field.
func (s *ExportService) feedbackTable(repo string, feedback []models.Feedback) export.Table {
	table := export.Table{
		Title: fmt.Sprintf("Data for %s", repo),
		Columns: []export.Column{
			{Name: "Feedback ID", Weight: 1},
			{Name: "Submission ID", Weight: 1},
			{Name: "State", Weight: 1},
			{Name: "Generated At", Weight: 1.6},
			{Name: "Reviewed At", Weight: 1.6},
			{Name: "Teacher Comments", Weight: 2.8},
		},
	}
	for _, item := range feedback {
		reviewedAt := ""
		if item.ReviewedAt != nil {
			reviewedAt = item.ReviewedAt.UTC().Format(time.RFC3339)
		}
		comments := ""
		if item.TeacherComments != nil {
			comments = *item.TeacherComments
		}
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(item.ID, 10),
			strconv.FormatInt(item.SubmissionID, 10),
			string(item.State()),
			item.GeneratedAt.UTC().Format(time.RFC3339),
			reviewedAt,
			comments,
		})
	}
	return table
}

func (s *ExportService) renderCSV(repo string, feedback []models.Feedback) (*dto.ReportFile, error) {
	body, err := s.csv.Render(s.feedbackTable(repo, feedback))
	if err != nil {
		return nil, err
	}
	return &dto.ReportFile{
		Filename:    fmt.Sprintf("student_data_%s.csv", repo),
		ContentType: "text/csv",
		Body:        body,
	}, nil
}

func (s *ExportService) renderPDF(repo string, feedback []models.Feedback) (*dto.ReportFile, error) {
	body, err := s.pdf.Render(s.feedbackTable(repo, feedback))
	if err != nil {
		return nil, err
	}
	return &dto.ReportFile{
		Filename:    fmt.Sprintf("student_data_%s.pdf", repo),
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}
