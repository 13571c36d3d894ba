package report

import (
	"context"
	"time"

	"mathmate/internal/apperr"
)

var ErrReportNotFound = apperr.NotFound("Report not found")

// Report is a stored snapshot. PerformanceData is opaque text.
type Report struct {
	ID              int64     `db:"id" json:"id"`
	StudentID       int64     `db:"student_id" json:"student_id"`
	TeacherID       int64     `db:"teacher_id" json:"teacher_id"`
	QuizID          int64     `db:"quiz_id" json:"quiz_id"`
	PerformanceData string    `db:"performance_data" json:"performance_data"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type PerformanceEntry struct {
	QuizID *int64  `db:"quiz_id" json:"quiz_id"`
	Score  float64 `db:"score" json:"score"`
}

// Summary is computed from grade rows at read time. All fields are nil when
// the student has no grades.
type Summary struct {
	Average *float64 `db:"average_score"`
	Highest *float64 `db:"highest_score"`
	Lowest  *float64 `db:"lowest_score"`
}

type Repository interface {
	CreateReport(ctx context.Context, report Report) (int64, error)
	GetReport(ctx context.Context, id int64) (Report, error)
	ReportsByStudent(ctx context.Context, studentID int64) ([]Report, error)
	// ReportsByClass joins through quizzes since reports carry no class.
	ReportsByClass(ctx context.Context, classID int64) ([]Report, error)
	UpdateReport(ctx context.Context, report Report) error
	DeleteReport(ctx context.Context, id int64) error

	Performance(ctx context.Context, studentID int64) ([]PerformanceEntry, error)
	Summary(ctx context.Context, studentID int64) (Summary, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Generate lists quiz scores straight from the grade rows.
func (s *Service) Generate(ctx context.Context, studentID int64) ([]PerformanceEntry, error) {
	if studentID <= 0 {
		return nil, apperr.Validation("student_id is required")
	}
	return s.repo.Performance(ctx, studentID)
}

func (s *Service) Create(ctx context.Context, report Report) (Report, error) {
	if err := validate(report); err != nil {
		return Report{}, err
	}
	id, err := s.repo.CreateReport(ctx, report)
	if err != nil {
		return Report{}, err
	}
	report.ID = id
	return report, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Report, error) {
	return s.repo.GetReport(ctx, id)
}

func (s *Service) ListByStudent(ctx context.Context, studentID int64) ([]Report, error) {
	return s.repo.ReportsByStudent(ctx, studentID)
}

func (s *Service) ListByClass(ctx context.Context, classID int64) ([]Report, error) {
	return s.repo.ReportsByClass(ctx, classID)
}

func (s *Service) Update(ctx context.Context, report Report) error {
	if err := validate(report); err != nil {
		return err
	}
	return s.repo.UpdateReport(ctx, report)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteReport(ctx, id)
}

func (s *Service) Summary(ctx context.Context, studentID int64) (Summary, error) {
	return s.repo.Summary(ctx, studentID)
}

func validate(report Report) error {
	switch {
	case report.StudentID <= 0:
		return apperr.Validation("student_id is required")
	case report.TeacherID <= 0:
		return apperr.Validation("teacher_id is required")
	case report.QuizID <= 0:
		return apperr.Validation("quiz_id is required")
	}
	return nil
}
