package student

import (
	"context"
	"strings"

	"mathmate/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GradeInput is a grade event before it is stored. Score is required; quiz
// and class are optional.
type GradeInput struct {
	Name    string
	QuizID  *int64
	ClassID *int64
	Score   *float64
}

func (s *Service) AddGrade(ctx context.Context, input GradeInput) (Grade, error) {
	grade, err := input.toGrade()
	if err != nil {
		return Grade{}, err
	}

	id, err := s.repo.AddGrade(ctx, grade)
	if err != nil {
		return Grade{}, err
	}
	grade.ID = id
	return grade, nil
}

// GetGrades returns the grade rows with the given id, failing when there
// are none.
func (s *Service) GetGrades(ctx context.Context, studentID int64) ([]Grade, error) {
	grades, err := s.repo.GradesForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(grades) == 0 {
		return nil, ErrGradeNotFound
	}
	return grades, nil
}

func (s *Service) ListByQuiz(ctx context.Context, quizID int64) ([]Grade, error) {
	return s.repo.GradesByQuiz(ctx, quizID)
}

func (s *Service) ListByClass(ctx context.Context, classID int64) ([]Grade, error) {
	return s.repo.GradesByClass(ctx, classID)
}

func (s *Service) GradesForQuiz(ctx context.Context, quizID int64) ([]Grade, error) {
	return s.repo.Gradebook(ctx, quizID)
}

// Average is nil when the student has no grade rows.
func (s *Service) Average(ctx context.Context, studentID int64) (*float64, error) {
	return s.repo.AverageScore(ctx, studentID)
}

func (s *Service) ScoresRange(ctx context.Context, studentID int64) (ScoreRange, error) {
	return s.repo.ScoreRange(ctx, studentID)
}

func (s *Service) QuizCount(ctx context.Context, studentID int64) (int64, error) {
	return s.repo.CountGrades(ctx, studentID)
}

func (s *Service) UpdateGrade(ctx context.Context, id int64, input GradeInput) error {
	grade, err := input.toGrade()
	if err != nil {
		return err
	}
	grade.ID = id
	return s.repo.UpdateGrade(ctx, grade)
}

func (s *Service) DeleteGrade(ctx context.Context, id int64) error {
	return s.repo.DeleteGrade(ctx, id)
}

func (in GradeInput) toGrade() (Grade, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Grade{}, apperr.Validation("name is required")
	}
	if in.Score == nil {
		return Grade{}, apperr.Validation("score is required")
	}
	return Grade{
		Name:    name,
		QuizID:  in.QuizID,
		ClassID: in.ClassID,
		Score:   *in.Score,
	}, nil
}
