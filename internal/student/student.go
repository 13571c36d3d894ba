// Package student records grade events. A grade row carries a bare student
// name; the same person may appear in many unrelated rows, and every
// "student id" in this package is a grade row id.
package student

import (
	"context"
	"time"

	"mathmate/internal/apperr"
)

var ErrGradeNotFound = apperr.NotFound("Student not found")

type Grade struct {
	ID       int64     `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	QuizID   *int64    `db:"quiz_id" json:"quiz_id"`
	ClassID  *int64    `db:"class_id" json:"class_id"`
	Score    float64   `db:"score" json:"score"`
	GradedAt time.Time `db:"graded_at" json:"graded_at"`
}

// ScoreRange holds nil bounds when no rows matched.
type ScoreRange struct {
	Highest *float64 `db:"highest_score"`
	Lowest  *float64 `db:"lowest_score"`
}

type Repository interface {
	AddGrade(ctx context.Context, grade Grade) (int64, error)
	// AddGrades inserts every grade in one transaction.
	AddGrades(ctx context.Context, grades []Grade) error
	GradesForStudent(ctx context.Context, studentID int64) ([]Grade, error)
	GradesByQuiz(ctx context.Context, quizID int64) ([]Grade, error)
	GradesByClass(ctx context.Context, classID int64) ([]Grade, error)
	// Gradebook lists a quiz's grades, best score first.
	Gradebook(ctx context.Context, quizID int64) ([]Grade, error)
	AverageScore(ctx context.Context, studentID int64) (*float64, error)
	ScoreRange(ctx context.Context, studentID int64) (ScoreRange, error)
	CountGrades(ctx context.Context, studentID int64) (int64, error)
	UpdateGrade(ctx context.Context, grade Grade) error
	DeleteGrade(ctx context.Context, id int64) error
}
