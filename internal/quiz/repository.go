package quiz

import (
	"context"
	"time"

	"mathmate/internal/apperr"
)

var ErrQuizNotFound = apperr.NotFound("Quiz not found")

type Question struct {
	ID      int64    `json:"id"`
	QuizID  int64    `json:"-"`
	Text    string   `json:"question"`
	Answer  string   `json:"answer"`
	Options []string `json:"options"`
}

type Quiz struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	ClassID   int64      `json:"class_id"`
	CreatedAt time.Time  `json:"created_at"`
	Questions []Question `json:"questions"`
}

type Comment struct {
	ID        int64     `json:"id"`
	QuizID    int64     `json:"quiz_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// QuestionUpdate replaces the question with ID when it belongs to the quiz.
type QuestionUpdate struct {
	ID      int64
	Text    string
	Answer  string
	Options []string
}

type UpdateResult struct {
	Updated  int      `json:"updated_questions"`
	Skipped  int      `json:"skipped_questions"`
	Warnings []string `json:"warnings"`
}

// Repository persists quizzes together with their questions. Every method
// that touches more than one row runs in a single transaction.
type Repository interface {
	// CreateQuiz inserts the quiz and all of quiz.Questions atomically.
	CreateQuiz(ctx context.Context, quiz Quiz) (int64, error)
	GetQuiz(ctx context.Context, id int64) (Quiz, error)
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	ListQuizzesByClass(ctx context.Context, classID int64) ([]Quiz, error)
	// UpdateQuiz overwrites title and class and applies updates. It returns
	// the ids of updates that matched no question of this quiz.
	UpdateQuiz(ctx context.Context, quiz Quiz, updates []QuestionUpdate) (missing []int64, err error)
	// DeleteQuiz removes comments, questions and the quiz row together.
	DeleteQuiz(ctx context.Context, id int64) error
	AddComment(ctx context.Context, comment Comment) (int64, error)
	ListComments(ctx context.Context, quizID int64) ([]Comment, error)
}
