package quiz

import (
	"context"
	"fmt"
	"strings"

	"mathmate/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewQuestion is a question as submitted by a teacher.
type NewQuestion struct {
	Text    string
	Answer  string
	Options []string
}

// CreateQuiz persists the quiz and every question, or nothing.
func (s *Service) CreateQuiz(ctx context.Context, title string, classID int64, questions []NewQuestion) (Quiz, error) {
	title = strings.TrimSpace(title)
	if title == "" || classID <= 0 {
		return Quiz{}, apperr.Validation("Missing required fields")
	}

	created := Quiz{
		Title:     title,
		ClassID:   classID,
		Questions: make([]Question, 0, len(questions)),
	}
	for idx, item := range questions {
		question, err := buildQuestion(idx, item.Text, item.Answer, item.Options)
		if err != nil {
			return Quiz{}, err
		}
		created.Questions = append(created.Questions, question)
	}

	id, err := s.repo.CreateQuiz(ctx, created)
	if err != nil {
		return Quiz{}, err
	}
	created.ID = id
	return created, nil
}

func (s *Service) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	return s.repo.GetQuiz(ctx, id)
}

func (s *Service) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	return s.repo.ListQuizzes(ctx)
}

func (s *Service) ListQuizzesByClass(ctx context.Context, classID int64) ([]Quiz, error) {
	return s.repo.ListQuizzesByClass(ctx, classID)
}

// UpdateQuiz overwrites quiz metadata and every question referenced by id.
// Questions without an id, or with an id from another quiz, are skipped and
// reported as warnings.
func (s *Service) UpdateQuiz(ctx context.Context, id int64, title string, classID int64, updates []QuestionUpdate) (UpdateResult, error) {
	title = strings.TrimSpace(title)
	if title == "" || classID <= 0 {
		return UpdateResult{}, apperr.Validation("Missing required fields")
	}

	result := UpdateResult{Warnings: []string{}}
	applicable := make([]QuestionUpdate, 0, len(updates))
	for idx, update := range updates {
		if update.ID <= 0 {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("question %d has no questionId", idx))
			continue
		}
		question, err := buildQuestion(idx, update.Text, update.Answer, update.Options)
		if err != nil {
			return UpdateResult{}, err
		}
		applicable = append(applicable, QuestionUpdate{
			ID:      update.ID,
			Text:    question.Text,
			Answer:  question.Answer,
			Options: question.Options,
		})
	}

	missing, err := s.repo.UpdateQuiz(ctx, Quiz{ID: id, Title: title, ClassID: classID}, applicable)
	if err != nil {
		return UpdateResult{}, err
	}
	for _, questionID := range missing {
		result.Skipped++
		result.Warnings = append(result.Warnings, fmt.Sprintf("question %d does not belong to quiz %d", questionID, id))
	}
	result.Updated = len(applicable) - len(missing)
	return result, nil
}

func (s *Service) DeleteQuiz(ctx context.Context, id int64) error {
	return s.repo.DeleteQuiz(ctx, id)
}

func (s *Service) AddComment(ctx context.Context, quizID int64, text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, apperr.Validation("Comment is required")
	}
	return s.repo.AddComment(ctx, Comment{QuizID: quizID, Comment: text})
}

func (s *Service) ListComments(ctx context.Context, quizID int64) ([]Comment, error) {
	return s.repo.ListComments(ctx, quizID)
}

func buildQuestion(idx int, text, answer string, options []string) (Question, error) {
	text = strings.TrimSpace(text)
	answer = strings.TrimSpace(answer)
	if text == "" {
		return Question{}, apperr.Validation(fmt.Sprintf("question %d: questionText is required", idx))
	}
	if answer == "" {
		return Question{}, apperr.Validation(fmt.Sprintf("question %d: correctAnswer is required", idx))
	}
	if options == nil {
		options = []string{}
	}
	return Question{Text: text, Answer: answer, Options: options}, nil
}
