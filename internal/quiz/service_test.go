package quiz

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"mathmate/internal/apperr"
)

type fakeQuizRepo struct {
	quizzes  map[int64]Quiz
	comments map[int64][]Comment
	nextID   int64

	createCalls int
	updateCalls int
	lastUpdates []QuestionUpdate
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{
		quizzes:  make(map[int64]Quiz),
		comments: make(map[int64][]Comment),
	}
}

func (f *fakeQuizRepo) CreateQuiz(_ context.Context, quiz Quiz) (int64, error) {
	f.createCalls++
	f.nextID++
	quiz.ID = f.nextID
	for idx := range quiz.Questions {
		quiz.Questions[idx].ID = int64(idx + 1)
		quiz.Questions[idx].QuizID = quiz.ID
	}
	f.quizzes[quiz.ID] = quiz
	return quiz.ID, nil
}

func (f *fakeQuizRepo) GetQuiz(_ context.Context, id int64) (Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return quiz, nil
}

func (f *fakeQuizRepo) ListQuizzes(context.Context) ([]Quiz, error) {
	out := make([]Quiz, 0, len(f.quizzes))
	for _, quiz := range f.quizzes {
		out = append(out, quiz)
	}
	return out, nil
}

func (f *fakeQuizRepo) ListQuizzesByClass(_ context.Context, classID int64) ([]Quiz, error) {
	out := make([]Quiz, 0)
	for _, quiz := range f.quizzes {
		if quiz.ClassID == classID {
			out = append(out, quiz)
		}
	}
	return out, nil
}

func (f *fakeQuizRepo) UpdateQuiz(_ context.Context, quiz Quiz, updates []QuestionUpdate) ([]int64, error) {
	f.updateCalls++
	f.lastUpdates = updates
	stored, ok := f.quizzes[quiz.ID]
	if !ok {
		return nil, ErrQuizNotFound
	}
	stored.Title = quiz.Title
	stored.ClassID = quiz.ClassID

	var missing []int64
	for _, update := range updates {
		found := false
		for idx := range stored.Questions {
			if stored.Questions[idx].ID == update.ID {
				stored.Questions[idx].Text = update.Text
				stored.Questions[idx].Answer = update.Answer
				stored.Questions[idx].Options = update.Options
				found = true
			}
		}
		if !found {
			missing = append(missing, update.ID)
		}
	}
	f.quizzes[quiz.ID] = stored
	return missing, nil
}

func (f *fakeQuizRepo) DeleteQuiz(_ context.Context, id int64) error {
	if _, ok := f.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(f.quizzes, id)
	delete(f.comments, id)
	return nil
}

func (f *fakeQuizRepo) AddComment(_ context.Context, comment Comment) (int64, error) {
	if _, ok := f.quizzes[comment.QuizID]; !ok {
		return 0, ErrQuizNotFound
	}
	comment.ID = int64(len(f.comments[comment.QuizID]) + 1)
	f.comments[comment.QuizID] = append(f.comments[comment.QuizID], comment)
	return comment.ID, nil
}

func (f *fakeQuizRepo) ListComments(_ context.Context, quizID int64) ([]Comment, error) {
	if _, ok := f.quizzes[quizID]; !ok {
		return nil, ErrQuizNotFound
	}
	return append([]Comment{}, f.comments[quizID]...), nil
}

func TestCreateQuizRejectsInvalidInputBeforeStoring(t *testing.T) {
	repo := newFakeQuizRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cases := []struct {
		name      string
		title     string
		classID   int64
		questions []NewQuestion
	}{
		{name: "blank title", title: " ", classID: 1},
		{name: "missing class", title: "Quiz1"},
		{name: "blank question", title: "Quiz1", classID: 1, questions: []NewQuestion{{Text: "", Answer: "4"}}},
		{name: "blank answer", title: "Quiz1", classID: 1, questions: []NewQuestion{{Text: "2+2?", Answer: " "}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateQuiz(ctx, tc.title, tc.classID, tc.questions)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if repo.createCalls != 0 {
		t.Fatalf("repository called %d times for invalid input", repo.createCalls)
	}
}

func TestCreateQuizKeepsOptionOrder(t *testing.T) {
	repo := newFakeQuizRepo()
	svc := NewService(repo)

	created, err := svc.CreateQuiz(context.Background(), "Quiz1", 1, []NewQuestion{
		{Text: "2+2?", Answer: "4", Options: []string{"3", "4", "5"}},
		{Text: "Sky color?", Answer: "Blue"},
	})
	if err != nil {
		t.Fatalf("CreateQuiz failed: %v", err)
	}
	if created.ID != 1 || len(created.Questions) != 2 {
		t.Fatalf("unexpected created quiz: %+v", created)
	}
	if !reflect.DeepEqual(created.Questions[0].Options, []string{"3", "4", "5"}) {
		t.Fatalf("options reordered: %v", created.Questions[0].Options)
	}
	if created.Questions[1].Options == nil {
		t.Fatalf("missing options should become an empty list")
	}
}

func TestUpdateQuizCountsSkippedQuestions(t *testing.T) {
	repo := newFakeQuizRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateQuiz(ctx, "Quiz1", 1, []NewQuestion{
		{Text: "2+2?", Answer: "4", Options: []string{"3", "4", "5"}},
	})
	if err != nil {
		t.Fatalf("CreateQuiz failed: %v", err)
	}

	result, err := svc.UpdateQuiz(ctx, created.ID, "Quiz1 (revised)", 2, []QuestionUpdate{
		{ID: 1, Text: "3+3?", Answer: "6", Options: []string{"6", "7"}},
		{Text: "no id", Answer: "x"},
		{ID: 42, Text: "foreign", Answer: "y"},
	})
	if err != nil {
		t.Fatalf("UpdateQuiz failed: %v", err)
	}
	if result.Updated != 1 || result.Skipped != 2 || len(result.Warnings) != 2 {
		t.Fatalf("unexpected update result: %+v", result)
	}
	if len(repo.lastUpdates) != 2 {
		t.Fatalf("questions without id must not reach the store, got %+v", repo.lastUpdates)
	}

	stored, err := svc.GetQuiz(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetQuiz failed: %v", err)
	}
	if stored.Title != "Quiz1 (revised)" || stored.ClassID != 2 || stored.Questions[0].Text != "3+3?" {
		t.Fatalf("update not applied: %+v", stored)
	}
}

func TestUpdateQuizMissingQuiz(t *testing.T) {
	svc := NewService(newFakeQuizRepo())
	_, err := svc.UpdateQuiz(context.Background(), 9, "Title", 1, nil)
	if !errors.Is(err, ErrQuizNotFound) || !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddCommentRequiresText(t *testing.T) {
	repo := newFakeQuizRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.AddComment(ctx, 1, "   "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.AddComment(ctx, 1, "nice"); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}

	created, err := svc.CreateQuiz(ctx, "Quiz1", 1, nil)
	if err != nil {
		t.Fatalf("CreateQuiz failed: %v", err)
	}
	if _, err := svc.AddComment(ctx, created.ID, " too hard "); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	comments, err := svc.ListComments(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].Comment != "too hard" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
}
