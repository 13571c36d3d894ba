package seed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mathmate/internal/auth"
	"mathmate/internal/classroom"
	"mathmate/internal/logging"
	"mathmate/internal/opentdb"
	"mathmate/internal/quiz"
	"mathmate/internal/report"
	"mathmate/internal/sqlstore"
	"mathmate/internal/student"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newServices(t *testing.T) Services {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "seed.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return Services{
		Auth:     auth.NewService(store, store, auth.NewTokenIssuer("seed-secret", time.Hour), time.Hour, auth.WithHashCost(bcrypt.MinCost)),
		Classes:  classroom.NewService(store),
		Quizzes:  quiz.NewService(store),
		Students: student.NewService(store),
		Reports:  report.NewService(store),
	}
}

func noShuffle(int, func(i, j int)) {}

func TestRunSeedsDemoData(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	result, err := Run(ctx, svc, Options{Logger: logging.Discard(), Shuffle: noShuffle})
	require.NoError(t, err)

	assert.Len(t, result.ClassIDs, 2)
	assert.Len(t, result.QuizIDs, 3)
	assert.Len(t, result.GradeIDs, 7)
	assert.Len(t, result.ReportIDs, 4)

	algebra, err := svc.Quizzes.ListQuizzesByClass(ctx, result.ClassIDs[0])
	require.NoError(t, err)
	require.Len(t, algebra, 2)
	assert.Equal(t, "Linear Equations", algebra[0].Title)
	assert.Equal(t, []string{"3", "4", "5", "7"}, algebra[0].Questions[0].Options)
	assert.Equal(t, []string{}, algebra[1].Questions[1].Options)

	gradebook, err := svc.Students.GradesForQuiz(ctx, result.QuizIDs[0])
	require.NoError(t, err)
	require.Len(t, gradebook, 3)

	reports, err := svc.Reports.ListByStudent(ctx, result.GradeIDs[0])
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, result.TeacherID, reports[0].TeacherID)

	var entries []report.PerformanceEntry
	require.NoError(t, json.Unmarshal([]byte(reports[0].PerformanceData), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 92.5, entries[0].Score)
}

func TestRunReusesExistingTeacher(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	opts := Options{TeacherEmail: "jane@example.com", TeacherPassword: "pw", Logger: logging.Discard()}

	first, err := Run(ctx, svc, opts)
	require.NoError(t, err)
	second, err := Run(ctx, svc, opts)
	require.NoError(t, err)
	assert.Equal(t, first.TeacherID, second.TeacherID)

	opts.TeacherPassword = "wrong"
	_, err = Run(ctx, svc, opts)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRunAddsTriviaQuiz(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	var requested string
	source := opentdb.NewClient(&http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			requested = r.URL.Query().Get("amount")
			body := `{"response_code":0,"results":[{"type":"multiple","question":"What is 7 &times; 6?","correct_answer":"42","incorrect_answers":["36","48","&quot;54&quot;"]}]}`
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(body)),
				Request:    r,
			}, nil
		}),
	})

	result, err := Run(ctx, svc, Options{TriviaCount: 1, Trivia: source, Shuffle: noShuffle, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, "1", requested)
	require.Len(t, result.QuizIDs, 4)

	trivia, err := svc.Quizzes.GetQuiz(ctx, result.QuizIDs[3])
	require.NoError(t, err)
	assert.Equal(t, "Trivia Warm-up", trivia.Title)
	require.Len(t, trivia.Questions, 1)
	assert.Equal(t, "What is 7 × 6?", trivia.Questions[0].Text)
	assert.Equal(t, "42", trivia.Questions[0].Answer)
	assert.Equal(t, []string{"36", "48", `"54"`, "42"}, trivia.Questions[0].Options)
}

func TestBuildTriviaQuestionKeepsAnswerAmongOptions(t *testing.T) {
	raw := opentdb.RawQuestion{
		Question:         "Is &pi; rational?",
		CorrectAnswer:    "False",
		IncorrectAnswers: []string{"True"},
	}

	reverse := func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	question := buildTriviaQuestion(raw, reverse)

	assert.Equal(t, "Is π rational?", question.Text)
	assert.Equal(t, "False", question.Answer)
	assert.Equal(t, []string{"False", "True"}, question.Options)
}
