// Package seed fills an empty MathMate store with a demo teacher, classes,
// quizzes, grades and reports.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"maps"
	"math/rand"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"mathmate/internal/auth"
	"mathmate/internal/classroom"
	"mathmate/internal/opentdb"
	"mathmate/internal/quiz"
	"mathmate/internal/report"
	"mathmate/internal/student"
)

type Services struct {
	Auth     *auth.Service
	Classes  *classroom.Service
	Quizzes  *quiz.Service
	Students *student.Service
	Reports  *report.Service
}

// QuestionSource is satisfied by *opentdb.Client.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, amount int) ([]opentdb.RawQuestion, error)
}

type Options struct {
	TeacherName     string
	TeacherEmail    string
	TeacherPassword string

	// TriviaCount adds a quiz of that many trivia questions when positive.
	TriviaCount int
	Trivia      QuestionSource
	Shuffle     func(n int, swap func(i, j int))

	Logger *logrus.Entry
}

type Result struct {
	TeacherID int64
	ClassIDs  []int64
	QuizIDs   []int64
	GradeIDs  []int64
	ReportIDs []int64
}

type demoQuiz struct {
	title     string
	class     int
	questions []quiz.NewQuestion
	scores    map[string]float64
}

var demoClasses = []string{"Algebra I", "Geometry"}

var demoQuizzes = []demoQuiz{
	{
		title: "Linear Equations",
		class: 0,
		questions: []quiz.NewQuestion{
			{Text: "Solve 2x + 3 = 11", Answer: "4", Options: []string{"3", "4", "5", "7"}},
			{Text: "Solve x - 5 = -2", Answer: "3", Options: []string{"-7", "-3", "3", "7"}},
			{Text: "What is the slope of y = 3x + 1?", Answer: "3", Options: []string{"1", "3", "1/3"}},
		},
		scores: map[string]float64{"Ann Lee": 92.5, "Ben Ortiz": 71, "Cara Singh": 88},
	},
	{
		title: "Fractions Review",
		class: 0,
		questions: []quiz.NewQuestion{
			{Text: "1/2 + 1/4 = ?", Answer: "3/4", Options: []string{"2/6", "3/4", "1/8"}},
			{Text: "Simplify 6/8", Answer: "3/4"},
		},
		scores: map[string]float64{"Ann Lee": 100, "Ben Ortiz": 64.5},
	},
	{
		title: "Angles",
		class: 1,
		questions: []quiz.NewQuestion{
			{Text: "How many degrees are in a right angle?", Answer: "90", Options: []string{"45", "90", "180"}},
			{Text: "Angles of a triangle sum to?", Answer: "180", Options: []string{"90", "180", "360"}},
		},
		scores: map[string]float64{"Cara Singh": 79, "Dev Patel": 95},
	},
}

// Run creates the demo data through the services. An existing teacher
// account is reused when its password matches.
func Run(ctx context.Context, svc Services, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	shuffle := opts.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	var result Result
	teacherID, err := ensureTeacher(ctx, svc.Auth, opts)
	if err != nil {
		return result, fmt.Errorf("seed teacher: %w", err)
	}
	result.TeacherID = teacherID
	log.WithField("teacher_id", teacherID).Info("teacher ready")

	for _, name := range demoClasses {
		id, err := svc.Classes.Create(ctx, name, teacherID)
		if err != nil {
			return result, fmt.Errorf("seed class %q: %w", name, err)
		}
		result.ClassIDs = append(result.ClassIDs, id)
	}

	quizzes := demoQuizzes
	if opts.TriviaCount > 0 && opts.Trivia != nil {
		trivia, err := triviaQuiz(ctx, opts.Trivia, opts.TriviaCount, shuffle)
		if err != nil {
			return result, fmt.Errorf("seed trivia: %w", err)
		}
		quizzes = append(append([]demoQuiz{}, demoQuizzes...), trivia)
	}

	firstGrade := map[string]int64{}
	var studentOrder []string
	for _, item := range quizzes {
		classID := result.ClassIDs[item.class]
		created, err := svc.Quizzes.CreateQuiz(ctx, item.title, classID, item.questions)
		if err != nil {
			return result, fmt.Errorf("seed quiz %q: %w", item.title, err)
		}
		result.QuizIDs = append(result.QuizIDs, created.ID)

		for _, name := range slices.Sorted(maps.Keys(item.scores)) {
			score := item.scores[name]
			grade, err := svc.Students.AddGrade(ctx, student.GradeInput{
				Name:    name,
				QuizID:  &created.ID,
				ClassID: &classID,
				Score:   &score,
			})
			if err != nil {
				return result, fmt.Errorf("seed grade for %q: %w", name, err)
			}
			result.GradeIDs = append(result.GradeIDs, grade.ID)
			if _, ok := firstGrade[name]; !ok {
				firstGrade[name] = grade.ID
				studentOrder = append(studentOrder, name)
			}
		}
	}

	// Grade row ids double as student ids; the first row of each name gets
	// a report on the first quiz.
	for _, name := range studentOrder {
		studentID := firstGrade[name]
		entries, err := svc.Reports.Generate(ctx, studentID)
		if err != nil {
			return result, fmt.Errorf("seed report for %q: %w", name, err)
		}
		encoded, err := json.Marshal(entries)
		if err != nil {
			return result, err
		}
		created, err := svc.Reports.Create(ctx, report.Report{
			StudentID:       studentID,
			TeacherID:       teacherID,
			QuizID:          result.QuizIDs[0],
			PerformanceData: string(encoded),
		})
		if err != nil {
			return result, fmt.Errorf("seed report for %q: %w", name, err)
		}
		result.ReportIDs = append(result.ReportIDs, created.ID)
	}

	log.WithFields(logrus.Fields{
		"classes": len(result.ClassIDs),
		"quizzes": len(result.QuizIDs),
		"grades":  len(result.GradeIDs),
		"reports": len(result.ReportIDs),
	}).Info("seed complete")
	return result, nil
}

func ensureTeacher(ctx context.Context, svc *auth.Service, opts Options) (int64, error) {
	name := strings.TrimSpace(opts.TeacherName)
	if name == "" {
		name = "Demo Teacher"
	}
	email := strings.TrimSpace(opts.TeacherEmail)
	if email == "" {
		email = "teacher@mathmate.local"
	}
	password := opts.TeacherPassword
	if password == "" {
		password = "mathmate"
	}

	id, err := svc.Register(ctx, name, email, password)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, auth.ErrEmailTaken) {
		return 0, err
	}

	user, session, err := svc.Login(ctx, email, password)
	if err != nil {
		return 0, err
	}
	if err := svc.Logout(ctx, session.ID); err != nil {
		return 0, err
	}
	return user.ID, nil
}

func triviaQuiz(ctx context.Context, source QuestionSource, amount int, shuffle func(int, func(i, j int))) (demoQuiz, error) {
	raw, err := source.FetchQuestions(ctx, amount)
	if err != nil {
		return demoQuiz{}, err
	}
	if len(raw) == 0 {
		return demoQuiz{}, errors.New("trivia source returned no questions")
	}

	questions := make([]quiz.NewQuestion, 0, len(raw))
	for _, item := range raw {
		questions = append(questions, buildTriviaQuestion(item, shuffle))
	}
	return demoQuiz{
		title:     "Trivia Warm-up",
		class:     0,
		questions: questions,
		scores:    map[string]float64{"Ann Lee": 80, "Ben Ortiz": 90},
	}, nil
}

// buildTriviaQuestion unescapes the HTML entities OpenTriviaDB sends and
// mixes the correct answer in with the incorrect ones.
func buildTriviaQuestion(raw opentdb.RawQuestion, shuffle func(int, func(i, j int))) quiz.NewQuestion {
	answer := html.UnescapeString(raw.CorrectAnswer)
	options := make([]string, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		options = append(options, html.UnescapeString(incorrect))
	}
	options = append(options, answer)

	shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return quiz.NewQuestion{
		Text:    html.UnescapeString(raw.Question),
		Answer:  answer,
		Options: options,
	}
}

