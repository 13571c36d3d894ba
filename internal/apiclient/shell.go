package apiclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultServer      = "http://127.0.0.1:5001"
	defaultHTTPTimeout = 5 * time.Second
)

type Config struct {
	ServerURL   string
	HTTPTimeout time.Duration
}

// Run reads commands from in until exit or EOF. Command errors are printed
// and the loop continues.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	return newShell(client, out, serverURL).run(ctx, bufio.NewReader(in))
}

type shell struct {
	client    *HTTPClient
	out       io.Writer
	serverURL string
	email     string
}

func newShell(client *HTTPClient, out io.Writer, serverURL string) *shell {
	return &shell{client: client, out: out, serverURL: serverURL}
}

func (s *shell) run(ctx context.Context, reader *bufio.Reader) error {
	fmt.Fprintf(s.out, "mathmate-client\nserver=%s\n\n", s.serverURL)
	printHelp(s.out)

	for {
		fmt.Fprint(s.out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(line) != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if strings.EqualFold(args[0], "exit") {
			return nil
		}
		if cmdErr := s.dispatch(ctx, args); cmdErr != nil {
			fmt.Fprintf(s.out, "error: %v\n", describeClientError(cmdErr, s.serverURL))
		}
		if err != nil {
			fmt.Fprintln(s.out)
			return nil
		}
	}
}

func (s *shell) dispatch(ctx context.Context, args []string) error {
	switch strings.ToLower(args[0]) {
	case "help":
		printHelp(s.out)
		return nil
	case "register":
		if len(args) != 4 {
			return errors.New("usage: register <name> <email> <password>")
		}
		id, err := s.client.Register(ctx, args[1], args[2], args[3])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "registered user %d\n", id)
	case "login":
		if len(args) != 3 {
			return errors.New("usage: login <email> <password>")
		}
		user, err := s.client.Login(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		s.email = user.Email
		fmt.Fprintf(s.out, "logged in as %s (id %d)\n", user.Name, user.ID)
	case "logout":
		if err := s.client.Logout(ctx); err != nil {
			return err
		}
		s.email = ""
		fmt.Fprintln(s.out, "logged out")
	case "whoami":
		identity, err := s.client.CurrentUser(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s (id %d)\n", identity.Email, identity.ID)
	case "token":
		email := s.email
		if len(args) > 1 {
			email = args[1]
		}
		if email == "" {
			return errors.New("usage: token <email> (or login first)")
		}
		if _, err := s.client.IssueToken(ctx, email); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "bearer token stored for this session")
	case "classes":
		return s.listClasses(ctx)
	case "quizzes":
		classID := int64(0)
		if len(args) > 1 {
			id, err := parseID(args[1])
			if err != nil {
				return fmt.Errorf("classId %w", err)
			}
			classID = id
		}
		return s.listQuizzes(ctx, classID)
	case "quiz":
		id, err := requireID(args, "usage: quiz <id>")
		if err != nil {
			return err
		}
		return s.showQuiz(ctx, id)
	case "grades":
		id, err := requireID(args, "usage: grades <quizId>")
		if err != nil {
			return err
		}
		return s.showGradebook(ctx, id)
	case "summary":
		id, err := requireID(args, "usage: summary <studentId>")
		if err != nil {
			return err
		}
		return s.showSummary(ctx, id)
	default:
		fmt.Fprintln(s.out, "unknown command. type 'help' for usage.")
	}
	return nil
}

func (s *shell) listClasses(ctx context.Context) error {
	classes, err := s.client.ListClasses(ctx)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		fmt.Fprintln(s.out, "No classes.")
		return nil
	}
	for _, class := range classes {
		fmt.Fprintf(s.out, "%d. %s (teacher %d)\n", class.ID, class.Name, class.TeacherID)
	}
	return nil
}

func (s *shell) listQuizzes(ctx context.Context, classID int64) error {
	quizzes, err := s.client.ListQuizzes(ctx, classID)
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		fmt.Fprintln(s.out, "No quizzes.")
		return nil
	}
	for _, item := range quizzes {
		fmt.Fprintf(s.out, "%d. %s (class %d, %d questions)\n", item.ID, item.Title, item.ClassID, len(item.Questions))
	}
	return nil
}

func (s *shell) showQuiz(ctx context.Context, id int64) error {
	found, err := s.client.GetQuiz(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s (class %d)\n", found.Title, found.ClassID)
	for idx, question := range found.Questions {
		fmt.Fprintf(s.out, "\nQ%d: %s\n", idx+1, question.Text)
		for optIdx, option := range question.Options {
			fmt.Fprintf(s.out, "  %c. %s\n", 'A'+optIdx, option)
		}
		fmt.Fprintf(s.out, "  answer: %s\n", question.Answer)
	}
	return nil
}

func (s *shell) showGradebook(ctx context.Context, quizID int64) error {
	grades, err := s.client.Gradebook(ctx, quizID)
	if err != nil {
		return err
	}
	if len(grades) == 0 {
		fmt.Fprintf(s.out, "No grades for quiz %d.\n", quizID)
		return nil
	}
	fmt.Fprintf(s.out, "Gradebook for quiz %d:\n", quizID)
	for idx, grade := range grades {
		fmt.Fprintf(s.out, "%d. %s score=%s (row %d)\n", idx+1, grade.Name, formatScore(grade.Score), grade.ID)
	}
	return nil
}

func (s *shell) showSummary(ctx context.Context, studentID int64) error {
	summary, err := s.client.Summary(ctx, studentID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "student %d: average=%s highest=%s lowest=%s\n",
		summary.StudentID,
		formatOptionalScore(summary.AverageScore),
		formatOptionalScore(summary.HighestScore),
		formatOptionalScore(summary.LowestScore),
	)
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  register <name> <email> <password>")
	fmt.Fprintln(out, "  login <email> <password>")
	fmt.Fprintln(out, "  logout")
	fmt.Fprintln(out, "  whoami")
	fmt.Fprintln(out, "  token [email]")
	fmt.Fprintln(out, "  classes")
	fmt.Fprintln(out, "  quizzes [classId]")
	fmt.Fprintln(out, "  quiz <id>")
	fmt.Fprintln(out, "  grades <quizId>")
	fmt.Fprintln(out, "  summary <studentId>")
	fmt.Fprintln(out, "  exit")
}

func requireID(args []string, usage string) (int64, error) {
	if len(args) != 2 {
		return 0, errors.New(usage)
	}
	return parseID(args[1])
}

func parseID(raw string) (int64, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func formatOptionalScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return formatScore(*score)
}

func describeClientError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("mathmate service unavailable at %s", serverURL)
	}
	return err
}
