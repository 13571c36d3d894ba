package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewHTTPClient("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})

	err := client.doJSON(context.Background(), http.MethodGet, "/healthz", nil, nil)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "Email already in use"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	_, err := client.Register(context.Background(), "Jane", "jane@example.com", "pw")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "Email already in use" {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestDoJSONFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	err := client.doJSON(context.Background(), http.MethodGet, "/anything", nil, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Message != "502 Bad Gateway" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestLoginKeepsSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if body["email"] != "jane@example.com" || body["password"] != "pw" {
			t.Fatalf("login body = %v", body)
		}
		http.SetCookie(w, &http.Cookie{Name: "mathmate_session", Value: "sid-1", Path: "/"})
		_, _ = w.Write([]byte(`{"message":"Login successful","user":{"id":7,"name":"Jane","email":"jane@example.com"}}`))
	})
	mux.HandleFunc("GET /api/users/current", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("mathmate_session")
		if err != nil || cookie.Value != "sid-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":7,"email":"jane@example.com"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewHTTPClient(server.URL, &http.Client{})
	ctx := context.Background()

	user, err := client.Login(ctx, "jane@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != 7 || user.Name != "Jane" {
		t.Fatalf("user = %+v", user)
	}

	identity, err := client.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if identity.ID != 7 || identity.Email != "jane@example.com" {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestIssueTokenSendsBearerOnLaterCalls(t *testing.T) {
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/jwt":
			_, _ = w.Write([]byte(`{"token":"tok-123"}`))
		case "/api/classes":
			authorization = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[{"id":1,"name":"Algebra","teacher_id":7}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	ctx := context.Background()

	if _, err := client.IssueToken(ctx, "jane@example.com"); err != nil {
		t.Fatalf("issue token: %v", err)
	}
	classes, err := client.ListClasses(ctx)
	if err != nil {
		t.Fatalf("list classes: %v", err)
	}
	if authorization != "Bearer tok-123" {
		t.Fatalf("authorization = %q", authorization)
	}
	if len(classes) != 1 || classes[0].Name != "Algebra" || classes[0].TeacherID != 7 {
		t.Fatalf("classes = %+v", classes)
	}
}

func TestListQuizzesUsesClassPath(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":3,"title":"Fractions","class_id":2,"questions":[{"id":9,"question":"1/2+1/2?","answer":"1","options":["1","2"]}]}]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	ctx := context.Background()

	if _, err := client.ListQuizzes(ctx, 0); err != nil {
		t.Fatalf("list all: %v", err)
	}
	quizzes, err := client.ListQuizzes(ctx, 2)
	if err != nil {
		t.Fatalf("list by class: %v", err)
	}
	if strings.Join(paths, ",") != "/api/quizzes,/api/quizzes/class/2" {
		t.Fatalf("paths = %v", paths)
	}
	if len(quizzes) != 1 || len(quizzes[0].Questions) != 1 || quizzes[0].Questions[0].Options[1] != "2" {
		t.Fatalf("quizzes = %+v", quizzes)
	}
}

func TestShellRunsCommands(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/students/quiz/{quizId}/grades", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("quizId") != "4" {
			t.Fatalf("quizId = %q", r.PathValue("quizId"))
		}
		_, _ = w.Write([]byte(`[{"id":11,"name":"Ann","score":92.5},{"id":12,"name":"Ben","score":71}]`))
	})
	mux.HandleFunc("GET /api/reports/summary/student/{studentId}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"student_id":11,"average_score":null,"highest_score":null,"lowest_score":null}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	in := strings.NewReader("grades 4\nsummary 11\nquiz x\nbogus\nexit\n")
	var out bytes.Buffer
	if err := Run(context.Background(), in, &out, Config{ServerURL: server.URL}); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Gradebook for quiz 4:",
		"1. Ann score=92.5 (row 11)",
		"2. Ben score=71 (row 12)",
		"student 11: average=n/a highest=n/a lowest=n/a",
		"error: must be a positive integer",
		"unknown command.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestShellReportsUnavailableServer(t *testing.T) {
	client := NewHTTPClient("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}),
	})

	var out bytes.Buffer
	sh := newShell(client, &out, "http://example.test")
	if err := sh.dispatch(context.Background(), []string{"classes"}); err == nil {
		t.Fatalf("expected dispatch error")
	} else if got := describeClientError(err, sh.serverURL).Error(); got != "mathmate service unavailable at http://example.test" {
		t.Fatalf("described error = %q", got)
	}
}

func TestShellEOFWithoutNewline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader("classes"), &out, Config{ServerURL: server.URL}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "No classes.") {
		t.Fatalf("output = %s", out.String())
	}
}

func TestParseID(t *testing.T) {
	if got, err := parseID("12"); err != nil || got != 12 {
		t.Fatalf("parseID(12) = (%d, %v)", got, err)
	}
	for _, raw := range []string{"0", "-3", "abc"} {
		if _, err := parseID(raw); err == nil {
			t.Fatalf("parseID(%q) expected error", raw)
		}
	}
}
