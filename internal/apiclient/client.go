// Package apiclient talks to the MathMate HTTP API and drives the terminal
// client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"

	"mathmate/internal/auth"
	"mathmate/internal/classroom"
	"mathmate/internal/quiz"
	"mathmate/internal/student"
)

var ErrServiceUnavailable = errors.New("mathmate service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPClient keeps the session cookie in a jar and, once set, a bearer
// token sent with every request.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewHTTPClient attaches a cookie jar to httpClient when it has none.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err == nil {
			httpClient.Jar = jar
		}
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

type registerResponse struct {
	UserID int64 `json:"userId"`
}

type loginResponse struct {
	User struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type currentUserResponse struct {
	User auth.Identity `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Summary is the report summary of one grade row.
type Summary struct {
	StudentID    int64    `json:"student_id"`
	AverageScore *float64 `json:"average_score"`
	HighestScore *float64 `json:"highest_score"`
	LowestScore  *float64 `json:"lowest_score"`
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (int64, error) {
	request := map[string]string{"name": name, "email": email, "password": password}
	var payload registerResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/register", request, &payload); err != nil {
		return 0, err
	}
	return payload.UserID, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (auth.User, error) {
	request := map[string]string{"email": email, "password": password}
	var payload loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login", request, &payload); err != nil {
		return auth.User{}, err
	}
	return auth.User{ID: payload.User.ID, Name: payload.User.Name, Email: payload.User.Email}, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	c.SetToken("")
	return c.doJSON(ctx, http.MethodPost, "/api/users/logout", nil, nil)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (auth.Identity, error) {
	var payload currentUserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/current", nil, &payload); err != nil {
		return auth.Identity{}, err
	}
	return payload.User, nil
}

// IssueToken requests a bearer token for email and keeps it for later calls.
func (c *HTTPClient) IssueToken(ctx context.Context, email string) (string, error) {
	var payload tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/jwt", map[string]string{"email": email}, &payload); err != nil {
		return "", err
	}
	c.SetToken(payload.Token)
	return payload.Token, nil
}

func (c *HTTPClient) ListClasses(ctx context.Context) ([]classroom.Class, error) {
	var classes []classroom.Class
	if err := c.doJSON(ctx, http.MethodGet, "/api/classes", nil, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// ListQuizzes lists every quiz, or only those of classID when it is positive.
func (c *HTTPClient) ListQuizzes(ctx context.Context, classID int64) ([]quiz.Quiz, error) {
	path := "/api/quizzes"
	if classID > 0 {
		path = "/api/quizzes/class/" + strconv.FormatInt(classID, 10)
	}
	var quizzes []quiz.Quiz
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (c *HTTPClient) GetQuiz(ctx context.Context, id int64) (quiz.Quiz, error) {
	var found quiz.Quiz
	if err := c.doJSON(ctx, http.MethodGet, "/api/quizzes/"+strconv.FormatInt(id, 10), nil, &found); err != nil {
		return quiz.Quiz{}, err
	}
	return found, nil
}

func (c *HTTPClient) Gradebook(ctx context.Context, quizID int64) ([]student.Grade, error) {
	var grades []student.Grade
	path := "/api/students/quiz/" + strconv.FormatInt(quizID, 10) + "/grades"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

func (c *HTTPClient) Summary(ctx context.Context, studentID int64) (Summary, error) {
	var summary Summary
	path := "/api/reports/summary/student/" + strconv.FormatInt(studentID, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
