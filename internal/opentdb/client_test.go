package opentdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// stubClient answers every request with status and body and records the
// query it was asked for.
func stubClient(status int, body string, seen *url.Values) *Client {
	return NewClient(&http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if seen != nil {
			*seen = r.URL.Query()
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})})
}

func TestFetchQuestionsAmount(t *testing.T) {
	cases := []struct {
		name   string
		amount int
		want   string
	}{
		{"non-positive uses default", 0, "10"},
		{"within range", 7, "7"},
		{"clamped", 500, "50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen url.Values
			client := stubClient(http.StatusOK, `{"response_code":0,"results":[]}`, &seen)

			questions, err := client.FetchQuestions(context.Background(), tc.amount)
			require.NoError(t, err)
			assert.Empty(t, questions)
			assert.Equal(t, tc.want, seen.Get("amount"))
			assert.False(t, seen.Has("category"))
		})
	}
}

func TestFetchQuestionsDecodesResultsWithCategory(t *testing.T) {
	var seen url.Values
	body := `{"response_code":0,"results":[{"type":"multiple","difficulty":"easy","question":"2 &amp; 2?","correct_answer":"4","incorrect_answers":["3","5","22"]}]}`
	client := stubClient(http.StatusOK, body, &seen).WithCategory(CategoryMathematics)

	questions, err := client.FetchQuestions(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "19", seen.Get("category"))
	require.Len(t, questions, 1)
	assert.Equal(t, "2 &amp; 2?", questions[0].Question)
	assert.Equal(t, "4", questions[0].CorrectAnswer)
	assert.Equal(t, []string{"3", "5", "22"}, questions[0].IncorrectAnswers)
}

func TestFetchQuestionsFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"non-200 status", http.StatusBadGateway, "", "opentdb returned status 502"},
		{"malformed body", http.StatusOK, "not-json", "decode opentdb response"},
		{"non-zero response code", http.StatusOK, `{"response_code":1,"results":[{"question":"ignored"}]}`, "opentdb response_code=1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stubClient(tc.status, tc.body, nil).FetchQuestions(context.Background(), 3)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFetchQuestionsTransportError(t *testing.T) {
	dialErr := errors.New("dial error")
	client := NewClient(&http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, dialErr
	})})

	_, err := client.FetchQuestions(context.Background(), 3)
	require.ErrorIs(t, err, dialErr)
}
