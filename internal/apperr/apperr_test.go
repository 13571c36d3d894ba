package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatchesKindAndKeepsMessage(t *testing.T) {
	err := New(ErrNotFound, "quiz not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrStore))
	assert.Equal(t, "quiz not found", err.Error())
}

func TestStoreClassifiesDriverErrors(t *testing.T) {
	err := Store("insert quiz", errors.New("disk I/O error"))
	assert.True(t, errors.Is(err, ErrStore))
	assert.Contains(t, err.Error(), "insert quiz")

	timeout := Store("select quiz", fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.True(t, errors.Is(timeout, ErrUnavailable))
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))
}

func TestStorePassesTypedErrorsThrough(t *testing.T) {
	notFound := NotFound("class not found")
	assert.Same(t, notFound, Store("update class", notFound))
	assert.Nil(t, Store("noop", nil))
}
