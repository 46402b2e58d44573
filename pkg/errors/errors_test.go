package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

var (
	errInner = errors.New("inner")
	errPlain = errors.New("plain error")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, janitorerr.ExitSuccess},
		{"general error", janitorerr.ErrGeneral, janitorerr.ExitGeneral},
		{"input error", janitorerr.ErrInvalidInput, janitorerr.ExitInput},
		{"auth error", janitorerr.ErrDecryptionFailed, janitorerr.ExitAuth},
		{"not found error", janitorerr.ErrKeyNotFound, janitorerr.ExitNotFound},
		{"insufficient funds", janitorerr.ErrInsufficientFunds, janitorerr.ExitPermission},
		{"user rejected", janitorerr.ErrUserRejected, janitorerr.ExitRejected},
		{"zero balance", janitorerr.ErrZeroBalance, janitorerr.ExitInput},
		{"plain error", errPlain, janitorerr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, janitorerr.ExitCode(tt.err))
		})
	}
}

func TestExitCodeWrappedError(t *testing.T) {
	t.Parallel()
	wrapped := janitorerr.Wrap(janitorerr.ErrUserRejected, "burn batch")
	assert.Equal(t, janitorerr.ExitRejected, janitorerr.ExitCode(wrapped))
}

func TestSentinelIdentitySurvivesWrapping(t *testing.T) {
	t.Parallel()
	sentinels := []error{
		janitorerr.ErrUserRejected,
		janitorerr.ErrBatchUnsupported,
		janitorerr.ErrNoRoute,
		janitorerr.ErrRateLimited,
		janitorerr.ErrCorruptStore,
	}
	for _, s := range sentinels {
		wrapped := janitorerr.Wrap(s, "context")
		require.ErrorIs(t, wrapped, s)
	}
}

func TestWithDetailsAndSuggestion(t *testing.T) {
	t.Parallel()
	details := map[string]string{"token": "0xabc"}
	err := janitorerr.WithDetails(janitorerr.ErrZeroBalance, details)
	err = janitorerr.WithSuggestion(err, "check the token address")

	var je *janitorerr.JanitorError
	require.ErrorAs(t, err, &je)
	assert.Equal(t, details, je.Details)
	assert.Equal(t, "check the token address", je.Suggestion)
	assert.Equal(t, "ZERO_BALANCE", je.Code)
}

func TestNew(t *testing.T) {
	t.Parallel()
	err := janitorerr.New("CUSTOM_ERROR", "custom error message")
	assert.Equal(t, "custom error message", err.Error())
	assert.Equal(t, janitorerr.ExitGeneral, err.ExitCode)
}

func TestJanitorError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *janitorerr.JanitorError
		expected string
	}{
		{
			name:     "message only",
			err:      &janitorerr.JanitorError{Code: "TEST", Message: "something failed"},
			expected: "something failed",
		},
		{
			name: "details sorted",
			err: &janitorerr.JanitorError{
				Code: "TEST", Message: "failed",
				Details: map[string]string{"beta": "2", "alpha": "1"},
			},
			expected: "failed (alpha: 1) (beta: 2)",
		},
		{
			name:     "with cause",
			err:      &janitorerr.JanitorError{Code: "TEST", Message: "outer", Cause: errInner},
			expected: "outer: inner",
		},
		{
			name: "details and cause",
			err: &janitorerr.JanitorError{
				Code: "TEST", Message: "outer",
				Details: map[string]string{"key": "val"}, Cause: errInner,
			},
			expected: "outer (key: val): inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestJanitorError_Is(t *testing.T) {
	t.Parallel()
	a := &janitorerr.JanitorError{Code: "SAME", Message: "a"}
	b := &janitorerr.JanitorError{Code: "SAME", Message: "b"}
	c := &janitorerr.JanitorError{Code: "OTHER", Message: "c"}
	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
	assert.False(t, a.Is(errPlain))
}

func TestCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "NO_ROUTE", janitorerr.Code(janitorerr.ErrNoRoute))
	assert.Equal(t, "GENERAL_ERROR", janitorerr.Code(errPlain))
	assert.Equal(t, "GENERAL_ERROR", janitorerr.Code(nil))
}

func TestWrap_edgeCases(t *testing.T) {
	t.Parallel()

	t.Run("nil input", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, janitorerr.Wrap(nil, "context"))
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		wrapped := janitorerr.Wrap(errPlain, "context %d", 7)
		var je *janitorerr.JanitorError
		require.ErrorAs(t, wrapped, &je)
		assert.Equal(t, "GENERAL_ERROR", je.Code)
		assert.Equal(t, "context 7", je.Message)
		assert.Equal(t, errPlain, je.Cause)
	})

	t.Run("field preservation", func(t *testing.T) {
		t.Parallel()
		original := janitorerr.WithDetails(janitorerr.ErrKeyNotFound, map[string]string{"chain": "base"})
		wrapped := janitorerr.Wrap(original, "signer")

		var je *janitorerr.JanitorError
		require.ErrorAs(t, wrapped, &je)
		assert.Equal(t, "KEY_NOT_FOUND", je.Code)
		assert.Equal(t, map[string]string{"chain": "base"}, je.Details)
		assert.Equal(t, janitorerr.ErrKeyNotFound.Suggestion, je.Suggestion)
		assert.Equal(t, janitorerr.ExitNotFound, je.ExitCode)
	})
}

func TestWithDetails_plainError(t *testing.T) {
	t.Parallel()
	assert.NoError(t, janitorerr.WithDetails(nil, map[string]string{"k": "v"}))

	result := janitorerr.WithDetails(errPlain, map[string]string{"k": "v"})
	var je *janitorerr.JanitorError
	require.ErrorAs(t, result, &je)
	assert.Equal(t, "plain error", je.Message)
	assert.Equal(t, errPlain, je.Cause)
}

func TestWithSuggestion_plainError(t *testing.T) {
	t.Parallel()
	assert.NoError(t, janitorerr.WithSuggestion(nil, "suggestion"))

	result := janitorerr.WithSuggestion(errPlain, "try this")
	var je *janitorerr.JanitorError
	require.ErrorAs(t, result, &je)
	assert.Equal(t, "try this", je.Suggestion)
}
