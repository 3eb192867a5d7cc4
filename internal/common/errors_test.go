package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NewError(CodeUnexpectedMessageID, "expected %d, got %d", 2, 3)

	assert.ErrorIs(t, err, ErrUnexpectedMessageID)
	assert.NotErrorIs(t, err, ErrUnexpectedType)

	wrapped := fmt.Errorf("get: %w", err)
	assert.ErrorIs(t, wrapped, ErrUnexpectedMessageID)
	assert.Equal(t, CodeUnexpectedMessageID, CodeOf(wrapped))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	err := WrapError(CodeTransport, io.ErrUnexpectedEOF, "recv")

	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "Transport: recv")
	assert.Contains(t, err.Error(), io.ErrUnexpectedEOF.Error())
}

func TestCodeOf_NonTyped(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestClassification(t *testing.T) {
	tests := []struct {
		code     Code
		protocol bool
		fatal    bool
	}{
		{CodeUnexpectedMessageID, true, false},
		{CodeEndOfStream, true, false},
		{CodeUnauthorized, true, true},
		{CodeInvalidArgument, true, true},
		{CodeUnavailable, true, false},
		{CodeTypeMismatch, false, false},
		{CodeInflightRequests, false, false},
		{CodeCanceled, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewError(tt.code, "x")
			assert.Equal(t, tt.protocol, IsProtocol(err))
			assert.Equal(t, tt.fatal, IsFatalCredential(err))
		})
	}
}

func TestError_CanceledMatchesContext(t *testing.T) {
	err := WrapError(CodeCanceled, errors.New("rpc canceled"), "gone")

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, NewError(CodeTransport, "x"), context.Canceled)
}
