package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError_IsKindAndKeepsMessage(t *testing.T) {
	err := NewError(ErrorAlreadyExists, "username has already existed")

	assert.ErrorIs(t, err, ErrorAlreadyExists)
	assert.NotErrorIs(t, err, ErrorConflict)
	assert.Equal(t, "username has already existed", err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	assert.ErrorIs(t, wrapped, ErrorAlreadyExists)

	var e *Error
	assert.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "username has already existed", e.Message)
}

func TestNewError_EmptyMessageUsesKind(t *testing.T) {
	err := NewError(ErrorNotFound, "")
	assert.Equal(t, "not found", err.Error())
}
