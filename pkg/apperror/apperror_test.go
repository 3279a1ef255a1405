package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("session not found")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("register: %w", Conflict("already registered"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("load sessions", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, KindInternal))
	assert.Equal(t, "load sessions: connection reset", err.Error())
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields("invalid participant", map[string]string{"nic": "invalid format"})
	assert.True(t, Is(err, KindValidation))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "invalid format", err.Fields["nic"])
}
