package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := Validation("consultationFee", "must not be negative")
	assert.Equal(t, "validation: consultationFee: must not be negative", err.Error())

	bare := &ValidationError{Reason: "dispute reason must not be empty"}
	assert.Equal(t, "validation: dispute reason must not be empty", bare.Error())
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("appointments: accept: %w", InvalidTransition("appointment", "completed", "accept"))

	var ste *StateTransitionError
	assert.True(t, errors.As(wrapped, &ste))
	assert.Equal(t, "completed", ste.From)
	assert.Equal(t, "accept", ste.Action)
}

func TestNotFound(t *testing.T) {
	err := NotFound("appointment", "apt-1")
	assert.Equal(t, `appointment "apt-1" not found`, err.Error())

	var nfe *NotFoundError
	assert.True(t, errors.As(fmt.Errorf("x: %w", err), &nfe))
}
