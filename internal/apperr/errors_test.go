package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestCodeKind(t *testing.T) {
	cases := map[apperr.Code]apperr.Kind{
		apperr.CodeInvalidScore:           apperr.KindValidation,
		apperr.CodeDuplicateCourse:        apperr.KindConflict,
		apperr.CodeAlreadyCheckedIn:       apperr.KindConflict,
		apperr.CodeNotRegistered:          apperr.KindNotFound,
		apperr.CodeUnknownPolicy:          apperr.KindPolicy,
		apperr.CodeCreditCapExceeded:      apperr.KindBusinessRule,
		apperr.CodeMinimumCourseViolation: apperr.KindBusinessRule,
		apperr.CodePersistenceFailed:      apperr.KindPersistence,
		apperr.Code("SOMETHING_ELSE"):     apperr.KindUnknown,
	}
	for code, kind := range cases {
		assert.Equal(t, kind, code.Kind(), string(code))
	}
}

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("register: %w", apperr.New(apperr.CodeCreditCapExceeded, "too many credits"))

	assert.True(t, apperr.IsCode(err, apperr.CodeCreditCapExceeded))
	assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))
	assert.True(t, errors.Is(err, apperr.New(apperr.CodeCreditCapExceeded, "")))
	assert.False(t, errors.Is(err, apperr.New(apperr.CodeEmptySelection, "")))
	assert.Equal(t, apperr.CodeUnknown, apperr.GetCode(errors.New("plain")))
}

func TestPersistenceWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Persistence("save grade", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, apperr.KindPersistence, err.Kind())
	assert.Equal(t, "save grade", apperr.GetMetadata(err)["operation"])
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", apperr.UserMessage(nil))
	assert.Equal(t, "An unexpected error occurred.", apperr.UserMessage(errors.New("boom")))

	err := apperr.WithMetadata(apperr.CodeDuplicateCourse, "duplicate", map[string]string{"detail": "IF101"})
	assert.Equal(t, "That course is already in the registration form. (IF101)", apperr.UserMessage(err))
}
