// Package apperr provides the coded error taxonomy shared by the academic services.
package apperr

// Kind groups codes into the broad failure classes callers branch on.
type Kind string

const (
	KindUnknown      Kind = "UNKNOWN"
	KindValidation   Kind = "VALIDATION"
	KindConflict     Kind = "CONFLICT"
	KindNotFound     Kind = "NOT_FOUND"
	KindPolicy       Kind = "POLICY"
	KindBusinessRule Kind = "BUSINESS_RULE"
	KindPersistence  Kind = "PERSISTENCE"
	KindAuth         Kind = "AUTH"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeInvalidScore       Code = "INVALID_SCORE"
	CodeInvalidCredits     Code = "INVALID_CREDITS"
	CodeMissingField       Code = "MISSING_FIELD"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidDate        Code = "INVALID_DATE"

	// Conflict errors
	CodeDuplicateCourse     Code = "DUPLICATE_COURSE"
	CodeDuplicateCourseCode Code = "DUPLICATE_COURSE_CODE"
	CodeDuplicateSession    Code = "DUPLICATE_SESSION"
	CodeAlreadyRegistered   Code = "ALREADY_REGISTERED"
	CodeAlreadyCheckedIn    Code = "ALREADY_CHECKED_IN"
	CodeDuplicateUser       Code = "DUPLICATE_USER"

	// Not found errors
	CodeCourseNotFound  Code = "COURSE_NOT_FOUND"
	CodeUserNotFound    Code = "USER_NOT_FOUND"
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	CodeNotRegistered   Code = "NOT_REGISTERED"
	CodeNotEnrolled     Code = "NOT_ENROLLED"

	// Policy errors
	CodeUnknownPolicy Code = "UNKNOWN_POLICY"

	// Business rule errors
	CodeEmptySelection         Code = "EMPTY_SELECTION"
	CodeCreditCapExceeded      Code = "CREDIT_CAP_EXCEEDED"
	CodeMinimumCourseViolation Code = "MINIMUM_COURSE_VIOLATION"
	CodeCourseInUse            Code = "COURSE_IN_USE"

	// Persistence errors
	CodePersistenceFailed Code = "PERSISTENCE_FAILED"

	// Auth errors
	CodeAuthFailed Code = "AUTH_FAILED"
)

// Kind maps a code to its failure class.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidScore,
		CodeInvalidCredits,
		CodeMissingField,
		CodeInvalidCredentials,
		CodeInvalidDate:
		return KindValidation

	case CodeDuplicateCourse,
		CodeDuplicateCourseCode,
		CodeDuplicateSession,
		CodeAlreadyRegistered,
		CodeAlreadyCheckedIn,
		CodeDuplicateUser:
		return KindConflict

	// NotEnrolled is a lookup miss of the session course in the student's record.
	case CodeCourseNotFound,
		CodeUserNotFound,
		CodeSessionNotFound,
		CodeNotRegistered,
		CodeNotEnrolled:
		return KindNotFound

	case CodeUnknownPolicy:
		return KindPolicy

	case CodeEmptySelection,
		CodeCreditCapExceeded,
		CodeMinimumCourseViolation,
		CodeCourseInUse:
		return KindBusinessRule

	case CodePersistenceFailed:
		return KindPersistence

	case CodeAuthFailed:
		return KindAuth

	default:
		return KindUnknown
	}
}
