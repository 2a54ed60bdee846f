package apperr

import "errors"

var userMessages = map[Code]string{
	CodeInvalidScore:           "Score must be a number between 0 and 100.",
	CodeInvalidCredits:         "Credit units must be between 1 and 4.",
	CodeMissingField:           "A required field is empty.",
	CodeInvalidCredentials:     "Identifier and password are required; password needs at least 6 characters.",
	CodeInvalidDate:            "Date must use the YYYY-MM-DD format.",
	CodeDuplicateCourse:        "That course is already in the registration form.",
	CodeDuplicateCourseCode:    "A course with that code already exists.",
	CodeDuplicateSession:       "An attendance session for that course and date already exists.",
	CodeAlreadyRegistered:      "You already have a registration form.",
	CodeAlreadyCheckedIn:       "You have already checked in to this session.",
	CodeDuplicateUser:          "That user already exists.",
	CodeCourseNotFound:         "Course not found.",
	CodeUserNotFound:           "User not found.",
	CodeSessionNotFound:        "Attendance session not found.",
	CodeNotRegistered:          "You have no registration form yet.",
	CodeNotEnrolled:            "You are not enrolled in this course.",
	CodeUnknownPolicy:          "Unknown grading policy.",
	CodeEmptySelection:         "Select at least one course.",
	CodeCreditCapExceeded:      "The selected courses exceed the credit limit.",
	CodeMinimumCourseViolation: "The registration form must keep at least one course.",
	CodeCourseInUse:            "The course is referenced by a registration form and cannot be deleted.",
	CodePersistenceFailed:      "The change was applied but could not be saved to the database.",
	CodeAuthFailed:             "Login failed: wrong identifier or password.",
}

// UserMessage returns the console text for an error. Domain errors carrying
// metadata append it in a stable order.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred."
	}
	msg, ok := userMessages[e.Code]
	if !ok {
		return e.Message
	}
	if detail := e.Metadata["detail"]; detail != "" {
		msg += " (" + detail + ")"
	}
	return msg
}
