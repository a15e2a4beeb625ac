package domain

import (
	"errors"
	"fmt"
)

// Business error codes preserved from the v1 API so clients migrating to
// v2 can keep their error handling.
const (
	CodeGroupFull            = 2
	CodeTooManyGroups        = 3
	CodeDoubleEnroll         = 4
	CodeInconsistentUnenroll = 5
	CodeMedicalDisallowance  = 6
	CodeNotEnrolled          = 7
	CodeSportMismatch        = 8
	CodeSemesterMismatch     = 9
	CodeQRRequired           = 10
	CodeTrainingNotEditable  = 2
	CodeOutboundGrades       = 3
)

// Error is a business failure carrying its v1 error code.
type Error struct {
	Code   int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Detail)
}

var (
	ErrGroupFull = &Error{CodeGroupFull, "Group you chosen is full"}
	ErrTooManyGroups = &Error{CodeTooManyGroups,
		"You have enrolled to too much groups"}
	ErrDoubleEnroll = &Error{CodeDoubleEnroll,
		"You can't enroll to a group you have already enrolled to"}
	ErrInconsistentUnenroll = &Error{CodeInconsistentUnenroll,
		"You are not enrolled to the group"}
	ErrMedicalDisallowance = &Error{CodeMedicalDisallowance,
		"You can't enroll to the group due to your medical group"}
	ErrNotEnrolled = &Error{CodeNotEnrolled,
		"Requested student is not enrolled into this group"}
	ErrSportMismatch = &Error{CodeSportMismatch,
		"Requested group doesn't belong to requested student's sport"}
	ErrSemesterMismatch = &Error{CodeSemesterMismatch,
		"Requested group doesn't belong to current semester"}
	ErrQRRequired = &Error{CodeQRRequired,
		"Requested group has QR requirement"}
)

// Lookup failures reported by the repository.
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrTrainingNotFound = errors.New("training not found")
	ErrSemesterNotFound = errors.New("semester not found")
	ErrSessionNotFound  = errors.New("fitness test session not found")
	ErrSportNotFound    = errors.New("sport not found")
)

// ErrNotGroupTrainer is reported when a trainer touches a group they do
// not teach.
var ErrNotGroupTrainer = errors.New("you are not a trainer of this group")

// ErrTrainingNotEditable is reported when grades are changed outside the
// editable window around the training.
var ErrTrainingNotEditable = &Error{CodeTrainingNotEditable,
	"Training not editable before it or long after it"}

// ErrOutboundGrades is reported when submitted marks fall outside the
// permitted range for the training.
var ErrOutboundGrades = &Error{CodeOutboundGrades,
	"Some students received negative marks or more than maximum"}
