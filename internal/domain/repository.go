package domain

import (
	"context"
	"time"
)

// Mark is one student's submitted hours for a training.
type Mark struct {
	StudentID int
	Hours     float64
}

// StudentStore covers profile persistence.
type StudentStore interface {
	GetStudent(ctx context.Context, studentID int) (*Student, error)
	SetHasQR(ctx context.Context, studentID int, hasQR bool) error
	SetGender(ctx context.Context, studentID int, gender string) error
	SetSport(ctx context.Context, studentID, sportID int) error
	HoursHistory(ctx context.Context, studentID, semesterID int, includeSelf bool) ([]TrainingHours, error)
	HoursHistoryByDate(ctx context.Context, studentID int, from, to time.Time) ([]TrainingHours, error)
}

// EnrollmentStore covers group membership mutations.
type EnrollmentStore interface {
	GetGroup(ctx context.Context, groupID int) (*Group, error)
	IsEnrolled(ctx context.Context, studentID, groupID int) (bool, error)
	CountEnrollments(ctx context.Context, studentID, semesterID int) (int, error)
	// Enroll performs a capacity-checked insert and reports ErrGroupFull
	// when the group is at capacity.
	Enroll(ctx context.Context, studentID, groupID int) error
	Unenroll(ctx context.Context, studentID, groupID int) (bool, error)
}

// TrainingStore covers sessions and check-ins.
type TrainingStore interface {
	GetTraining(ctx context.Context, trainingID int) (*Training, error)
	// CheckIn performs a capacity-checked insert and reports ErrGroupFull
	// when the session is at capacity.
	CheckIn(ctx context.Context, studentID, trainingID int) error
	CancelCheckIn(ctx context.Context, studentID, trainingID int) (bool, error)
}

// AttendanceStore covers grading and hour aggregation.
type AttendanceStore interface {
	SuggestStudents(ctx context.Context, groupID int, term string) ([]Suggestion, error)
	TrainingGrades(ctx context.Context, trainingID int) ([]Grade, error)
	MarkHours(ctx context.Context, trainingID int, marks []Mark) error
	GroupReport(ctx context.Context, groupID int) ([]Grade, error)
	SemesterHours(ctx context.Context, studentID, semesterID int) (HoursInfo, error)
	NegativeHours(ctx context.Context, studentID int) (float64, error)
	// BetterThan returns the fraction of semester students whose earned
	// hours are strictly below the given student's.
	BetterThan(ctx context.Context, studentID, semesterID int) (float64, error)
}

// CalendarStore covers schedules.
type CalendarStore interface {
	SportSchedule(ctx context.Context, sportID int) ([]ScheduleEntry, error)
	StudentTrainings(ctx context.Context, studentID int, from, to time.Time) ([]Training, error)
}

// CatalogStore covers reference data and student submissions.
type CatalogStore interface {
	ListSports(ctx context.Context) ([]Sport, error)
	GetSport(ctx context.Context, sportID int) (*Sport, error)
	Semesters(ctx context.Context, currentOnly bool) ([]Semester, error)
	CurrentSemester(ctx context.Context) (*Semester, error)
	MedicalGroups(ctx context.Context) ([]MedicalGroup, error)
	SaveReference(ctx context.Context, ref Reference) (int, error)
	SelfSportTypes(ctx context.Context) ([]SelfSportType, error)
	SaveSelfSportReport(ctx context.Context, report SelfSportReport) (int, error)
	FitnessTestExercises(ctx context.Context) ([]FitnessTestExercise, error)
	FitnessTestSessions(ctx context.Context) ([]FitnessTestSession, error)
	FitnessTestSession(ctx context.Context, sessionID int) (*FitnessTestSession, error)
	FitnessTestResults(ctx context.Context, studentID int) ([]FitnessTestResult, error)
	CreateFitnessTestSession(ctx context.Context, session FitnessTestSession) (int, error)
	SaveFitnessTestResults(ctx context.Context, sessionID int, results []FitnessTestResult) error
	Measurements(ctx context.Context) ([]Measurement, error)
	MeasurementResults(ctx context.Context, studentID int) ([]MeasurementResult, error)
	SaveMeasurementResult(ctx context.Context, result MeasurementResult) error
	AttendanceAnalytics(ctx context.Context, semesterID int) (AttendanceAnalytics, error)
}

// Repository is the full persistence surface the service depends on.
type Repository interface {
	StudentStore
	EnrollmentStore
	TrainingStore
	AttendanceStore
	CalendarStore
	CatalogStore
}
