package domain

import (
	"context"
	"errors"
	"time"
)

// Service orchestrates sport-enrollment workflows on top of a Repository.
type Service struct {
	repo Repository
	now  func() time.Time

	// How long after a training its grades stay editable.
	editableInterval time.Duration
	// How early before its start a training opens for check-in.
	checkInLead time.Duration
}

// NewService constructs a Service with production defaults.
func NewService(repo Repository) *Service {
	return &Service{
		repo:             repo,
		now:              time.Now,
		editableInterval: 7 * 24 * time.Hour,
		checkInLead:      30 * time.Minute,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// StudentInfo returns the profile of the given student.
func (s *Service) StudentInfo(ctx context.Context, studentID int) (*Student, error) {
	return s.repo.GetStudent(ctx, studentID)
}

// ToggleQR flips the student's QR flag and returns the new value.
func (s *Service) ToggleQR(ctx context.Context, studentID int) (bool, error) {
	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return false, err
	}
	next := !student.HasQR
	if err := s.repo.SetHasQR(ctx, studentID, next); err != nil {
		return false, err
	}
	return next, nil
}

// ChangeGender updates a student's recorded gender.
func (s *Service) ChangeGender(ctx context.Context, studentID int, gender string) error {
	if _, err := s.repo.GetStudent(ctx, studentID); err != nil {
		return err
	}
	return s.repo.SetGender(ctx, studentID, gender)
}

// TrainingHistory lists a student's attended hours for a semester,
// optionally including approved self-sport hours.
func (s *Service) TrainingHistory(ctx context.Context, studentID, semesterID int, includeSelf bool) ([]TrainingHours, error) {
	return s.repo.HoursHistory(ctx, studentID, semesterID, includeSelf)
}

// TrainingHistoryByDate lists a student's attended hours between two
// dates, inclusive, regardless of semester boundaries.
func (s *Service) TrainingHistoryByDate(ctx context.Context, studentID int, from, to time.Time) ([]TrainingHours, error) {
	return s.repo.HoursHistoryByDate(ctx, studentID, from, to)
}

// EnrollStudent enrolls a student into a group, enforcing the v1 error
// code table: sport match, double enrollment, enrollment limit, semester
// match, medical allowance, then a capacity-checked insert.
func (s *Service) EnrollStudent(ctx context.Context, studentID, groupID int) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}

	if student.SportID == nil || *student.SportID != group.SportID {
		return ErrSportMismatch
	}

	enrolled, err := s.repo.IsEnrolled(ctx, studentID, groupID)
	if err != nil {
		return err
	}
	if enrolled {
		return ErrDoubleEnroll
	}

	semester, err := s.repo.CurrentSemester(ctx)
	if err != nil {
		return err
	}

	count, err := s.repo.CountEnrollments(ctx, studentID, semester.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTooManyGroups
	}

	if group.SemesterID != semester.ID {
		return ErrSemesterMismatch
	}

	if !group.AllowsMedicalGroup(student.MedicalGroupID) {
		return ErrMedicalDisallowance
	}

	return s.repo.Enroll(ctx, studentID, groupID)
}

// UnenrollStudent removes a student's own enrollment.
func (s *Service) UnenrollStudent(ctx context.Context, studentID, groupID int) error {
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return err
	}
	removed, err := s.repo.Unenroll(ctx, studentID, groupID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrInconsistentUnenroll
	}
	return nil
}

// UnenrollByTrainer removes another student's enrollment on behalf of a
// trainer of the group.
func (s *Service) UnenrollByTrainer(ctx context.Context, trainerID, studentID, groupID int) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasTrainer(trainerID) {
		return ErrNotGroupTrainer
	}
	removed, err := s.repo.Unenroll(ctx, studentID, groupID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotEnrolled
	}
	return nil
}

// GroupInfo returns one training group.
func (s *Service) GroupInfo(ctx context.Context, groupID int) (*Group, error) {
	return s.repo.GetGroup(ctx, groupID)
}

// Sports lists the selectable sports.
func (s *Service) Sports(ctx context.Context) ([]Sport, error) {
	return s.repo.ListSports(ctx)
}

// SelectSport records a student's sport choice.
func (s *Service) SelectSport(ctx context.Context, studentID, sportID int) error {
	if _, err := s.repo.GetSport(ctx, sportID); err != nil {
		return err
	}
	if _, err := s.repo.GetStudent(ctx, studentID); err != nil {
		return err
	}
	return s.repo.SetSport(ctx, studentID, sportID)
}

// TrainingInfo returns one scheduled training.
func (s *Service) TrainingInfo(ctx context.Context, trainingID int) (*Training, error) {
	return s.repo.GetTraining(ctx, trainingID)
}

// ErrTrainingNotOpen is reported when a check-in falls outside the
// training's open window.
var ErrTrainingNotOpen = errors.New("training is not open for check-in")

// CheckIn records a student's presence at a training. The student must be
// enrolled in the group, the group's QR requirement must be satisfied, and
// the training must be open (from shortly before its start to its end).
func (s *Service) CheckIn(ctx context.Context, studentID, trainingID int) error {
	training, err := s.repo.GetTraining(ctx, trainingID)
	if err != nil {
		return err
	}
	group, err := s.repo.GetGroup(ctx, training.GroupID)
	if err != nil {
		return err
	}
	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}

	enrolled, err := s.repo.IsEnrolled(ctx, studentID, group.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	if group.RequiresQR && !student.HasQR {
		return ErrQRRequired
	}

	now := s.now()
	if now.Before(training.Start.Add(-s.checkInLead)) || now.After(training.End) {
		return ErrTrainingNotOpen
	}

	return s.repo.CheckIn(ctx, studentID, trainingID)
}

// CancelCheckIn removes a prior check-in before the training ends.
func (s *Service) CancelCheckIn(ctx context.Context, studentID, trainingID int) error {
	training, err := s.repo.GetTraining(ctx, trainingID)
	if err != nil {
		return err
	}
	if s.now().After(training.End) {
		return ErrTrainingNotOpen
	}
	removed, err := s.repo.CancelCheckIn(ctx, studentID, trainingID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotEnrolled
	}
	return nil
}
