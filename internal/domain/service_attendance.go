package domain

import (
	"context"
	"math"
)

// academicHours converts a training's wall-clock duration into academic
// hours: each started 45-minute block past the halfway point counts, up to
// a fixed maximum.
func academicHours(t Training) float64 {
	const (
		blockSeconds = 2700
		maxHours     = 10
	)
	secs := t.End.Sub(t.Start).Seconds()
	hours := math.Floor((secs + blockSeconds/2) / blockSeconds)
	return math.Min(hours, maxHours)
}

// SuggestStudents searches students of a group by name or email prefix
// for attendance marking. Only trainers of the group may search.
func (s *Service) SuggestStudents(ctx context.Context, trainerID, groupID int, term string) ([]Suggestion, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasTrainer(trainerID) {
		return nil, ErrNotGroupTrainer
	}
	return s.repo.SuggestStudents(ctx, groupID, term)
}

// TrainingGrades returns the marked hours for every student of a training.
func (s *Service) TrainingGrades(ctx context.Context, trainerID, trainingID int) ([]Grade, error) {
	training, err := s.repo.GetTraining(ctx, trainingID)
	if err != nil {
		return nil, err
	}
	group, err := s.repo.GetGroup(ctx, training.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasTrainer(trainerID) {
		return nil, ErrNotGroupTrainer
	}
	return s.repo.TrainingGrades(ctx, trainingID)
}

// MarkAttendance records hours for students of one training. Marks are
// rejected wholesale when the training is outside its editable window or
// any submitted value falls outside [0, academic hours of the training].
// Trainings of non-accredited groups carry zero academic hours, so only
// zero marks are accepted there.
func (s *Service) MarkAttendance(ctx context.Context, trainerID, trainingID int, marks []Mark) error {
	training, err := s.repo.GetTraining(ctx, trainingID)
	if err != nil {
		return err
	}
	group, err := s.repo.GetGroup(ctx, training.GroupID)
	if err != nil {
		return err
	}
	if !group.HasTrainer(trainerID) {
		return ErrNotGroupTrainer
	}

	now := s.now()
	if now.Before(training.Start) || now.After(training.End.Add(s.editableInterval)) {
		return ErrTrainingNotEditable
	}

	limit := 0.0
	if group.Accredited {
		limit = academicHours(*training)
	}
	for _, mark := range marks {
		if mark.Hours < 0 || mark.Hours > limit {
			return ErrOutboundGrades
		}
	}

	return s.repo.MarkHours(ctx, trainingID, marks)
}

// GroupReport aggregates earned hours per student of a group. Only
// trainers of the group may request it.
func (s *Service) GroupReport(ctx context.Context, trainerID, groupID int) ([]Grade, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasTrainer(trainerID) {
		return nil, ErrNotGroupTrainer
	}
	return s.repo.GroupReport(ctx, groupID)
}

// StudentHours summarises a student's standing in the current semester.
func (s *Service) StudentHours(ctx context.Context, studentID int) (HoursInfo, error) {
	semester, err := s.repo.CurrentSemester(ctx)
	if err != nil {
		return HoursInfo{}, err
	}
	return s.repo.SemesterHours(ctx, studentID, semester.ID)
}

// NegativeHours returns a student's accumulated debt across semesters.
func (s *Service) NegativeHours(ctx context.Context, studentID int) (float64, error) {
	if _, err := s.repo.GetStudent(ctx, studentID); err != nil {
		return 0, err
	}
	return s.repo.NegativeHours(ctx, studentID)
}

// BetterThan reports the share of current-semester students the given
// student has out-earned.
func (s *Service) BetterThan(ctx context.Context, studentID int) (BetterThanInfo, error) {
	semester, err := s.repo.CurrentSemester(ctx)
	if err != nil {
		return BetterThanInfo{}, err
	}
	fraction, err := s.repo.BetterThan(ctx, studentID, semester.ID)
	if err != nil {
		return BetterThanInfo{}, err
	}
	return BetterThanInfo{StudentID: studentID, Percentile: fraction}, nil
}
