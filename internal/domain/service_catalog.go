package domain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SportSchedule lists the weekly schedule of a sport's groups in the
// current semester.
func (s *Service) SportSchedule(ctx context.Context, sportID int) ([]ScheduleEntry, error) {
	if _, err := s.repo.GetSport(ctx, sportID); err != nil {
		return nil, err
	}
	return s.repo.SportSchedule(ctx, sportID)
}

// PersonalTrainings lists a student's upcoming trainings in the given
// window. A zero window defaults to the coming two weeks.
func (s *Service) PersonalTrainings(ctx context.Context, studentID int, from, to time.Time) ([]Training, error) {
	if from.IsZero() {
		from = s.now()
	}
	if to.IsZero() {
		to = from.Add(14 * 24 * time.Hour)
	}
	if to.Before(from) {
		return nil, errors.New("window end precedes start")
	}
	return s.repo.StudentTrainings(ctx, studentID, from, to)
}

// UploadReference stores a medical reference claim for later review.
func (s *Service) UploadReference(ctx context.Context, ref Reference) (int, error) {
	if ref.End.Before(ref.Start) {
		return 0, errors.New("reference end precedes start")
	}
	ref.UploadedAt = s.now().UTC()
	return s.repo.SaveReference(ctx, ref)
}

// ErrUnknownSelfSportType is reported for reports against a category that
// does not exist.
var ErrUnknownSelfSportType = errors.New("unknown self-sport type")

// SelfSportTypes lists accepted self-sport categories.
func (s *Service) SelfSportTypes(ctx context.Context) ([]SelfSportType, error) {
	return s.repo.SelfSportTypes(ctx)
}

// UploadSelfSport stores a self-reported activity claim, capping claimed
// hours at the category maximum.
func (s *Service) UploadSelfSport(ctx context.Context, report SelfSportReport) (int, error) {
	types, err := s.repo.SelfSportTypes(ctx)
	if err != nil {
		return 0, err
	}
	var found *SelfSportType
	for i := range types {
		if types[i].ID == report.TypeID {
			found = &types[i]
			break
		}
	}
	if found == nil {
		return 0, ErrUnknownSelfSportType
	}
	if report.Hours > found.MaxHours {
		report.Hours = found.MaxHours
	}
	report.Status = "pending"
	report.UploadedAt = s.now().UTC()
	return s.repo.SaveSelfSportReport(ctx, report)
}

// ParseStrava extracts the activity identity from a Strava link. Only the
// link shape is validated here; fetching activity details is left to the
// review pipeline.
func (s *Service) ParseStrava(link string) (StravaActivity, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return StravaActivity{}, fmt.Errorf("invalid link: %v", err)
	}
	host := strings.TrimPrefix(parsed.Host, "www.")
	if host != "strava.com" && host != "strava.app.link" {
		return StravaActivity{}, errors.New("link is not a Strava activity")
	}
	if host == "strava.com" && !strings.HasPrefix(parsed.Path, "/activities/") {
		return StravaActivity{}, errors.New("link is not a Strava activity")
	}
	return StravaActivity{Link: parsed.String(), Type: "strava"}, nil
}

// FitnessTestExercises lists the exercises of the fitness test.
func (s *Service) FitnessTestExercises(ctx context.Context) ([]FitnessTestExercise, error) {
	return s.repo.FitnessTestExercises(ctx)
}

// FitnessTestSessions lists recorded test sessions.
func (s *Service) FitnessTestSessions(ctx context.Context) ([]FitnessTestSession, error) {
	return s.repo.FitnessTestSessions(ctx)
}

// FitnessTestSession returns one recorded test session.
func (s *Service) FitnessTestSession(ctx context.Context, sessionID int) (*FitnessTestSession, error) {
	return s.repo.FitnessTestSession(ctx, sessionID)
}

// FitnessTestResults lists a student's recorded scores.
func (s *Service) FitnessTestResults(ctx context.Context, studentID int) ([]FitnessTestResult, error) {
	return s.repo.FitnessTestResults(ctx, studentID)
}

// UploadFitnessTest records scores into an existing session, or into a
// freshly created one when sessionID is zero.
func (s *Service) UploadFitnessTest(ctx context.Context, sessionID int, semester string, retake bool, results []FitnessTestResult) (int, error) {
	if len(results) == 0 {
		return 0, errors.New("no results submitted")
	}
	if sessionID == 0 {
		id, err := s.repo.CreateFitnessTestSession(ctx, FitnessTestSession{
			Semester: semester,
			Date:     s.now().UTC(),
			Retake:   retake,
		})
		if err != nil {
			return 0, err
		}
		sessionID = id
	} else if _, err := s.repo.FitnessTestSession(ctx, sessionID); err != nil {
		return 0, err
	}
	if err := s.repo.SaveFitnessTestResults(ctx, sessionID, results); err != nil {
		return 0, err
	}
	return sessionID, nil
}

// Measurements lists the tracked body metrics.
func (s *Service) Measurements(ctx context.Context) ([]Measurement, error) {
	return s.repo.Measurements(ctx)
}

// MeasurementResults lists a student's recorded samples.
func (s *Service) MeasurementResults(ctx context.Context, studentID int) ([]MeasurementResult, error) {
	return s.repo.MeasurementResults(ctx, studentID)
}

// RecordMeasurement stores one measurement sample.
func (s *Service) RecordMeasurement(ctx context.Context, result MeasurementResult) error {
	if result.Value <= 0 {
		return errors.New("measurement value must be positive")
	}
	result.ApprovedAt = s.now().UTC()
	return s.repo.SaveMeasurementResult(ctx, result)
}

// Semesters lists all semesters, or only the current one.
func (s *Service) Semesters(ctx context.Context, currentOnly bool) ([]Semester, error) {
	return s.repo.Semesters(ctx, currentOnly)
}

// AttendanceReport aggregates attendance for a semester; zero semesterID
// means the current one.
func (s *Service) AttendanceReport(ctx context.Context, semesterID int) (AttendanceAnalytics, error) {
	if semesterID == 0 {
		semester, err := s.repo.CurrentSemester(ctx)
		if err != nil {
			return AttendanceAnalytics{}, err
		}
		semesterID = semester.ID
	}
	return s.repo.AttendanceAnalytics(ctx, semesterID)
}

// MedicalGroups lists the configured medical groups.
func (s *Service) MedicalGroups(ctx context.Context) ([]MedicalGroup, error) {
	return s.repo.MedicalGroups(ctx)
}
