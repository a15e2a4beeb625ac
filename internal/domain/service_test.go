package domain

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubRepo is a map-backed Repository for service tests.
type stubRepo struct {
	students  map[int]*Student
	groups    map[int]*Group
	trainings map[int]*Training
	semester  *Semester

	enrolled    map[[2]int]bool
	enrollCount int

	enrollCalls   int
	markCalls     [][]Mark
	unenrollHits  bool
	checkInCalls  int
	cancelHits    bool
	sports        []Sport
	suggestions   []Suggestion
	grades        []Grade
	hoursInfo     HoursInfo
	debt          float64
	betterThan    float64
	history       []TrainingHours
	historyByDate []TrainingHours
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		students:  make(map[int]*Student),
		groups:    make(map[int]*Group),
		trainings: make(map[int]*Training),
		enrolled:  make(map[[2]int]bool),
	}
}

func (r *stubRepo) GetStudent(_ context.Context, id int) (*Student, error) {
	if s, ok := r.students[id]; ok {
		return s, nil
	}
	return nil, ErrStudentNotFound
}

func (r *stubRepo) SetHasQR(_ context.Context, id int, hasQR bool) error {
	r.students[id].HasQR = hasQR
	return nil
}

func (r *stubRepo) SetGender(_ context.Context, id int, gender string) error {
	r.students[id].Gender = gender
	return nil
}

func (r *stubRepo) SetSport(_ context.Context, id, sportID int) error {
	r.students[id].SportID = &sportID
	return nil
}

func (r *stubRepo) HoursHistory(_ context.Context, _, _ int, _ bool) ([]TrainingHours, error) {
	return r.history, nil
}

func (r *stubRepo) HoursHistoryByDate(_ context.Context, _ int, _, _ time.Time) ([]TrainingHours, error) {
	return r.historyByDate, nil
}

func (r *stubRepo) GetGroup(_ context.Context, id int) (*Group, error) {
	if g, ok := r.groups[id]; ok {
		return g, nil
	}
	return nil, ErrGroupNotFound
}

func (r *stubRepo) IsEnrolled(_ context.Context, studentID, groupID int) (bool, error) {
	return r.enrolled[[2]int{studentID, groupID}], nil
}

func (r *stubRepo) CountEnrollments(_ context.Context, _, _ int) (int, error) {
	return r.enrollCount, nil
}

func (r *stubRepo) Enroll(_ context.Context, studentID, groupID int) error {
	group := r.groups[groupID]
	if group.Capacity > 0 && group.Enrolled >= group.Capacity {
		return ErrGroupFull
	}
	r.enrollCalls++
	r.enrolled[[2]int{studentID, groupID}] = true
	group.Enrolled++
	return nil
}

func (r *stubRepo) Unenroll(_ context.Context, studentID, groupID int) (bool, error) {
	key := [2]int{studentID, groupID}
	if !r.enrolled[key] {
		return false, nil
	}
	delete(r.enrolled, key)
	r.unenrollHits = true
	return true, nil
}

func (r *stubRepo) GetTraining(_ context.Context, id int) (*Training, error) {
	if t, ok := r.trainings[id]; ok {
		return t, nil
	}
	return nil, ErrTrainingNotFound
}

func (r *stubRepo) CheckIn(_ context.Context, _, _ int) error {
	r.checkInCalls++
	return nil
}

func (r *stubRepo) CancelCheckIn(_ context.Context, _, _ int) (bool, error) {
	return r.cancelHits, nil
}

func (r *stubRepo) SuggestStudents(_ context.Context, _ int, _ string) ([]Suggestion, error) {
	return r.suggestions, nil
}

func (r *stubRepo) TrainingGrades(_ context.Context, _ int) ([]Grade, error) {
	return r.grades, nil
}

func (r *stubRepo) MarkHours(_ context.Context, _ int, marks []Mark) error {
	r.markCalls = append(r.markCalls, marks)
	return nil
}

func (r *stubRepo) GroupReport(_ context.Context, _ int) ([]Grade, error) {
	return r.grades, nil
}

func (r *stubRepo) SemesterHours(_ context.Context, _, _ int) (HoursInfo, error) {
	return r.hoursInfo, nil
}

func (r *stubRepo) NegativeHours(_ context.Context, _ int) (float64, error) {
	return r.debt, nil
}

func (r *stubRepo) BetterThan(_ context.Context, _, _ int) (float64, error) {
	return r.betterThan, nil
}

func (r *stubRepo) SportSchedule(_ context.Context, _ int) ([]ScheduleEntry, error) {
	return nil, nil
}

func (r *stubRepo) StudentTrainings(_ context.Context, _ int, _, _ time.Time) ([]Training, error) {
	return nil, nil
}

func (r *stubRepo) ListSports(_ context.Context) ([]Sport, error) { return r.sports, nil }

func (r *stubRepo) GetSport(_ context.Context, id int) (*Sport, error) {
	for i := range r.sports {
		if r.sports[i].ID == id {
			return &r.sports[i], nil
		}
	}
	return nil, ErrSportNotFound
}

func (r *stubRepo) Semesters(_ context.Context, _ bool) ([]Semester, error) {
	if r.semester == nil {
		return nil, nil
	}
	return []Semester{*r.semester}, nil
}

func (r *stubRepo) CurrentSemester(_ context.Context) (*Semester, error) {
	if r.semester == nil {
		return nil, ErrSemesterNotFound
	}
	return r.semester, nil
}

func (r *stubRepo) MedicalGroups(_ context.Context) ([]MedicalGroup, error) { return nil, nil }

func (r *stubRepo) SaveReference(_ context.Context, _ Reference) (int, error) { return 1, nil }

func (r *stubRepo) SelfSportTypes(_ context.Context) ([]SelfSportType, error) { return nil, nil }

func (r *stubRepo) SaveSelfSportReport(_ context.Context, _ SelfSportReport) (int, error) {
	return 1, nil
}

func (r *stubRepo) FitnessTestExercises(_ context.Context) ([]FitnessTestExercise, error) {
	return nil, nil
}

func (r *stubRepo) FitnessTestSessions(_ context.Context) ([]FitnessTestSession, error) {
	return nil, nil
}

func (r *stubRepo) FitnessTestSession(_ context.Context, _ int) (*FitnessTestSession, error) {
	return nil, ErrSessionNotFound
}

func (r *stubRepo) FitnessTestResults(_ context.Context, _ int) ([]FitnessTestResult, error) {
	return nil, nil
}

func (r *stubRepo) CreateFitnessTestSession(_ context.Context, _ FitnessTestSession) (int, error) {
	return 1, nil
}

func (r *stubRepo) SaveFitnessTestResults(_ context.Context, _ int, _ []FitnessTestResult) error {
	return nil
}

func (r *stubRepo) Measurements(_ context.Context) ([]Measurement, error) { return nil, nil }

func (r *stubRepo) MeasurementResults(_ context.Context, _ int) ([]MeasurementResult, error) {
	return nil, nil
}

func (r *stubRepo) SaveMeasurementResult(_ context.Context, _ MeasurementResult) error { return nil }

func (r *stubRepo) AttendanceAnalytics(_ context.Context, _ int) (AttendanceAnalytics, error) {
	return AttendanceAnalytics{}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func enrollFixture() (*stubRepo, *Service) {
	repo := newStubRepo()
	sportID := 1
	repo.students[10] = &Student{ID: 10, MedicalGroupID: 1, SportID: &sportID}
	repo.semester = &Semester{ID: 5, Current: true}
	repo.groups[100] = &Group{
		ID: 100, SportID: 1, SemesterID: 5, Capacity: 2, Accredited: true,
		AllowedMedicalGroups: []int{1}, TrainerIDs: []int{77},
	}
	return repo, NewService(repo)
}

func TestEnrollStudentSucceeds(t *testing.T) {
	repo, svc := enrollFixture()

	if err := svc.EnrollStudent(context.Background(), 10, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.enrollCalls != 1 {
		t.Fatalf("expected one enroll call, got %d", repo.enrollCalls)
	}
}

func TestEnrollStudentErrorPrecedence(t *testing.T) {
	t.Run("sport mismatch", func(t *testing.T) {
		repo, svc := enrollFixture()
		other := 2
		repo.students[10].SportID = &other
		if err := svc.EnrollStudent(context.Background(), 10, 100); !errors.Is(err, ErrSportMismatch) {
			t.Fatalf("expected sport mismatch, got %v", err)
		}
	})

	t.Run("double enroll", func(t *testing.T) {
		repo, svc := enrollFixture()
		repo.enrolled[[2]int{10, 100}] = true
		if err := svc.EnrollStudent(context.Background(), 10, 100); !errors.Is(err, ErrDoubleEnroll) {
			t.Fatalf("expected double enroll, got %v", err)
		}
	})

	t.Run("too many groups", func(t *testing.T) {
		repo, svc := enrollFixture()
		repo.enrollCount = 1
		if err := svc.EnrollStudent(context.Background(), 10, 100); !errors.Is(err, ErrTooManyGroups) {
			t.Fatalf("expected too many groups, got %v", err)
		}
	})

	t.Run("semester mismatch", func(t *testing.T) {
		repo, svc := enrollFixture()
		repo.groups[100].SemesterID = 4
		if err := svc.EnrollStudent(context.Background(), 10, 100); !errors.Is(err, ErrSemesterMismatch) {
			t.Fatalf("expected semester mismatch, got %v", err)
		}
	})

	t.Run("medical disallowance", func(t *testing.T) {
		repo, svc := enrollFixture()
		repo.groups[100].AllowedMedicalGroups = []int{2}
		if err := svc.EnrollStudent(context.Background(), 10, 100); !errors.Is(err, ErrMedicalDisallowance) {
			t.Fatalf("expected medical disallowance, got %v", err)
		}
	})

	t.Run("group full", func(t *testing.T) {
		repo, svc := enrollFixture()
		repo.groups[100].Enrolled = 2
		if err := svc.EnrollStudent(context.Background(), 10, 100); !errors.Is(err, ErrGroupFull) {
			t.Fatalf("expected group full, got %v", err)
		}
	})
}

func TestUnenrollStudentReportsInconsistency(t *testing.T) {
	_, svc := enrollFixture()

	err := svc.UnenrollStudent(context.Background(), 10, 100)
	if !errors.Is(err, ErrInconsistentUnenroll) {
		t.Fatalf("expected inconsistent unenroll, got %v", err)
	}
}

func TestUnenrollByTrainerChecksGroupTrainer(t *testing.T) {
	repo, svc := enrollFixture()
	repo.enrolled[[2]int{10, 100}] = true

	if err := svc.UnenrollByTrainer(context.Background(), 99, 10, 100); !errors.Is(err, ErrNotGroupTrainer) {
		t.Fatalf("expected not-group-trainer, got %v", err)
	}
	if err := svc.UnenrollByTrainer(context.Background(), 77, 10, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.UnenrollByTrainer(context.Background(), 77, 10, 100); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected not-enrolled, got %v", err)
	}
}

func checkInFixture(start, end time.Time) (*stubRepo, *Service) {
	repo, svc := enrollFixture()
	repo.trainings[200] = &Training{ID: 200, GroupID: 100, Start: start, End: end}
	repo.enrolled[[2]int{10, 100}] = true
	return repo, svc
}

func TestCheckInWindow(t *testing.T) {
	start := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	cases := []struct {
		name string
		now  time.Time
		want error
	}{
		{"too early", start.Add(-31 * time.Minute), ErrTrainingNotOpen},
		{"lead window", start.Add(-30 * time.Minute), nil},
		{"during", start.Add(time.Hour), nil},
		{"after end", end.Add(time.Minute), ErrTrainingNotOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, svc := checkInFixture(start, end)
			svc.WithClock(fixedClock(tc.now))
			err := svc.CheckIn(context.Background(), 10, 200)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCheckInRequiresEnrollmentAndQR(t *testing.T) {
	start := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	repo, svc := checkInFixture(start, start.Add(time.Hour))
	svc.WithClock(fixedClock(start))

	delete(repo.enrolled, [2]int{10, 100})
	if err := svc.CheckIn(context.Background(), 10, 200); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected not-enrolled, got %v", err)
	}

	repo.enrolled[[2]int{10, 100}] = true
	repo.groups[100].RequiresQR = true
	if err := svc.CheckIn(context.Background(), 10, 200); !errors.Is(err, ErrQRRequired) {
		t.Fatalf("expected QR required, got %v", err)
	}

	repo.students[10].HasQR = true
	if err := svc.CheckIn(context.Background(), 10, 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAcademicHours(t *testing.T) {
	base := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	cases := []struct {
		minutes int
		want    float64
	}{
		{20, 0},
		{30, 1},
		{45, 1},
		{90, 2},
		{100, 2},
		{600, 10},
		{900, 10},
	}
	for _, tc := range cases {
		tr := Training{Start: base, End: base.Add(time.Duration(tc.minutes) * time.Minute)}
		if got := academicHours(tr); got != tc.want {
			t.Fatalf("%d minutes: expected %v hours, got %v", tc.minutes, tc.want, got)
		}
	}
}

func TestMarkAttendanceValidation(t *testing.T) {
	start := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	repo, svc := checkInFixture(start, start.Add(90*time.Minute))
	svc.WithClock(fixedClock(start.Add(time.Hour)))

	if err := svc.MarkAttendance(context.Background(), 99, 200, nil); !errors.Is(err, ErrNotGroupTrainer) {
		t.Fatalf("expected not-group-trainer, got %v", err)
	}

	marks := []Mark{{StudentID: 10, Hours: 3}}
	if err := svc.MarkAttendance(context.Background(), 77, 200, marks); !errors.Is(err, ErrOutboundGrades) {
		t.Fatalf("expected outbound grades, got %v", err)
	}

	marks[0].Hours = 2
	if err := svc.MarkAttendance(context.Background(), 77, 200, marks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.markCalls) != 1 {
		t.Fatalf("expected one mark call, got %d", len(repo.markCalls))
	}

	svc.WithClock(fixedClock(start.Add(9 * 24 * time.Hour)))
	if err := svc.MarkAttendance(context.Background(), 77, 200, marks); !errors.Is(err, ErrTrainingNotEditable) {
		t.Fatalf("expected not-editable, got %v", err)
	}
}

func TestMarkAttendanceNonAccreditedGroup(t *testing.T) {
	start := time.Date(2025, time.March, 3, 18, 0, 0, 0, time.UTC)
	repo, svc := checkInFixture(start, start.Add(90*time.Minute))
	svc.WithClock(fixedClock(start.Add(time.Hour)))

	repo.groups[100].Accredited = false

	marks := []Mark{{StudentID: 10, Hours: 2}}
	if err := svc.MarkAttendance(context.Background(), 77, 200, marks); !errors.Is(err, ErrOutboundGrades) {
		t.Fatalf("expected outbound grades for non-accredited group, got %v", err)
	}

	marks[0].Hours = 0
	if err := svc.MarkAttendance(context.Background(), 77, 200, marks); err != nil {
		t.Fatalf("unexpected error for zero mark: %v", err)
	}
}
