// Package domain defines the business logic behind the sport API.
package domain

import "time"

// Student is the enrolled user of the sport system.
type Student struct {
	ID             int
	Email          string
	FirstName      string
	LastName       string
	Gender         string
	MedicalGroupID int
	SportID        *int
	HasQR          bool
}

// FullName joins the student's name parts.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Sport is a selectable sport discipline.
type Sport struct {
	ID          int
	Name        string
	Description string
}

// Semester bounds one enrollment period.
type Semester struct {
	ID      int
	Name    string
	Start   time.Time
	End     time.Time
	Current bool
	// Required hours to pass the semester.
	Hours float64
}

// MedicalGroup restricts which training groups a student may join.
type MedicalGroup struct {
	ID          int
	Name        string
	Description string
}

// Group is one training group within a sport and semester.
type Group struct {
	ID                   int
	Name                 string
	SportID              int
	SemesterID           int
	Capacity             int
	Enrolled             int
	IsClub               bool
	Accredited           bool
	RequiresQR           bool
	AllowedMedicalGroups []int
	TrainerIDs           []int
}

// AllowsMedicalGroup reports whether the medical group may enroll.
func (g Group) AllowsMedicalGroup(id int) bool {
	for _, allowed := range g.AllowedMedicalGroups {
		if allowed == id {
			return true
		}
	}
	return false
}

// HasTrainer reports whether the trainer teaches this group.
func (g Group) HasTrainer(id int) bool {
	for _, trainer := range g.TrainerIDs {
		if trainer == id {
			return true
		}
	}
	return false
}

// Training is a single scheduled session of a group.
type Training struct {
	ID         int
	GroupID    int
	GroupName  string
	Start      time.Time
	End        time.Time
	Place      string
	CheckedIn  int
	Capacity   int
	CustomName string
}

// TrainingHours is one entry of a student's per-semester history.
type TrainingHours struct {
	TrainingID int
	GroupName  string
	CustomName string
	Date       time.Time
	Hours      float64
	SelfSport  bool
}

// Grade is one student's mark for one training.
type Grade struct {
	StudentID int
	Email     string
	FullName  string
	Hours     float64
}

// Suggestion is a student lookup hit for attendance marking.
type Suggestion struct {
	StudentID int
	Email     string
	FullName  string
}

// HoursInfo summarises a student's attendance standing.
type HoursInfo struct {
	StudentID     int
	SemesterID    int
	SemesterName  string
	Earned        float64
	Required      float64
	SelfSport     float64
	DebtFromPrior float64
}

// BetterThanInfo reports the share of students with fewer earned hours.
type BetterThanInfo struct {
	StudentID  int
	Percentile float64
}

// ScheduleEntry is one recurring slot in a sport's weekly schedule.
type ScheduleEntry struct {
	GroupID   int
	GroupName string
	Weekday   int
	Start     string
	End       string
	Place     string
}

// SelfSportType is an accepted category of self-reported activity.
type SelfSportType struct {
	ID       int
	Name     string
	MaxHours float64
}

// SelfSportReport is a student-submitted activity claim.
type SelfSportReport struct {
	ID         int
	StudentID  int
	TypeID     int
	Link       string
	Hours      float64
	Status     string
	UploadedAt time.Time
}

// FitnessTestExercise is one measured exercise in the fitness test.
type FitnessTestExercise struct {
	ID       int
	Name     string
	Unit     string
	MaxScore int
}

// FitnessTestSession groups the results taken on one date.
type FitnessTestSession struct {
	ID       int
	Semester string
	Date     time.Time
	Retake   bool
}

// FitnessTestResult is a student's score for one exercise in a session.
type FitnessTestResult struct {
	SessionID  int
	ExerciseID int
	Exercise   string
	Unit       string
	StudentID  int
	Value      float64
	Score      int
}

// Measurement is a tracked body metric (height, weight, ...).
type Measurement struct {
	ID   int
	Name string
	Unit string
}

// MeasurementResult is one recorded measurement sample.
type MeasurementResult struct {
	MeasurementID int
	Measurement   string
	Unit          string
	StudentID     int
	Value         float64
	ApprovedAt    time.Time
}

// Reference is an uploaded medical reference document.
type Reference struct {
	ID         int
	StudentID  int
	Link       string
	Hours      float64
	Start      time.Time
	End        time.Time
	UploadedAt time.Time
}

// AttendanceAnalytics aggregates attendance over a semester.
type AttendanceAnalytics struct {
	SemesterID      int
	Students        int
	TrainingsHeld   int
	CheckIns        int
	AverageHours    float64
	MedianHours     float64
	AttendanceShare float64
}

// StravaActivity is a parsed external activity description.
type StravaActivity struct {
	Link     string
	Type     string
	Distance float64
	Duration time.Duration
}
