package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// ReferenceUploadRequest is the payload for reference/upload.
type ReferenceUploadRequest struct {
	Link  string  `json:"link"`
	Hours float64 `json:"hours"`
	Start string  `json:"start"`
	End   string  `json:"end"`
}

// Validate ensures request correctness.
func (r ReferenceUploadRequest) Validate() error {
	if strings.TrimSpace(r.Link) == "" {
		return dispatch.Validation("link is required")
	}
	if r.Hours < 0 {
		return dispatch.Validation("hours must be >= 0")
	}
	if r.Start == "" || r.End == "" {
		return dispatch.Validation("start and end are required")
	}
	return nil
}

func (a *API) referenceUpload(ctx context.Context, req *dispatch.Request) (any, error) {
	var body ReferenceUploadRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	start, err := time.Parse("2006-01-02", body.Start)
	if err != nil {
		return nil, dispatch.Validation("start must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", body.End)
	if err != nil {
		return nil, dispatch.Validation("end must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, dispatch.Validation("end precedes start")
	}

	id, err := a.service.UploadReference(ctx, domain.Reference{
		StudentID: req.Claims.UserID,
		Link:      body.Link,
		Hours:     body.Hours,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return map[string]int{"reference_id": id}, nil
}

// SemesterView is one enrollment period.
type SemesterView struct {
	SemesterID int     `json:"semester_id"`
	Name       string  `json:"name"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Current    bool    `json:"current"`
	Hours      float64 `json:"hours"`
}

func (a *API) semesters(ctx context.Context, req *dispatch.Request) (any, error) {
	currentOnly := req.Query.Get("current") == "true"
	semesters, err := a.service.Semesters(ctx, currentOnly)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	if len(semesters) == 0 {
		return nil, dispatch.NotFound("no semesters found")
	}
	out := make([]SemesterView, 0, len(semesters))
	for _, s := range semesters {
		out = append(out, SemesterView{
			SemesterID: s.ID,
			Name:       s.Name,
			Start:      s.Start.Format("2006-01-02"),
			End:        s.End.Format("2006-01-02"),
			Current:    s.Current,
			Hours:      s.Hours,
		})
	}
	return out, nil
}

// AnalyticsView aggregates semester attendance.
type AnalyticsView struct {
	SemesterID      int     `json:"semester_id"`
	Students        int     `json:"students"`
	TrainingsHeld   int     `json:"trainings_held"`
	CheckIns        int     `json:"check_ins"`
	AverageHours    float64 `json:"average_hours"`
	MedianHours     float64 `json:"median_hours"`
	AttendanceShare float64 `json:"attendance_share"`
}

func (a *API) attendanceAnalytics(ctx context.Context, req *dispatch.Request) (any, error) {
	semesterID := 0
	if raw := req.Query.Get("semester_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, dispatch.Validation("semester_id must be a positive integer")
		}
		semesterID = parsed
	}
	report, err := a.service.AttendanceReport(ctx, semesterID)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return AnalyticsView{
		SemesterID:      report.SemesterID,
		Students:        report.Students,
		TrainingsHeld:   report.TrainingsHeld,
		CheckIns:        report.CheckIns,
		AverageHours:    report.AverageHours,
		MedianHours:     report.MedianHours,
		AttendanceShare: report.AttendanceShare,
	}, nil
}

// MedicalGroupView is one configured medical group.
type MedicalGroupView struct {
	MedicalGroupID int    `json:"medical_group_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
}

func (a *API) medicalGroups(ctx context.Context, req *dispatch.Request) (any, error) {
	groups, err := a.service.MedicalGroups(ctx)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]MedicalGroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, MedicalGroupView{MedicalGroupID: g.ID, Name: g.Name, Description: g.Description})
	}
	return out, nil
}
