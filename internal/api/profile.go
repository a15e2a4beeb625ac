package api

import (
	"context"
	"strings"
	"time"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// StudentView exposes a student's profile.
type StudentView struct {
	StudentID      int    `json:"student_id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Gender         string `json:"gender"`
	MedicalGroupID int    `json:"medical_group_id"`
	SportID        *int   `json:"sport_id,omitempty"`
	HasQR          bool   `json:"has_QR"`
}

func toStudentView(s domain.Student) StudentView {
	return StudentView{
		StudentID:      s.ID,
		Email:          s.Email,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Gender:         s.Gender,
		MedicalGroupID: s.MedicalGroupID,
		SportID:        s.SportID,
		HasQR:          s.HasQR,
	}
}

func (a *API) studentInfo(ctx context.Context, req *dispatch.Request) (any, error) {
	student, err := a.service.StudentInfo(ctx, req.Claims.UserID)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toStudentView(*student), nil
}

// HasQRView mirrors the toggle response of the v1 API.
type HasQRView struct {
	HasQR bool `json:"has_QR"`
}

func (a *API) toggleQR(ctx context.Context, req *dispatch.Request) (any, error) {
	hasQR, err := a.service.ToggleQR(ctx, req.Claims.UserID)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return HasQRView{HasQR: hasQR}, nil
}

// ChangeGenderRequest is the payload for POST profile/change-gender.
type ChangeGenderRequest struct {
	StudentID int    `json:"student_id"`
	Gender    string `json:"gender"`
}

// Validate ensures request correctness.
func (r ChangeGenderRequest) Validate() error {
	if r.StudentID <= 0 {
		return dispatch.Validation("student_id is required")
	}
	switch strings.ToUpper(r.Gender) {
	case "M", "F":
		return nil
	}
	return dispatch.Validation("gender must be M or F")
}

func (a *API) changeGender(ctx context.Context, req *dispatch.Request) (any, error) {
	var body ChangeGenderRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if err := a.service.ChangeGender(ctx, body.StudentID, strings.ToUpper(body.Gender)); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}

// TrainingHourView is one history entry.
type TrainingHourView struct {
	TrainingID int     `json:"training_id"`
	GroupName  string  `json:"group_name"`
	CustomName string  `json:"custom_name,omitempty"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	SelfSport  bool    `json:"self_sport"`
}

func toHistoryViews(entries []domain.TrainingHours) []TrainingHourView {
	out := make([]TrainingHourView, 0, len(entries))
	for _, e := range entries {
		out = append(out, TrainingHourView{
			TrainingID: e.TrainingID,
			GroupName:  e.GroupName,
			CustomName: e.CustomName,
			Date:       e.Date.Format("2006-01-02"),
			Hours:      e.Hours,
			SelfSport:  e.SelfSport,
		})
	}
	return out
}

func (a *API) history(ctx context.Context, req *dispatch.Request) (any, error) {
	entries, err := a.service.TrainingHistory(ctx, req.Claims.UserID, req.Int("semester_id"), false)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toHistoryViews(entries), nil
}

func (a *API) historyByDate(ctx context.Context, req *dispatch.Request) (any, error) {
	start, err := time.Parse("2006-01-02", req.Query.Get("start"))
	if err != nil {
		return nil, dispatch.Validation("start must be a YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", req.Query.Get("end"))
	if err != nil {
		return nil, dispatch.Validation("end must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return nil, dispatch.Validation("end precedes start")
	}
	entries, err := a.service.TrainingHistoryByDate(ctx, req.Claims.UserID, start, end)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toHistoryViews(entries), nil
}

func (a *API) historyWithSelf(ctx context.Context, req *dispatch.Request) (any, error) {
	entries, err := a.service.TrainingHistory(ctx, req.Claims.UserID, req.Int("semester_id"), true)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toHistoryViews(entries), nil
}
