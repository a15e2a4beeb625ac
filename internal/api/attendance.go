package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// SuggestionView is one student lookup hit.
type SuggestionView struct {
	StudentID int    `json:"student_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
}

func (a *API) suggestStudent(ctx context.Context, req *dispatch.Request) (any, error) {
	term := strings.TrimSpace(req.Query.Get("term"))
	if term == "" {
		return nil, dispatch.Validation("term parameter is required")
	}
	groupID, err := strconv.Atoi(req.Query.Get("group_id"))
	if err != nil || groupID <= 0 {
		return nil, dispatch.Validation("group_id parameter is required")
	}

	suggestions, err := a.service.SuggestStudents(ctx, req.Claims.UserID, groupID, term)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]SuggestionView, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, SuggestionView{StudentID: s.StudentID, Email: s.Email, FullName: s.FullName})
	}
	return out, nil
}

// GradeView is one student's marked hours.
type GradeView struct {
	StudentID int     `json:"student_id"`
	Email     string  `json:"email"`
	FullName  string  `json:"full_name"`
	Hours     float64 `json:"hours"`
}

func toGradeViews(grades []domain.Grade) []GradeView {
	out := make([]GradeView, 0, len(grades))
	for _, g := range grades {
		out = append(out, GradeView{StudentID: g.StudentID, Email: g.Email, FullName: g.FullName, Hours: g.Hours})
	}
	return out
}

func (a *API) trainingGrades(ctx context.Context, req *dispatch.Request) (any, error) {
	grades, err := a.service.TrainingGrades(ctx, req.Claims.UserID, req.Int("training_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toGradeViews(grades), nil
}

func (a *API) trainingGradesCSV(ctx context.Context, req *dispatch.Request) (any, error) {
	trainingID := req.Int("training_id")
	grades, err := a.service.TrainingGrades(ctx, req.Claims.UserID, trainingID)
	if err != nil {
		return nil, mapDomainErr(err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"student_id", "email", "full_name", "hours"})
	for _, g := range grades {
		_ = w.Write([]string{
			strconv.Itoa(g.StudentID),
			g.Email,
			g.FullName,
			strconv.FormatFloat(g.Hours, 'f', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return dispatch.Raw{
		ContentType: "text/csv",
		Filename:    fmt.Sprintf("training_%d_grades.csv", trainingID),
		Body:        buf.Bytes(),
	}, nil
}

// MarkAttendanceRequest is the payload for attendance/mark.
type MarkAttendanceRequest struct {
	TrainingID    int `json:"training_id"`
	StudentsHours []struct {
		StudentID int     `json:"student_id"`
		Hours     float64 `json:"hours"`
	} `json:"students_hours"`
}

// Validate ensures request correctness.
func (r MarkAttendanceRequest) Validate() error {
	if r.TrainingID <= 0 {
		return dispatch.Validation("training_id is required")
	}
	if len(r.StudentsHours) == 0 {
		return dispatch.Validation("students_hours must not be empty")
	}
	for _, sh := range r.StudentsHours {
		if sh.StudentID <= 0 {
			return dispatch.Validation("students_hours entries require student_id")
		}
	}
	return nil
}

func (a *API) markAttendance(ctx context.Context, req *dispatch.Request) (any, error) {
	var body MarkAttendanceRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	marks := make([]domain.Mark, 0, len(body.StudentsHours))
	for _, sh := range body.StudentsHours {
		marks = append(marks, domain.Mark{StudentID: sh.StudentID, Hours: sh.Hours})
	}
	if err := a.service.MarkAttendance(ctx, req.Claims.UserID, body.TrainingID, marks); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}

func (a *API) groupReport(ctx context.Context, req *dispatch.Request) (any, error) {
	grades, err := a.service.GroupReport(ctx, req.Claims.UserID, req.Int("group_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toGradeViews(grades), nil
}

// HoursInfoView summarises a student's semester standing.
type HoursInfoView struct {
	StudentID     int     `json:"student_id"`
	SemesterID    int     `json:"semester_id"`
	SemesterName  string  `json:"semester_name"`
	Earned        float64 `json:"earned"`
	Required      float64 `json:"required"`
	SelfSport     float64 `json:"self_sport"`
	DebtFromPrior float64 `json:"debt"`
}

func (a *API) studentHours(ctx context.Context, req *dispatch.Request) (any, error) {
	info, err := a.service.StudentHours(ctx, req.Int("student_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return HoursInfoView{
		StudentID:     info.StudentID,
		SemesterID:    info.SemesterID,
		SemesterName:  info.SemesterName,
		Earned:        info.Earned,
		Required:      info.Required,
		SelfSport:     info.SelfSport,
		DebtFromPrior: info.DebtFromPrior,
	}, nil
}

func (a *API) negativeHours(ctx context.Context, req *dispatch.Request) (any, error) {
	debt, err := a.service.NegativeHours(ctx, req.Int("student_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return map[string]float64{"negative_hours": debt}, nil
}

func (a *API) betterThan(ctx context.Context, req *dispatch.Request) (any, error) {
	info, err := a.service.BetterThan(ctx, req.Int("student_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return map[string]float64{"better_than": info.Percentile}, nil
}
