package api

import (
	"context"

	"github.com/inno-sport-inh/backend/internal/dispatch"
)

// EnrollRequest is the payload for enroll and unenroll.
type EnrollRequest struct {
	GroupID int `json:"group_id"`
}

// Validate ensures request correctness.
func (r EnrollRequest) Validate() error {
	if r.GroupID <= 0 {
		return dispatch.Validation("group_id is required")
	}
	return nil
}

func (a *API) enroll(ctx context.Context, req *dispatch.Request) (any, error) {
	var body EnrollRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if err := a.service.EnrollStudent(ctx, req.Claims.UserID, body.GroupID); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}

func (a *API) unenroll(ctx context.Context, req *dispatch.Request) (any, error) {
	var body EnrollRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if err := a.service.UnenrollStudent(ctx, req.Claims.UserID, body.GroupID); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}

// UnenrollByTrainerRequest is the payload for enrollment/unenroll-by-trainer.
type UnenrollByTrainerRequest struct {
	GroupID   int `json:"group_id"`
	StudentID int `json:"student_id"`
}

// Validate ensures request correctness.
func (r UnenrollByTrainerRequest) Validate() error {
	if r.GroupID <= 0 {
		return dispatch.Validation("group_id is required")
	}
	if r.StudentID <= 0 {
		return dispatch.Validation("student_id is required")
	}
	return nil
}

func (a *API) unenrollByTrainer(ctx context.Context, req *dispatch.Request) (any, error) {
	var body UnenrollByTrainerRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if err := a.service.UnenrollByTrainer(ctx, req.Claims.UserID, body.StudentID, body.GroupID); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}
