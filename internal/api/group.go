package api

import (
	"context"

	"github.com/inno-sport-inh/backend/internal/dispatch"
)

// GroupView exposes one training group.
type GroupView struct {
	GroupID    int    `json:"group_id"`
	Name       string `json:"name"`
	SportID    int    `json:"sport_id"`
	SemesterID int    `json:"semester_id"`
	Capacity   int    `json:"capacity"`
	Enrolled   int    `json:"enrolled"`
	IsClub     bool   `json:"is_club"`
	Accredited bool   `json:"accredited"`
	RequiresQR bool   `json:"requires_QR"`
}

func (a *API) groupInfo(ctx context.Context, req *dispatch.Request) (any, error) {
	group, err := a.service.GroupInfo(ctx, req.Int("group_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return GroupView{
		GroupID:    group.ID,
		Name:       group.Name,
		SportID:    group.SportID,
		SemesterID: group.SemesterID,
		Capacity:   group.Capacity,
		Enrolled:   group.Enrolled,
		IsClub:     group.IsClub,
		Accredited: group.Accredited,
		RequiresQR: group.RequiresQR,
	}, nil
}

// SportView exposes one sport.
type SportView struct {
	SportID     int    `json:"sport_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (a *API) sports(ctx context.Context, req *dispatch.Request) (any, error) {
	sports, err := a.service.Sports(ctx)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]SportView, 0, len(sports))
	for _, s := range sports {
		out = append(out, SportView{SportID: s.ID, Name: s.Name, Description: s.Description})
	}
	return out, nil
}

// SelectSportRequest is the payload for group/select-sport.
type SelectSportRequest struct {
	SportID int `json:"sport_id"`
}

// Validate ensures request correctness.
func (r SelectSportRequest) Validate() error {
	if r.SportID <= 0 {
		return dispatch.Validation("sport_id is required")
	}
	return nil
}

func (a *API) selectSport(ctx context.Context, req *dispatch.Request) (any, error) {
	var body SelectSportRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if err := a.service.SelectSport(ctx, req.Claims.UserID, body.SportID); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}
