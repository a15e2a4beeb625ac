package api

import (
	"context"
	"errors"
	"strings"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// SelfSportTypeView is one accepted self-sport category.
type SelfSportTypeView struct {
	TypeID   int     `json:"type_id"`
	Name     string  `json:"name"`
	MaxHours float64 `json:"max_hours"`
}

func (a *API) selfSportTypes(ctx context.Context, req *dispatch.Request) (any, error) {
	types, err := a.service.SelfSportTypes(ctx)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]SelfSportTypeView, 0, len(types))
	for _, t := range types {
		out = append(out, SelfSportTypeView{TypeID: t.ID, Name: t.Name, MaxHours: t.MaxHours})
	}
	return out, nil
}

// SelfSportUploadRequest is the payload for selfsport/upload.
type SelfSportUploadRequest struct {
	TypeID int     `json:"training_type"`
	Link   string  `json:"link"`
	Hours  float64 `json:"hours"`
}

// Validate ensures request correctness.
func (r SelfSportUploadRequest) Validate() error {
	if r.TypeID <= 0 {
		return dispatch.Validation("training_type is required")
	}
	if strings.TrimSpace(r.Link) == "" {
		return dispatch.Validation("link is required")
	}
	if r.Hours <= 0 {
		return dispatch.Validation("hours must be > 0")
	}
	return nil
}

func (a *API) selfSportUpload(ctx context.Context, req *dispatch.Request) (any, error) {
	var body SelfSportUploadRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	id, err := a.service.UploadSelfSport(ctx, domain.SelfSportReport{
		StudentID: req.Claims.UserID,
		TypeID:    body.TypeID,
		Link:      body.Link,
		Hours:     body.Hours,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSelfSportType) {
			return nil, dispatch.Validation(err.Error())
		}
		return nil, mapDomainErr(err)
	}
	return map[string]int{"report_id": id}, nil
}

// StravaView is the parsed link response.
type StravaView struct {
	Link string `json:"link"`
	Type string `json:"type"`
}

func (a *API) stravaParsing(ctx context.Context, req *dispatch.Request) (any, error) {
	link := strings.TrimSpace(req.Query.Get("link"))
	if link == "" {
		return nil, dispatch.Validation("link parameter is required")
	}
	activity, err := a.service.ParseStrava(link)
	if err != nil {
		return nil, dispatch.Validation(err.Error())
	}
	return StravaView{Link: activity.Link, Type: activity.Type}, nil
}
