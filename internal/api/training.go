package api

import (
	"context"
	"time"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// TrainingView exposes one scheduled training.
type TrainingView struct {
	TrainingID int       `json:"training_id"`
	GroupID    int       `json:"group_id"`
	GroupName  string    `json:"group_name"`
	CustomName string    `json:"custom_name,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Place      string    `json:"place,omitempty"`
	CheckedIn  int       `json:"checked_in"`
	Capacity   int       `json:"capacity"`
}

func toTrainingView(t domain.Training) TrainingView {
	return TrainingView{
		TrainingID: t.ID,
		GroupID:    t.GroupID,
		GroupName:  t.GroupName,
		CustomName: t.CustomName,
		Start:      t.Start,
		End:        t.End,
		Place:      t.Place,
		CheckedIn:  t.CheckedIn,
		Capacity:   t.Capacity,
	}
}

func (a *API) trainingInfo(ctx context.Context, req *dispatch.Request) (any, error) {
	training, err := a.service.TrainingInfo(ctx, req.Int("training_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toTrainingView(*training), nil
}

func (a *API) checkIn(ctx context.Context, req *dispatch.Request) (any, error) {
	if err := a.service.CheckIn(ctx, req.Claims.UserID, req.Int("training_id")); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}

func (a *API) cancelCheckIn(ctx context.Context, req *dispatch.Request) (any, error) {
	if err := a.service.CancelCheckIn(ctx, req.Claims.UserID, req.Int("training_id")); err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}
