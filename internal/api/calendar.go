package api

import (
	"context"
	"time"

	"github.com/inno-sport-inh/backend/internal/dispatch"
)

// ScheduleEntryView is one recurring weekly slot.
type ScheduleEntryView struct {
	GroupID   int    `json:"group_id"`
	GroupName string `json:"group_name"`
	Weekday   int    `json:"weekday"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Place     string `json:"place,omitempty"`
}

func (a *API) sportSchedule(ctx context.Context, req *dispatch.Request) (any, error) {
	entries, err := a.service.SportSchedule(ctx, req.Int("sport_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]ScheduleEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, ScheduleEntryView{
			GroupID:   e.GroupID,
			GroupName: e.GroupName,
			Weekday:   e.Weekday,
			Start:     e.Start,
			End:       e.End,
			Place:     e.Place,
		})
	}
	return out, nil
}

func (a *API) personalTrainings(ctx context.Context, req *dispatch.Request) (any, error) {
	var from, to time.Time
	if raw := req.Query.Get("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, dispatch.Validation("start must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := req.Query.Get("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, dispatch.Validation("end must be YYYY-MM-DD")
		}
		to = parsed
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, dispatch.Validation("end precedes start")
	}

	trainings, err := a.service.PersonalTrainings(ctx, req.Claims.UserID, from, to)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]TrainingView, 0, len(trainings))
	for _, t := range trainings {
		out = append(out, toTrainingView(t))
	}
	return out, nil
}
