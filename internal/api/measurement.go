package api

import (
	"context"
	"time"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// MeasurementView is one tracked metric.
type MeasurementView struct {
	MeasurementID int    `json:"measurement_id"`
	Name          string `json:"name"`
	Unit          string `json:"unit"`
}

func (a *API) measurements(ctx context.Context, req *dispatch.Request) (any, error) {
	measurements, err := a.service.Measurements(ctx)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]MeasurementView, 0, len(measurements))
	for _, m := range measurements {
		out = append(out, MeasurementView{MeasurementID: m.ID, Name: m.Name, Unit: m.Unit})
	}
	return out, nil
}

// MeasurementResultView is one recorded sample.
type MeasurementResultView struct {
	MeasurementID int       `json:"measurement_id"`
	Measurement   string    `json:"measurement"`
	Unit          string    `json:"unit"`
	Value         float64   `json:"value"`
	ApprovedAt    time.Time `json:"approved_at"`
}

func (a *API) measurementResults(ctx context.Context, req *dispatch.Request) (any, error) {
	results, err := a.service.MeasurementResults(ctx, req.Claims.UserID)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]MeasurementResultView, 0, len(results))
	for _, r := range results {
		out = append(out, MeasurementResultView{
			MeasurementID: r.MeasurementID,
			Measurement:   r.Measurement,
			Unit:          r.Unit,
			Value:         r.Value,
			ApprovedAt:    r.ApprovedAt,
		})
	}
	return out, nil
}

// StudentMeasurementRequest is the payload for measurement/student-measurement.
type StudentMeasurementRequest struct {
	MeasurementID int     `json:"measurement_id"`
	Value         float64 `json:"value"`
}

// Validate ensures request correctness.
func (r StudentMeasurementRequest) Validate() error {
	if r.MeasurementID <= 0 {
		return dispatch.Validation("measurement_id is required")
	}
	if r.Value <= 0 {
		return dispatch.Validation("value must be > 0")
	}
	return nil
}

func (a *API) studentMeasurement(ctx context.Context, req *dispatch.Request) (any, error) {
	var body StudentMeasurementRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	err := a.service.RecordMeasurement(ctx, domain.MeasurementResult{
		MeasurementID: body.MeasurementID,
		StudentID:     req.Claims.UserID,
		Value:         body.Value,
	})
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return nil, nil
}
