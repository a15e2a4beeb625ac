// Package api exposes the v2 HTTP handlers of the sport service.
package api

import (
	"errors"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// API binds the HTTP surface to the domain service.
type API struct {
	service *domain.Service
}

// New builds the API.
func New(service *domain.Service) *API {
	return &API{service: service}
}

// mapDomainErr translates domain failures into the dispatcher's declared
// failure kinds. Unknown errors pass through and become opaque server
// errors.
func mapDomainErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrStudentNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrTrainingNotFound),
		errors.Is(err, domain.ErrSemesterNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSportNotFound):
		return dispatch.NotFound(err.Error())
	case errors.Is(err, domain.ErrGroupFull):
		return dispatch.Conflict(domain.ErrGroupFull.Code, domain.ErrGroupFull.Detail)
	case errors.Is(err, domain.ErrDoubleEnroll):
		return dispatch.Conflict(domain.ErrDoubleEnroll.Code, domain.ErrDoubleEnroll.Detail)
	case errors.Is(err, domain.ErrTooManyGroups):
		return dispatch.Conflict(domain.ErrTooManyGroups.Code, domain.ErrTooManyGroups.Detail)
	case errors.Is(err, domain.ErrMedicalDisallowance):
		return dispatch.Forbidden(domain.ErrMedicalDisallowance.Code, domain.ErrMedicalDisallowance.Detail)
	case errors.Is(err, domain.ErrQRRequired):
		return dispatch.Forbidden(domain.ErrQRRequired.Code, domain.ErrQRRequired.Detail)
	case errors.Is(err, domain.ErrNotGroupTrainer):
		return dispatch.Forbidden(0, domain.ErrNotGroupTrainer.Error())
	case errors.Is(err, domain.ErrSportMismatch):
		return dispatch.Unprocessable(domain.ErrSportMismatch.Code, domain.ErrSportMismatch.Detail)
	case errors.Is(err, domain.ErrSemesterMismatch):
		return dispatch.Unprocessable(domain.ErrSemesterMismatch.Code, domain.ErrSemesterMismatch.Detail)
	case errors.Is(err, domain.ErrInconsistentUnenroll):
		return dispatch.Unprocessable(domain.ErrInconsistentUnenroll.Code, domain.ErrInconsistentUnenroll.Detail)
	case errors.Is(err, domain.ErrNotEnrolled):
		return dispatch.Unprocessable(domain.ErrNotEnrolled.Code, domain.ErrNotEnrolled.Detail)
	case errors.Is(err, domain.ErrTrainingNotEditable):
		return dispatch.Unprocessable(domain.ErrTrainingNotEditable.Code, domain.ErrTrainingNotEditable.Detail)
	case errors.Is(err, domain.ErrOutboundGrades):
		return dispatch.Unprocessable(domain.ErrOutboundGrades.Code, domain.ErrOutboundGrades.Detail)
	case errors.Is(err, domain.ErrTrainingNotOpen):
		return dispatch.Unprocessable(0, domain.ErrTrainingNotOpen.Error())
	default:
		return err
	}
}
