package api

import (
	"context"
	"time"

	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
)

// ExerciseView is one fitness test exercise.
type ExerciseView struct {
	ExerciseID int    `json:"exercise_id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	MaxScore   int    `json:"max_score"`
}

func (a *API) exercises(ctx context.Context, req *dispatch.Request) (any, error) {
	exercises, err := a.service.FitnessTestExercises(ctx)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]ExerciseView, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, ExerciseView{ExerciseID: e.ID, Name: e.Name, Unit: e.Unit, MaxScore: e.MaxScore})
	}
	return out, nil
}

// SessionView is one fitness test session.
type SessionView struct {
	SessionID int       `json:"session_id"`
	Semester  string    `json:"semester"`
	Date      time.Time `json:"date"`
	Retake    bool      `json:"retake"`
}

func toSessionView(s domain.FitnessTestSession) SessionView {
	return SessionView{SessionID: s.ID, Semester: s.Semester, Date: s.Date, Retake: s.Retake}
}

func (a *API) sessions(ctx context.Context, req *dispatch.Request) (any, error) {
	sessions, err := a.service.FitnessTestSessions(ctx)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionView(s))
	}
	return out, nil
}

func (a *API) session(ctx context.Context, req *dispatch.Request) (any, error) {
	session, err := a.service.FitnessTestSession(ctx, req.Int("session_id"))
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return toSessionView(*session), nil
}

// ResultView is one recorded score.
type ResultView struct {
	SessionID  int     `json:"session_id"`
	ExerciseID int     `json:"exercise_id"`
	Exercise   string  `json:"exercise"`
	Unit       string  `json:"unit"`
	Value      float64 `json:"value"`
	Score      int     `json:"score"`
}

func (a *API) fitnessTestResult(ctx context.Context, req *dispatch.Request) (any, error) {
	results, err := a.service.FitnessTestResults(ctx, req.Claims.UserID)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	out := make([]ResultView, 0, len(results))
	for _, r := range results {
		out = append(out, ResultView{
			SessionID:  r.SessionID,
			ExerciseID: r.ExerciseID,
			Exercise:   r.Exercise,
			Unit:       r.Unit,
			Value:      r.Value,
			Score:      r.Score,
		})
	}
	return out, nil
}

// FitnessTestUploadRequest is the payload for fitnesstest/upload.
type FitnessTestUploadRequest struct {
	Semester string `json:"semester"`
	Retake   bool   `json:"retake"`
	Results  []struct {
		StudentID  int     `json:"student_id"`
		ExerciseID int     `json:"exercise_id"`
		Value      float64 `json:"value"`
	} `json:"results"`
}

// Validate ensures request correctness.
func (r FitnessTestUploadRequest) Validate() error {
	if len(r.Results) == 0 {
		return dispatch.Validation("results must not be empty")
	}
	for _, result := range r.Results {
		if result.StudentID <= 0 || result.ExerciseID <= 0 {
			return dispatch.Validation("results entries require student_id and exercise_id")
		}
	}
	return nil
}

func (a *API) uploadFitnessTest(ctx context.Context, req *dispatch.Request) (any, error) {
	var body FitnessTestUploadRequest
	if err := req.Decode(&body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	// A session id in the path routes the upload into an existing session.
	sessionID := 0
	if _, ok := req.Params["session_id"]; ok {
		sessionID = req.Int("session_id")
	}

	results := make([]domain.FitnessTestResult, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, domain.FitnessTestResult{
			StudentID:  r.StudentID,
			ExerciseID: r.ExerciseID,
			Value:      r.Value,
		})
	}

	id, err := a.service.UploadFitnessTest(ctx, sessionID, body.Semester, body.Retake, results)
	if err != nil {
		return nil, mapDomainErr(err)
	}
	return map[string]int{"session_id": id}, nil
}

func (a *API) fitnessTestSuggestStudent(ctx context.Context, req *dispatch.Request) (any, error) {
	return a.suggestStudent(ctx, req)
}
