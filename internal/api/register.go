package api

import (
	"fmt"
	"net/http"

	"github.com/inno-sport-inh/backend/internal/auth"
	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/legacy"
	"github.com/inno-sport-inh/backend/internal/routing"
)

type routeSpec struct {
	method  string
	pattern string
	scope   string
	handler dispatch.Handler
}

// routeSpecs enumerates the canonical v2 surface. Resource and action
// names key both the dispatch table and usage telemetry, so they stay
// stable even if URL spellings change again.
func (a *API) routeSpecs() map[string]map[string]routeSpec {
	const (
		student = auth.ScopeStudent
		trainer = auth.ScopeTrainer
		staff   = auth.ScopeStaff
		public  = ""
	)

	return map[string]map[string]routeSpec{
		"profile": {
			"student":           {http.MethodGet, "/api/v2/profile/student/", student, a.studentInfo},
			"toggle-qr":         {http.MethodPost, "/api/v2/profile/toggle-qr/", student, a.toggleQR},
			"change-gender":     {http.MethodPost, "/api/v2/profile/change-gender/", staff, a.changeGender},
			"history":           {http.MethodGet, "/api/v2/profile/history/{semester_id:int}/", student, a.history},
			"history-by-date":   {http.MethodGet, "/api/v2/profile/history/by-date/", student, a.historyByDate},
			"history-with-self": {http.MethodGet, "/api/v2/profile/history-with-self/{semester_id:int}/", student, a.historyWithSelf},
		},
		"enrollment": {
			"enroll":              {http.MethodPost, "/api/v2/enrollment/enroll/", student, a.enroll},
			"unenroll":            {http.MethodPost, "/api/v2/enrollment/unenroll/", student, a.unenroll},
			"unenroll-by-trainer": {http.MethodPost, "/api/v2/enrollment/unenroll-by-trainer/", trainer, a.unenrollByTrainer},
		},
		"group": {
			"retrieve":     {http.MethodGet, "/api/v2/group/{group_id:int}/", public, a.groupInfo},
			"sports":       {http.MethodGet, "/api/v2/group/sports/", public, a.sports},
			"select-sport": {http.MethodPost, "/api/v2/group/select-sport/", student, a.selectSport},
		},
		"training": {
			"retrieve":        {http.MethodGet, "/api/v2/training/{training_id:int}/", student, a.trainingInfo},
			"check-in":        {http.MethodPost, "/api/v2/training/{training_id:int}/check-in/", student, a.checkIn},
			"cancel-check-in": {http.MethodPost, "/api/v2/training/{training_id:int}/cancel-check-in/", student, a.cancelCheckIn},
		},
		"attendance": {
			"suggest-student": {http.MethodGet, "/api/v2/attendance/suggest-student/", trainer, a.suggestStudent},
			"grades":          {http.MethodGet, "/api/v2/attendance/training/{training_id:int}/grades/", trainer, a.trainingGrades},
			"grades-csv":      {http.MethodGet, "/api/v2/attendance/training/{training_id:int}/grades.csv", trainer, a.trainingGradesCSV},
			"report":          {http.MethodGet, "/api/v2/attendance/group/{group_id:int}/report/", trainer, a.groupReport},
			"mark":            {http.MethodPost, "/api/v2/attendance/mark/", trainer, a.markAttendance},
			"hours":           {http.MethodGet, "/api/v2/attendance/student/{student_id:int}/hours/", trainer, a.studentHours},
			"negative-hours":  {http.MethodGet, "/api/v2/attendance/student/{student_id:int}/negative-hours/", trainer, a.negativeHours},
			"better-than":     {http.MethodGet, "/api/v2/attendance/student/{student_id:int}/better-than/", trainer, a.betterThan},
		},
		"calendar": {
			"schedule":  {http.MethodGet, "/api/v2/calendar/sport/{sport_id:int}/schedule/", public, a.sportSchedule},
			"trainings": {http.MethodGet, "/api/v2/calendar/trainings/", student, a.personalTrainings},
		},
		"reference": {
			"upload": {http.MethodPost, "/api/v2/reference/upload/", student, a.referenceUpload},
		},
		"selfsport": {
			"upload":         {http.MethodPost, "/api/v2/selfsport/upload/", student, a.selfSportUpload},
			"types":          {http.MethodGet, "/api/v2/selfsport/types/", public, a.selfSportTypes},
			"strava-parsing": {http.MethodGet, "/api/v2/selfsport/strava-parsing/", student, a.stravaParsing},
		},
		"fitnesstest": {
			"result":          {http.MethodGet, "/api/v2/fitnesstest/result/", student, a.fitnessTestResult},
			"upload":          {http.MethodPost, "/api/v2/fitnesstest/upload/", trainer, a.uploadFitnessTest},
			"upload-session":  {http.MethodPost, "/api/v2/fitnesstest/upload/{session_id:int}/", trainer, a.uploadFitnessTest},
			"exercises":       {http.MethodGet, "/api/v2/fitnesstest/exercises/", public, a.exercises},
			"sessions":        {http.MethodGet, "/api/v2/fitnesstest/sessions/", trainer, a.sessions},
			"session":         {http.MethodGet, "/api/v2/fitnesstest/sessions/{session_id:int}/", trainer, a.session},
			"suggest-student": {http.MethodGet, "/api/v2/fitnesstest/suggest-student/", trainer, a.fitnessTestSuggestStudent},
		},
		"measurement": {
			"student-measurement": {http.MethodPost, "/api/v2/measurement/student-measurement/", student, a.studentMeasurement},
			"results":             {http.MethodGet, "/api/v2/measurement/results/", student, a.measurementResults},
			"measurements":        {http.MethodGet, "/api/v2/measurement/measurements/", public, a.measurements},
		},
		"semester": {
			"list": {http.MethodGet, "/api/v2/semester/", public, a.semesters},
		},
		"analytics": {
			"attendance": {http.MethodGet, "/api/v2/analytics/attendance/", staff, a.attendanceAnalytics},
		},
		"medical-groups": {
			"list": {http.MethodGet, "/api/v2/medical_groups/", public, a.medicalGroups},
		},
	}
}

// Routes builds the canonical route set.
func (a *API) Routes() ([]routing.Route, error) {
	var routes []routing.Route
	for resource, actions := range a.routeSpecs() {
		for action, spec := range actions {
			pattern, err := routing.CompilePattern(spec.pattern)
			if err != nil {
				return nil, err
			}
			routes = append(routes, routing.Route{
				Method:   spec.method,
				Pattern:  pattern,
				Resource: resource,
				Action:   action,
			})
		}
	}
	return routes, nil
}

// Actions builds the dispatch bindings matching Routes.
func (a *API) Actions() []dispatch.Action {
	var actions []dispatch.Action
	for resource, specs := range a.routeSpecs() {
		for action, spec := range specs {
			actions = append(actions, dispatch.Action{
				Resource: resource,
				Action:   action,
				Scope:    spec.scope,
				Handler:  spec.handler,
			})
		}
	}
	return actions
}

type legacySpec struct {
	method   string
	pattern  string
	resource string
	action   string
}

// legacySpecs is the static v1 deprecation table, kept in step with the
// URL migration table published to API consumers.
var legacySpecs = []legacySpec{
	{http.MethodGet, "/api/profile/student", "profile", "student"},
	{http.MethodPost, "/api/profile/change_gender", "profile", "change-gender"},
	{http.MethodPost, "/api/profile/QR/toggle", "profile", "toggle-qr"},
	{http.MethodGet, "/api/profile/history/{semester_id:int}", "profile", "history"},
	{http.MethodGet, "/api/profile/history/by_date", "profile", "history-by-date"},
	{http.MethodGet, "/api/profile/history_with_self/{semester_id:int}", "profile", "history-with-self"},
	{http.MethodPost, "/api/enrollment/enroll", "enrollment", "enroll"},
	{http.MethodPost, "/api/enrollment/unenroll", "enrollment", "unenroll"},
	{http.MethodPost, "/api/enrollment/unenroll_by_trainer", "enrollment", "unenroll-by-trainer"},
	{http.MethodGet, "/api/group/{group_id:int}", "group", "retrieve"},
	{http.MethodPost, "/api/select_sport", "group", "select-sport"},
	{http.MethodGet, "/api/sports", "group", "sports"},
	{http.MethodGet, "/api/training/{training_id:int}", "training", "retrieve"},
	{http.MethodPost, "/api/training/{training_id:int}/check_in", "training", "check-in"},
	{http.MethodPost, "/api/training/{training_id:int}/cancel_check_in", "training", "cancel-check-in"},
	{http.MethodGet, "/api/attendance/suggest_student", "attendance", "suggest-student"},
	{http.MethodGet, "/api/attendance/{training_id:int}/grades", "attendance", "grades"},
	{http.MethodGet, "/api/attendance/{training_id:int}/grades.csv", "attendance", "grades-csv"},
	{http.MethodGet, "/api/attendance/{group_id:int}/report", "attendance", "report"},
	{http.MethodPost, "/api/attendance/mark", "attendance", "mark"},
	{http.MethodGet, "/api/attendance/{student_id:int}/hours", "attendance", "hours"},
	{http.MethodGet, "/api/attendance/{student_id:int}/negative_hours", "attendance", "negative-hours"},
	{http.MethodGet, "/api/attendance/{student_id:int}/better_than", "attendance", "better-than"},
	{http.MethodGet, "/api/calendar/{sport_id:int}/schedule", "calendar", "schedule"},
	{http.MethodGet, "/api/calendar/trainings", "calendar", "trainings"},
	{http.MethodPost, "/api/reference/upload", "reference", "upload"},
	{http.MethodPost, "/api/selfsport/upload", "selfsport", "upload"},
	{http.MethodGet, "/api/selfsport/types", "selfsport", "types"},
	{http.MethodGet, "/api/selfsport/strava_parsing", "selfsport", "strava-parsing"},
	{http.MethodGet, "/api/fitnesstest/result", "fitnesstest", "result"},
	{http.MethodPost, "/api/fitnesstest/upload", "fitnesstest", "upload"},
	{http.MethodPost, "/api/fitnesstest/upload/{session_id:int}", "fitnesstest", "upload-session"},
	{http.MethodGet, "/api/fitnesstest/exercises", "fitnesstest", "exercises"},
	{http.MethodGet, "/api/fitnesstest/sessions", "fitnesstest", "sessions"},
	{http.MethodGet, "/api/fitnesstest/sessions/{session_id:int}", "fitnesstest", "session"},
	{http.MethodGet, "/api/fitnesstest/suggest_student", "fitnesstest", "suggest-student"},
	{http.MethodPost, "/api/measurement/student_measurement", "measurement", "student-measurement"},
	{http.MethodGet, "/api/measurement/get_results", "measurement", "results"},
	{http.MethodGet, "/api/measurement/get_measurements", "measurement", "measurements"},
	{http.MethodGet, "/api/semester", "semester", "list"},
	{http.MethodGet, "/api/analytics/attendance", "analytics", "attendance"},
	{http.MethodGet, "/api/medical_groups/", "medical-groups", "list"},
}

// LegacyEntries builds the deprecation table for the legacy shim.
func LegacyEntries() ([]legacy.Entry, error) {
	entries := make([]legacy.Entry, 0, len(legacySpecs))
	for _, spec := range legacySpecs {
		pattern, err := routing.CompilePattern(spec.pattern)
		if err != nil {
			return nil, err
		}
		entries = append(entries, legacy.Entry{
			Method:   spec.method,
			Pattern:  pattern,
			Resource: spec.resource,
			Action:   spec.action,
			Note:     fmt.Sprintf("migrate to the v2 %s.%s endpoint", spec.resource, spec.action),
		})
	}
	return entries, nil
}
