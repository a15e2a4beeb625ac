package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inno-sport-inh/backend/internal/auth"
	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/domain"
	"github.com/inno-sport-inh/backend/internal/legacy"
	"github.com/inno-sport-inh/backend/internal/routing"
)

// mockRepo overrides only what a test needs; calling anything else panics,
// which is the point: a handler reaching into unexpected persistence is a
// test failure.
type mockRepo struct {
	domain.Repository

	student  *domain.Student
	group    *domain.Group
	semester *domain.Semester
	training *domain.Training
	sports   []domain.Sport

	enrolled    bool
	enrollCount int
	enrollErr   error
}

func (r *mockRepo) GetStudent(_ context.Context, id int) (*domain.Student, error) {
	if r.student == nil || r.student.ID != id {
		return nil, domain.ErrStudentNotFound
	}
	return r.student, nil
}

func (r *mockRepo) GetGroup(_ context.Context, id int) (*domain.Group, error) {
	if r.group == nil || r.group.ID != id {
		return nil, domain.ErrGroupNotFound
	}
	return r.group, nil
}

func (r *mockRepo) GetTraining(_ context.Context, id int) (*domain.Training, error) {
	if r.training == nil || r.training.ID != id {
		return nil, domain.ErrTrainingNotFound
	}
	return r.training, nil
}

func (r *mockRepo) CurrentSemester(_ context.Context) (*domain.Semester, error) {
	if r.semester == nil {
		return nil, domain.ErrSemesterNotFound
	}
	return r.semester, nil
}

func (r *mockRepo) Semesters(_ context.Context, _ bool) ([]domain.Semester, error) {
	if r.semester == nil {
		return nil, nil
	}
	return []domain.Semester{*r.semester}, nil
}

func (r *mockRepo) ListSports(_ context.Context) ([]domain.Sport, error) {
	return r.sports, nil
}

func (r *mockRepo) IsEnrolled(_ context.Context, _, _ int) (bool, error) {
	return r.enrolled, nil
}

func (r *mockRepo) CountEnrollments(_ context.Context, _, _ int) (int, error) {
	return r.enrollCount, nil
}

func (r *mockRepo) Enroll(_ context.Context, _, _ int) error {
	return r.enrollErr
}

// pipeline assembles the full startup wiring for one repo.
type pipeline struct {
	table      *routing.Table
	dispatcher *dispatch.Dispatcher
	mappings   *legacy.Mappings
}

func newPipeline(t *testing.T, repo domain.Repository) *pipeline {
	t.Helper()
	handlers := New(domain.NewService(repo))

	routes, err := handlers.Routes()
	if err != nil {
		t.Fatalf("routes: %v", err)
	}
	table, err := routing.NewTable(routes)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	dispatcher, err := dispatch.NewDispatcher(table, handlers.Actions())
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	entries, err := LegacyEntries()
	if err != nil {
		t.Fatalf("legacy entries: %v", err)
	}
	mappings, err := legacy.NewMappings(table, entries, legacy.DefaultConfig)
	if err != nil {
		t.Fatalf("legacy mappings: %v", err)
	}
	return &pipeline{table: table, dispatcher: dispatcher, mappings: mappings}
}

// do resolves the request like the gateway does and serves it.
func (p *pipeline) do(t *testing.T, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	if match, ok := p.table.Match(r.Method, r.URL.Path); ok {
		p.dispatcher.Serve(rr, r, match)
		return rr
	}
	if resolved, ok := p.mappings.Resolve(r.Method, r.URL.Path); ok {
		resolved.Apply(rr.Header())
		p.dispatcher.Serve(rr, r, resolved.Match)
		return rr
	}
	dispatch.WriteNotFound(rr)
	return rr
}

func withClaims(r *http.Request, scopes ...string) *http.Request {
	claims := &auth.Claims{
		Subject:   "s.tester@example.com",
		UserID:    10,
		Scopes:    make(map[string]struct{}, len(scopes)),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	for _, scope := range scopes {
		claims.Scopes[scope] = struct{}{}
	}
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}

func TestStartupWiringIsConsistent(t *testing.T) {
	p := newPipeline(t, &mockRepo{})
	if p.table.Len() == 0 {
		t.Fatal("route table is empty")
	}
	if p.mappings.Len() == 0 {
		t.Fatal("legacy table is empty")
	}
}

func TestStudentInfo(t *testing.T) {
	sportID := 3
	repo := &mockRepo{
		student: &domain.Student{
			ID: 10, Email: "s.tester@example.com", FirstName: "Sam",
			LastName: "Tester", Gender: "M", MedicalGroupID: 1,
			SportID: &sportID, HasQR: true,
		},
	}
	p := newPipeline(t, repo)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/v2/profile/student/", nil), auth.ScopeStudent)
	rr := p.do(t, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var view StudentView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.StudentID != 10 || !view.HasQR || view.SportID == nil || *view.SportID != 3 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestEnrollConflictCarriesBusinessCode(t *testing.T) {
	sportID := 1
	repo := &mockRepo{
		student:   &domain.Student{ID: 10, MedicalGroupID: 1, SportID: &sportID},
		semester:  &domain.Semester{ID: 5, Current: true},
		group:     &domain.Group{ID: 100, SportID: 1, SemesterID: 5, AllowedMedicalGroups: []int{1}},
		enrollErr: domain.ErrGroupFull,
	}
	p := newPipeline(t, repo)

	req := withClaims(httptest.NewRequest(http.MethodPost,
		"/api/v2/enrollment/enroll/", strings.NewReader(`{"group_id":100}`)), auth.ScopeStudent)
	rr := p.do(t, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Type string `json:"type"`
		Code int    `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != domain.CodeGroupFull {
		t.Fatalf("expected code %d, got %d", domain.CodeGroupFull, body.Code)
	}
}

func TestEnrollSportMismatchUnprocessable(t *testing.T) {
	otherSport := 2
	repo := &mockRepo{
		student:  &domain.Student{ID: 10, MedicalGroupID: 1, SportID: &otherSport},
		semester: &domain.Semester{ID: 5, Current: true},
		group:    &domain.Group{ID: 100, SportID: 1, SemesterID: 5, AllowedMedicalGroups: []int{1}},
	}
	p := newPipeline(t, repo)

	req := withClaims(httptest.NewRequest(http.MethodPost,
		"/api/v2/enrollment/enroll/", strings.NewReader(`{"group_id":100}`)), auth.ScopeStudent)
	rr := p.do(t, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestLegacyAndCanonicalAreEquivalent(t *testing.T) {
	repo := &mockRepo{sports: []domain.Sport{{ID: 1, Name: "Chess"}}}
	p := newPipeline(t, repo)

	canonical := p.do(t, httptest.NewRequest(http.MethodGet, "/api/v2/group/sports/", nil))
	legacyResp := p.do(t, httptest.NewRequest(http.MethodGet, "/api/sports", nil))

	if canonical.Code != http.StatusOK || legacyResp.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", canonical.Code, legacyResp.Code)
	}
	if canonical.Body.String() != legacyResp.Body.String() {
		t.Fatalf("legacy body diverged:\ncanonical %s\nlegacy %s",
			canonical.Body.String(), legacyResp.Body.String())
	}

	if canonical.Header().Get("Deprecation") != "" {
		t.Fatal("canonical response must carry no deprecation headers")
	}
	if legacyResp.Header().Get("Deprecation") != "true" {
		t.Fatal("legacy response must carry deprecation headers")
	}
	if got := legacyResp.Header().Get("X-API-New-Endpoint"); got != "/api/v2/group/sports/" {
		t.Fatalf("unexpected successor %q", got)
	}
}

func TestLegacyPathWithParamsExpandsSuccessor(t *testing.T) {
	repo := &mockRepo{
		training: &domain.Training{
			ID: 42, GroupID: 100, GroupName: "Chess",
			Start: time.Now(), End: time.Now().Add(time.Hour),
		},
		group: &domain.Group{ID: 100},
	}
	p := newPipeline(t, repo)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/training/42", nil), auth.ScopeStudent)
	rr := p.do(t, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-API-New-Endpoint"); got != "/api/v2/training/42/" {
		t.Fatalf("unexpected successor %q", got)
	}
	if link := rr.Header().Get("Link"); !strings.Contains(link, `rel="successor-version"`) {
		t.Fatalf("unexpected link header %q", link)
	}
}

func TestUnknownPathIs404(t *testing.T) {
	p := newPipeline(t, &mockRepo{})

	rr := p.do(t, httptest.NewRequest(http.MethodGet, "/api/v3/profile/student/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Type != "not_found" {
		t.Fatalf("unexpected error type %q", body.Type)
	}
}

func TestStaffOnlyRoutesRejectStudents(t *testing.T) {
	p := newPipeline(t, &mockRepo{})

	req := withClaims(httptest.NewRequest(http.MethodPost,
		"/api/v2/profile/change-gender/", strings.NewReader(`{"student_id":10,"gender":"F"}`)), auth.ScopeStudent)
	rr := p.do(t, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestSemesterCurrentFilter(t *testing.T) {
	repo := &mockRepo{semester: &domain.Semester{
		ID: 5, Name: "S25", Current: true,
		Start: time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC),
	}}
	p := newPipeline(t, repo)

	rr := p.do(t, httptest.NewRequest(http.MethodGet, "/api/v2/semester/?current=true", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	empty := newPipeline(t, &mockRepo{})
	rr = empty.do(t, httptest.NewRequest(http.MethodGet, "/api/v2/semester/?current=true", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no current semester, got %d", rr.Code)
	}
}
