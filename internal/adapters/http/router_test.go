package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/core/ports"
)

type assessServiceFake struct {
	outcome  *domain.CaseOutcome
	err      error
	gotForm  domain.ApplicationFormData
	gotDocs  []ports.DocumentUpload
	docBytes map[domain.DocumentRole][]byte
}

func (f *assessServiceFake) Assess(_ context.Context, form domain.ApplicationFormData, docs []ports.DocumentUpload) (*domain.CaseOutcome, error) {
	f.gotForm = form
	f.gotDocs = docs
	f.docBytes = map[domain.DocumentRole][]byte{}
	for _, doc := range docs {
		raw, _ := io.ReadAll(doc.Body)
		f.docBytes[doc.Role] = raw
	}
	return f.outcome, f.err
}

type intakeFake struct {
	app *domain.Application
	err error
}

func (f *intakeFake) Submit(_ context.Context, _ domain.ApplicationFormData, _ []ports.DocumentUpload) (*domain.Application, error) {
	return f.app, f.err
}

type readRepoFake struct {
	app *domain.Application
	err error
}

func (f *readRepoFake) Create(context.Context, *domain.Application) error { return nil }
func (f *readRepoFake) GetByID(context.Context, string) (*domain.Application, error) {
	return f.app, f.err
}
func (f *readRepoFake) UpdateStatus(context.Context, string, domain.ApplicationStatus, string) error {
	return nil
}
func (f *readRepoFake) SaveOutcome(context.Context, string, domain.CaseOutcome) error { return nil }

func newTestRouter(assess *assessServiceFake, intake *intakeFake, repo *readRepoFake) http.Handler {
	if assess == nil {
		assess = &assessServiceFake{}
	}
	if intake == nil {
		intake = &intakeFake{}
	}
	if repo == nil {
		repo = &readRepoFake{}
	}
	return NewRouter(assess, intake, repo, TrafficLimits{}).Handler()
}

func multipartSubmission(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range fields {
		if err := w.WriteField(field, value); err != nil {
			t.Fatal(err)
		}
	}
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".bin")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"name":             "Jameela Al Falahi",
		"age":              "35",
		"monthly_income":   "4500",
		"family_size":      "4",
		"employment_years": "8",
		"address_form":     "Al Ain",
	}
}

func requiredFiles() map[string]string {
	return map[string]string{
		"identity":       "png bytes",
		"resume":         "pdf bytes",
		"bank_statement": "xlsx bytes",
	}
}

func TestAssessEndpointRoundTrip(t *testing.T) {
	assess := &assessServiceFake{outcome: &domain.CaseOutcome{
		Decision: &domain.EligibilityAssessment{
			MLLabel:        domain.LabelApprove,
			FinalDecision:  domain.DecisionApprove,
			DecisionReason: "ok",
		},
	}}
	handler := newTestRouter(assess, nil, nil)

	body, contentType := multipartSubmission(t, validFields(), requiredFiles())
	req := httptest.NewRequest(http.MethodPost, "/v1/applications/assess", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Request-Id"); got == "" {
		t.Fatal("response must carry a request id")
	}

	var resp domain.CaseOutcome
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Decision == nil || resp.Decision.FinalDecision != domain.DecisionApprove {
		t.Fatalf("response = %+v", resp)
	}

	if assess.gotForm.Name != "Jameela Al Falahi" || assess.gotForm.MonthlyIncome != 4500 {
		t.Fatalf("form = %+v", assess.gotForm)
	}
	if len(assess.gotDocs) != 3 {
		t.Fatalf("docs = %d", len(assess.gotDocs))
	}
	if string(assess.docBytes[domain.RoleBankStatement]) != "xlsx bytes" {
		t.Fatalf("bank statement bytes = %q", assess.docBytes[domain.RoleBankStatement])
	}
}

func TestAssessEndpointMissingRequiredFile(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	files := requiredFiles()
	delete(files, "bank_statement")
	body, contentType := multipartSubmission(t, validFields(), files)
	req := httptest.NewRequest(http.MethodPost, "/v1/applications/assess", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "bank_statement") {
		t.Fatalf("error should name the missing field: %s", rec.Body.String())
	}
}

func TestAssessEndpointNonIntegerField(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	fields := validFields()
	fields["age"] = "thirty five"
	body, contentType := multipartSubmission(t, fields, requiredFiles())
	req := httptest.NewRequest(http.MethodPost, "/v1/applications/assess", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAssessEndpointMapsTemporaryFailures(t *testing.T) {
	assess := &assessServiceFake{err: domain.WrapError(domain.ErrTemporary, "generate", errors.New("down"))}
	handler := newTestRouter(assess, nil, nil)

	body, contentType := multipartSubmission(t, validFields(), requiredFiles())
	req := httptest.NewRequest(http.MethodPost, "/v1/applications/assess", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSubmitEndpointAccepts(t *testing.T) {
	intake := &intakeFake{app: &domain.Application{ID: "app-1", Status: domain.StatusReceived}}
	handler := newTestRouter(nil, intake, nil)

	body, contentType := multipartSubmission(t, validFields(), requiredFiles())
	req := httptest.NewRequest(http.MethodPost, "/v1/applications", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp domain.Application
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "app-1" || resp.Status != domain.StatusReceived {
		t.Fatalf("response = %+v", resp)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	repo := &readRepoFake{err: domain.WrapError(domain.ErrApplicationNotFound, "get application", errors.New("id missing"))}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetApplicationById(t *testing.T) {
	repo := &readRepoFake{app: &domain.Application{ID: "app-1", Status: domain.StatusAssessed}}
	handler := newTestRouter(nil, nil, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/app-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/applications/assess", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.WrapError(domain.ErrInvalidInput, "op", errors.New("x")), http.StatusBadRequest},
		{domain.WrapError(domain.ErrApplicationNotFound, "op", errors.New("x")), http.StatusNotFound},
		{domain.WrapError(domain.ErrTemporary, "op", errors.New("x")), http.StatusServiceUnavailable},
		{domain.WrapError(domain.ErrUnavailable, "op", errors.New("x")), http.StatusServiceUnavailable},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Fatalf("mapErrorToHTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
