package httpadapter

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/core/ports"
)

// maxUploadBytes bounds the whole multipart submission (form + documents).
const maxUploadBytes = 32 << 20

type Router struct {
	assessUC ports.AssessmentService
	intakeUC ports.ApplicationIntake
	repo     ports.ApplicationRepository
	limits   TrafficLimits
}

func NewRouter(
	assessUC ports.AssessmentService,
	intakeUC ports.ApplicationIntake,
	repo ports.ApplicationRepository,
	limits TrafficLimits,
) *Router {
	return &Router{
		assessUC: assessUC,
		intakeUC: intakeUC,
		repo:     repo,
		limits:   limits,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/applications/assess", rt.assessApplication)
	mux.HandleFunc("/v1/applications", rt.submitApplication)
	mux.HandleFunc("/v1/applications/", rt.getApplicationByID)

	var handler http.Handler = mux
	handler = trafficControlMiddleware(handler, rt.limits)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// assessApplication is the synchronous path: the pipeline runs inside the
// request and the terminal outcome is the response body.
func (rt *Router) assessApplication(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	form, docs, cleanup, err := parseSubmission(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	outcome, err := rt.assessUC.Assess(r.Context(), form, docs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (rt *Router) submitApplication(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	form, docs, cleanup, err := parseSubmission(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	app, err := rt.intakeUC.Submit(r.Context(), form, docs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, app)
}

func (rt *Router) getApplicationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/applications/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "application id is required"})
		return
	}

	app, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// documentFields maps multipart file field names to evidence roles. The
// assets file is accepted and stored but not consumed by the pipeline.
var documentFields = []struct {
	field    string
	role     domain.DocumentRole
	required bool
}{
	{"identity", domain.RoleIdentity, true},
	{"resume", domain.RoleResume, true},
	{"bank_statement", domain.RoleBankStatement, true},
	{"assets", domain.RoleAssets, false},
}

func parseSubmission(r *http.Request) (domain.ApplicationFormData, []ports.DocumentUpload, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return domain.ApplicationFormData{}, nil, noop,
			domain.WrapError(domain.ErrInvalidInput, "parse submission", err)
	}

	form, err := parseFormData(r)
	if err != nil {
		return domain.ApplicationFormData{}, nil, noop, err
	}

	var (
		docs    []ports.DocumentUpload
		opened  []multipart.File
		cleanup = func() {
			for _, f := range opened {
				_ = f.Close()
			}
		}
	)
	for _, spec := range documentFields {
		file, header, err := r.FormFile(spec.field)
		if err != nil {
			if !spec.required {
				continue
			}
			cleanup()
			return domain.ApplicationFormData{}, nil, noop,
				domain.WrapError(domain.ErrInvalidInput, "parse submission",
					fmt.Errorf("multipart field %q is required", spec.field))
		}
		opened = append(opened, file)
		docs = append(docs, ports.DocumentUpload{
			Role:     spec.role,
			Filename: header.Filename,
			Body:     file,
		})
	}

	return form, docs, cleanup, nil
}

func parseFormData(r *http.Request) (domain.ApplicationFormData, error) {
	age, err := formInt(r, "age")
	if err != nil {
		return domain.ApplicationFormData{}, err
	}
	income, err := formInt(r, "monthly_income")
	if err != nil {
		return domain.ApplicationFormData{}, err
	}
	familySize, err := formInt(r, "family_size")
	if err != nil {
		return domain.ApplicationFormData{}, err
	}
	employmentYears, err := formInt(r, "employment_years")
	if err != nil {
		return domain.ApplicationFormData{}, err
	}

	return domain.ApplicationFormData{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Age:             age,
		MonthlyIncome:   income,
		FamilySize:      familySize,
		EmploymentYears: employmentYears,
		Address:         strings.TrimSpace(r.FormValue("address_form")),
	}, nil
}

func formInt(r *http.Request, field string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse submission",
			fmt.Errorf("form field %q must be an integer, got %q", field, raw))
	}
	return n, nil
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
