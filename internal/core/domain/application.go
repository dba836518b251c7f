package domain

import (
	"errors"
	"fmt"
	"time"
)

// DocumentRole identifies which evidence slot an uploaded file fills.
type DocumentRole string

const (
	RoleIdentity      DocumentRole = "identity"
	RoleResume        DocumentRole = "resume"
	RoleBankStatement DocumentRole = "bank_statement"
	RoleAssets        DocumentRole = "assets"
)

// ApplicationFormData holds the applicant-declared attributes, immutable once
// submitted. The pipeline only ever reads it.
type ApplicationFormData struct {
	Name            string `json:"name"`
	Age             int    `json:"age"`
	MonthlyIncome   int    `json:"monthly_income"`
	FamilySize      int    `json:"family_size"`
	EmploymentYears int    `json:"employment_years"`
	Address         string `json:"address_form"`
}

func (f ApplicationFormData) Validate() error {
	switch {
	case f.Name == "":
		return WrapError(ErrInvalidInput, "validate form", errors.New("name is required"))
	case f.Age < 18 || f.Age > 100:
		return WrapError(ErrInvalidInput, "validate form", fmt.Errorf("age out of range: %d", f.Age))
	case f.MonthlyIncome < 0:
		return WrapError(ErrInvalidInput, "validate form", fmt.Errorf("monthly income must be non-negative: %d", f.MonthlyIncome))
	case f.FamilySize < 1:
		return WrapError(ErrInvalidInput, "validate form", fmt.Errorf("family size must be positive: %d", f.FamilySize))
	case f.EmploymentYears < 0:
		return WrapError(ErrInvalidInput, "validate form", fmt.Errorf("employment years must be non-negative: %d", f.EmploymentYears))
	case f.Address == "":
		return WrapError(ErrInvalidInput, "validate form", errors.New("address is required"))
	}
	return nil
}

// ExtractedEvidence is what the structured extraction stage recovered from the
// uploaded documents. Every field is independently optional: a nil pointer
// means the source was unreadable or ambiguous, which is distinct from a value
// that conflicts with the form.
type ExtractedEvidence struct {
	NameFromID          *string `json:"name_from_id"`
	IncomeFromStatement *int    `json:"income_from_statement"`
	ExperienceSummary   *string `json:"experience_from_resume"`
}

// ValidationVerdict is the cross-source validation result. NameMatches and
// IncomeConsistent are nil when the corresponding evidence was absent; Passed
// requires both checks to be definitively true.
type ValidationVerdict struct {
	NameMatches      *bool    `json:"name_matches"`
	IncomeConsistent *bool    `json:"income_consistent"`
	Passed           bool     `json:"validation_passed"`
	Notes            []string `json:"validation_notes"`
}

// Decision is the terminal outcome of the pipeline.
type Decision string

const (
	DecisionApprove        Decision = "Approve"
	DecisionSoftDecline    Decision = "Soft Decline"
	DecisionReviewRequired Decision = "Review Required"
	DecisionError          Decision = "Error"
)

// Eligibility labels as produced by the classifier collaborator.
// LabelPredictionError is the in-band sentinel for a failed prediction call.
const (
	LabelApprove         = "Approve"
	LabelDecline         = "Decline"
	LabelPredictionError = "Prediction Error"
)

// EligibilityAssessment is built incrementally: the scoring stage sets MLLabel,
// the synthesis stage fills the rest. Never mutated afterwards.
type EligibilityAssessment struct {
	MLLabel         string   `json:"ml_eligibility_prediction"`
	FinalDecision   Decision `json:"final_decision"`
	DecisionReason  string   `json:"decision_reason"`
	Recommendations []string `json:"enablement_recommendations,omitempty"`
}

// CaseRecord is the aggregate threaded through a single pipeline run. Each
// stage owns exactly one of the optional fields and sets it once; later
// stages read but never overwrite. The record lives for one run only.
type CaseRecord struct {
	ID            string
	Form          ApplicationFormData
	DocumentPaths map[DocumentRole]string

	Evidence   *ExtractedEvidence
	Verdict    *ValidationVerdict
	Assessment *EligibilityAssessment
}

// CaseOutcome mirrors the populated CaseRecord fields in the shape the
// response boundary exposes.
type CaseOutcome struct {
	ExtractedData    *ExtractedEvidence     `json:"extracted_data"`
	ValidationResult *ValidationVerdict     `json:"validation_result"`
	Decision         *EligibilityAssessment `json:"decision"`
}

func (c *CaseRecord) Outcome() CaseOutcome {
	return CaseOutcome{
		ExtractedData:    c.Evidence,
		ValidationResult: c.Verdict,
		Decision:         c.Assessment,
	}
}

type ApplicationStatus string

const (
	StatusReceived   ApplicationStatus = "received"
	StatusProcessing ApplicationStatus = "processing"
	StatusAssessed   ApplicationStatus = "assessed"
	StatusFailed     ApplicationStatus = "failed"
)

// Application is the persisted submission used by the asynchronous intake
// path. The per-run CaseRecord is rebuilt from it and discarded; only the
// outcome is written back.
type Application struct {
	ID            string                  `json:"id"`
	Form          ApplicationFormData     `json:"form"`
	DocumentPaths map[DocumentRole]string `json:"document_paths"`
	Status        ApplicationStatus       `json:"status"`
	Error         string                  `json:"error,omitempty"`
	Outcome       *CaseOutcome            `json:"outcome,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}
