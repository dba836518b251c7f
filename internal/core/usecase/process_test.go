package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/adilmn/social-support-ai/internal/core/domain"
)

func storedApplication() *domain.Application {
	return &domain.Application{
		ID:     "app-1",
		Form:   validForm(),
		Status: domain.StatusReceived,
		DocumentPaths: map[domain.DocumentRole]string{
			domain.RoleIdentity:      "/tmp/uploads/app-1/identity_id.png",
			domain.RoleResume:        "/tmp/uploads/app-1/resume_resume.pdf",
			domain.RoleBankStatement: "/tmp/uploads/app-1/bank_statement_statement.xlsx",
		},
	}
}

func approvingReasoner() *reasonerFake {
	return &reasonerFake{reply: `{
		"final_decision": "Approve",
		"decision_reason": "Verified profile within support criteria.",
		"enablement_recommendations": ["Digital skills course"]
	}`}
}

func TestProcessByIDHappyPath(t *testing.T) {
	repo := &repoFake{stored: storedApplication()}
	storage := newStorageFake()
	pipeline := newTestPipeline(
		&extractorFake{evidence: matchingEvidence()},
		&classifierFake{classIndex: 0, labels: []string{domain.LabelApprove, domain.LabelDecline}},
		approvingReasoner(),
	)
	uc := NewProcessUseCase(repo, storage, pipeline)

	if err := uc.ProcessByID(context.Background(), "app-1"); err != nil {
		t.Fatalf("ProcessByID: %v", err)
	}

	want := []domain.ApplicationStatus{domain.StatusProcessing, domain.StatusAssessed}
	if !reflect.DeepEqual(repo.statuses, want) {
		t.Fatalf("status transitions = %v, want %v", repo.statuses, want)
	}
	if repo.savedOutcome == nil || repo.savedOutcome.Decision == nil {
		t.Fatalf("outcome not saved: %+v", repo.savedOutcome)
	}
	if repo.savedOutcome.Decision.FinalDecision != domain.DecisionApprove {
		t.Fatalf("saved decision = %q", repo.savedOutcome.Decision.FinalDecision)
	}
	if !reflect.DeepEqual(storage.removed, []string{"app-1"}) {
		t.Fatalf("case documents not released: %v", storage.removed)
	}
}

func TestProcessByIDMarksFailedOnFatalPipelineError(t *testing.T) {
	repo := &repoFake{stored: storedApplication()}
	storage := newStorageFake()
	pipeline := newTestPipeline(
		&extractorFake{err: errors.New("model unavailable")},
		&classifierFake{labels: []string{domain.LabelApprove}},
		&reasonerFake{},
	)
	uc := NewProcessUseCase(repo, storage, pipeline)

	err := uc.ProcessByID(context.Background(), "app-1")
	if err == nil {
		t.Fatal("expected the fatal pipeline error to propagate")
	}

	want := []domain.ApplicationStatus{domain.StatusProcessing, domain.StatusFailed}
	if !reflect.DeepEqual(repo.statuses, want) {
		t.Fatalf("status transitions = %v, want %v", repo.statuses, want)
	}
	if repo.errMessages[1] == "" {
		t.Fatal("failed status should carry the error message")
	}
	if repo.savedOutcome != nil {
		t.Fatal("no outcome on a fatal failure")
	}
	if !reflect.DeepEqual(storage.removed, []string{"app-1"}) {
		t.Fatalf("documents must be released on failure too: %v", storage.removed)
	}
}

func TestProcessByIDUnknownApplication(t *testing.T) {
	repo := &repoFake{getErr: domain.ErrApplicationNotFound}
	uc := NewProcessUseCase(repo, newStorageFake(), newTestPipeline(
		&extractorFake{}, &classifierFake{}, &reasonerFake{},
	))

	err := uc.ProcessByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if len(repo.statuses) != 0 {
		t.Fatalf("no status writes for an unknown application, got %v", repo.statuses)
	}
}

func TestProcessByIDDegradedOutcomeStillAssessed(t *testing.T) {
	// A scorer outage is an in-band Review Required outcome, not a failure.
	repo := &repoFake{stored: storedApplication()}
	pipeline := newTestPipeline(
		&extractorFake{evidence: matchingEvidence()},
		&classifierFake{predictErr: errors.New("scorer down"), labels: []string{domain.LabelApprove}},
		&reasonerFake{},
	)
	uc := NewProcessUseCase(repo, newStorageFake(), pipeline)

	if err := uc.ProcessByID(context.Background(), "app-1"); err != nil {
		t.Fatalf("ProcessByID: %v", err)
	}

	want := []domain.ApplicationStatus{domain.StatusProcessing, domain.StatusAssessed}
	if !reflect.DeepEqual(repo.statuses, want) {
		t.Fatalf("status transitions = %v, want %v", repo.statuses, want)
	}
	if repo.savedOutcome.Decision.FinalDecision != domain.DecisionReviewRequired {
		t.Fatalf("saved decision = %q", repo.savedOutcome.Decision.FinalDecision)
	}
}
