package ports

import (
	"context"
	"io"

	"github.com/adilmn/social-support-ai/internal/core/domain"
)

// DocumentUpload carries one submitted document into the intake boundary.
type DocumentUpload struct {
	Role     domain.DocumentRole
	Filename string
	Body     io.Reader
}

// AssessmentService is the inbound contract for synchronous assessment:
// store documents, run the full pipeline, return the terminal outcome.
type AssessmentService interface {
	Assess(ctx context.Context, form domain.ApplicationFormData, docs []DocumentUpload) (*domain.CaseOutcome, error)
}

// ApplicationIntake is the inbound contract for asynchronous submission.
type ApplicationIntake interface {
	Submit(ctx context.Context, form domain.ApplicationFormData, docs []DocumentUpload) (*domain.Application, error)
}

// ApplicationReader is the inbound read model for submission state.
type ApplicationReader interface {
	GetByID(ctx context.Context, id string) (*domain.Application, error)
}

// ApplicationProcessor is the inbound contract for worker-side processing.
type ApplicationProcessor interface {
	ProcessByID(ctx context.Context, applicationID string) error
}
