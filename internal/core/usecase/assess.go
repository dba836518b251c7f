package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/core/ports"
)

// AssessUseCase is the synchronous path: documents are stored for the
// lifetime of the request, the pipeline runs inline and the terminal outcome
// is returned to the caller. Nothing is persisted.
type AssessUseCase struct {
	storage  ports.ObjectStorage
	pipeline *AssessmentPipeline
}

func NewAssessUseCase(storage ports.ObjectStorage, pipeline *AssessmentPipeline) *AssessUseCase {
	return &AssessUseCase{
		storage:  storage,
		pipeline: pipeline,
	}
}

func (uc *AssessUseCase) Assess(
	ctx context.Context,
	form domain.ApplicationFormData,
	docs []ports.DocumentUpload,
) (*domain.CaseOutcome, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	caseID := uuid.NewString()
	paths, err := storeDocuments(ctx, uc.storage, caseID, docs)
	if err != nil {
		return nil, err
	}
	// Scratch documents are scoped to this request, success or failure.
	defer func() {
		if err := uc.storage.RemoveCase(ctx, caseID); err != nil {
			slog.Warn("remove case documents", "case_id", caseID, "error", err)
		}
	}()

	record := &domain.CaseRecord{
		ID:            caseID,
		Form:          form,
		DocumentPaths: paths,
	}

	outcome, err := uc.pipeline.Run(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("run assessment pipeline: %w", err)
	}
	return outcome, nil
}
