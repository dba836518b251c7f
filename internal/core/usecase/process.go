package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/core/ports"
)

// ProcessUseCase is the worker side of the asynchronous path: load a
// persisted submission, run the pipeline over a fresh CaseRecord and write
// the outcome back with a terminal status.
type ProcessUseCase struct {
	repo     ports.ApplicationRepository
	storage  ports.ObjectStorage
	pipeline *AssessmentPipeline
}

func NewProcessUseCase(
	repo ports.ApplicationRepository,
	storage ports.ObjectStorage,
	pipeline *AssessmentPipeline,
) *ProcessUseCase {
	return &ProcessUseCase{
		repo:     repo,
		storage:  storage,
		pipeline: pipeline,
	}
}

func (uc *ProcessUseCase) ProcessByID(ctx context.Context, applicationID string) error {
	app, err := uc.repo.GetByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("fetch application: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, app.ID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	// Documents are released once the run terminates, on both paths.
	defer func() {
		if err := uc.storage.RemoveCase(ctx, app.ID); err != nil {
			slog.Warn("remove case documents", "application_id", app.ID, "error", err)
		}
	}()

	record := &domain.CaseRecord{
		ID:            app.ID,
		Form:          app.Form,
		DocumentPaths: app.DocumentPaths,
	}

	outcome, err := uc.pipeline.Run(ctx, record)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, app.ID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveOutcome(ctx, app.ID, *outcome); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, app.ID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save outcome: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, app.ID, domain.StatusAssessed, ""); err != nil {
		return fmt.Errorf("set status=assessed: %w", err)
	}
	return nil
}
