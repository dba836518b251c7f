package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/core/ports"
)

// IntakeUseCase is the asynchronous path: persist the submission, store its
// documents and hand the case to the worker through the queue.
type IntakeUseCase struct {
	repo    ports.ApplicationRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIntakeUseCase(
	repo ports.ApplicationRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IntakeUseCase {
	return &IntakeUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IntakeUseCase) Submit(
	ctx context.Context,
	form domain.ApplicationFormData,
	docs []ports.DocumentUpload,
) (*domain.Application, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	paths, err := storeDocuments(ctx, uc.storage, id, docs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:            id,
		Form:          form,
		DocumentPaths: paths,
		Status:        domain.StatusReceived,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	if err := uc.queue.PublishApplicationReceived(ctx, app.ID); err != nil {
		return nil, fmt.Errorf("publish application event: %w", err)
	}

	return app, nil
}
