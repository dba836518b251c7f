package bootstrap

import (
	"context"
	"fmt"

	"github.com/adilmn/social-support-ai/internal/config"
	"github.com/adilmn/social-support-ai/internal/core/ports"
	"github.com/adilmn/social-support-ai/internal/core/usecase"
	"github.com/adilmn/social-support-ai/internal/infrastructure/docreader"
	"github.com/adilmn/social-support-ai/internal/infrastructure/llm/ollama"
	"github.com/adilmn/social-support-ai/internal/infrastructure/mlmodel"
	"github.com/adilmn/social-support-ai/internal/infrastructure/queue/nats"
	"github.com/adilmn/social-support-ai/internal/infrastructure/repository/postgres"
	"github.com/adilmn/social-support-ai/internal/infrastructure/resilience"
	"github.com/adilmn/social-support-ai/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue ports.MessageQueue
	Repo  ports.ApplicationRepository

	AssessUC  ports.AssessmentService
	IntakeUC  ports.ApplicationIntake
	ProcessUC ports.ApplicationProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewApplicationRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init document storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	manifest, err := mlmodel.LoadManifest(cfg.ModelManifestPath)
	if err != nil {
		return nil, fmt.Errorf("load model manifest: %w", err)
	}
	classifier := mlmodel.NewClassifier(cfg.ScorerURL, manifest, executor)
	// Model-artifact compatibility is startup state: a schema drift should
	// fail the process here, not individual assessments later.
	if err := classifier.Ready(ctx); err != nil {
		return nil, fmt.Errorf("scorer readiness: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, executor)
	extractor := ollama.NewExtractor(ollamaClient)
	reasoner := ollama.NewReasoner(ollamaClient)
	reader := docreader.New(cfg.OCRBinary)

	pipeline := usecase.NewAssessmentPipeline(reader, extractor, classifier, reasoner)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		AssessUC:  usecase.NewAssessUseCase(storage, pipeline),
		IntakeUC:  usecase.NewIntakeUseCase(repo, storage, queue),
		ProcessUC: usecase.NewProcessUseCase(repo, storage, pipeline),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
