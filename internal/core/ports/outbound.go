package ports

import (
	"context"
	"io"

	"github.com/adilmn/social-support-ai/internal/core/domain"
)

// DocumentReader extracts plain text from a stored document. Both methods
// return sentinel text (never an error) for unreadable or unsupported input:
// downstream stages treat the output as opaque text regardless of success.
type DocumentReader interface {
	Read(ctx context.Context, path string) string
	ReadImage(ctx context.Context, path string) string
}

// EvidenceExtractor turns the three raw document texts into structured
// evidence via a schema-constrained language-model call. An error here is
// pipeline-fatal; a schema-violating reply is normalized to absent fields.
type EvidenceExtractor interface {
	ExtractEvidence(ctx context.Context, idText, bankText, resumeText string) (domain.ExtractedEvidence, error)
}

// EligibilityClassifier is the pre-trained model collaborator. Predict expects
// the feature vector in the exact trained order; a count or order mismatch is
// a hard failure of the call only. Ready verifies the model artifact and
// schema at startup.
type EligibilityClassifier interface {
	Predict(ctx context.Context, features []float64) (int, error)
	Decode(classIndex int) (string, error)
	Ready(ctx context.Context) error
}

// DecisionReasoner generates the free-text decision reply for a profile
// prompt. The reply is not guaranteed well-formed; the caller parses it.
type DecisionReasoner interface {
	GenerateDecision(ctx context.Context, prompt string) (string, error)
}

// ApplicationRepository persists submission state for the async path.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, errMessage string) error
	SaveOutcome(ctx context.Context, id string, outcome domain.CaseOutcome) error
}

// ObjectStorage stores uploaded documents for the lifetime of one case.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	PathFor(key string) string
	RemoveCase(ctx context.Context, caseID string) error
}

// MessageQueue publishes/consumes application-received events.
type MessageQueue interface {
	PublishApplicationReceived(ctx context.Context, applicationID string) error
	SubscribeApplicationReceived(ctx context.Context, handler func(context.Context, string) error) error
}
