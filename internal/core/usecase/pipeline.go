package usecase

import (
	"context"
	"fmt"

	"github.com/adilmn/social-support-ai/internal/core/domain"
	"github.com/adilmn/social-support-ai/internal/core/ports"
)

// AssessmentPipeline runs the fixed stage sequence
// extraction -> validation -> scoring -> synthesis over one CaseRecord.
// There is no branching at this level; all conditional logic lives in the
// synthesis stage. Each stage sets exactly the record field it owns.
type AssessmentPipeline struct {
	reader     ports.DocumentReader
	extractor  ports.EvidenceExtractor
	classifier ports.EligibilityClassifier
	reasoner   ports.DecisionReasoner
}

func NewAssessmentPipeline(
	reader ports.DocumentReader,
	extractor ports.EvidenceExtractor,
	classifier ports.EligibilityClassifier,
	reasoner ports.DecisionReasoner,
) *AssessmentPipeline {
	return &AssessmentPipeline{
		reader:     reader,
		extractor:  extractor,
		classifier: classifier,
		reasoner:   reasoner,
	}
}

// Run executes the pipeline to its terminal stage. The only fatal path is a
// total extraction failure; scorer and reasoner failures degrade in-band.
// Anything escaping a stage is caught here so the caller never sees a panic
// or a partially mutated record.
func (p *AssessmentPipeline) Run(ctx context.Context, record *domain.CaseRecord) (outcome *domain.CaseOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = fmt.Errorf("assessment pipeline: unexpected failure: %v", r)
		}
	}()

	evidence, err := p.extractEvidence(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("extraction stage: %w", err)
	}
	record.Evidence = &evidence

	verdict := ValidateCase(record.Form, evidence)
	record.Verdict = &verdict

	record.Assessment = &domain.EligibilityAssessment{
		MLLabel: p.scoreEligibility(ctx, record.Form),
	}

	assessment := p.synthesizeDecision(ctx, record)
	record.Assessment = &assessment

	result := record.Outcome()
	return &result, nil
}

// extractEvidence reads the three documents and runs the schema-constrained
// extraction call. The identity document goes through the OCR sub-path.
// Unreadable documents surface as sentinel text inside the prompt, which the
// extractor resolves to absent fields rather than an error.
func (p *AssessmentPipeline) extractEvidence(ctx context.Context, record *domain.CaseRecord) (domain.ExtractedEvidence, error) {
	idText := p.reader.ReadImage(ctx, record.DocumentPaths[domain.RoleIdentity])
	bankText := p.reader.Read(ctx, record.DocumentPaths[domain.RoleBankStatement])
	resumeText := p.reader.Read(ctx, record.DocumentPaths[domain.RoleResume])

	evidence, err := p.extractor.ExtractEvidence(ctx, idText, bankText, resumeText)
	if err != nil {
		return domain.ExtractedEvidence{}, fmt.Errorf("extract evidence: %w", err)
	}
	return evidence, nil
}
