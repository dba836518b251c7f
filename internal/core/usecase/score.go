package usecase

import (
	"context"
	"fmt"

	"github.com/adilmn/social-support-ai/internal/core/domain"
)

// FeatureOrder is the classifier's trained feature schema. The vector passed
// to Predict must follow this exact order and count.
var FeatureOrder = []string{"age", "monthly_income", "family_size", "employment_years", "income_per_person"}

// ComputeFeatures derives the engineered feature vector from the form data.
// FamilySize is validated positive at form capture, so the division guard is
// a contract check, not an expected path.
func ComputeFeatures(form domain.ApplicationFormData) ([]float64, error) {
	if form.FamilySize < 1 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "compute features",
			fmt.Errorf("family size must be positive: %d", form.FamilySize))
	}
	incomePerPerson := float64(form.MonthlyIncome) / float64(form.FamilySize)
	return []float64{
		float64(form.Age),
		float64(form.MonthlyIncome),
		float64(form.FamilySize),
		float64(form.EmploymentYears),
		incomePerPerson,
	}, nil
}

// scoreEligibility calls the classifier collaborator and decodes the class
// index into a label. Any failure of the external call degrades to the
// in-band sentinel label instead of aborting the pipeline.
func (p *AssessmentPipeline) scoreEligibility(ctx context.Context, form domain.ApplicationFormData) string {
	features, err := ComputeFeatures(form)
	if err != nil {
		return domain.LabelPredictionError
	}
	classIndex, err := p.classifier.Predict(ctx, features)
	if err != nil {
		return domain.LabelPredictionError
	}
	label, err := p.classifier.Decode(classIndex)
	if err != nil {
		return domain.LabelPredictionError
	}
	return label
}
