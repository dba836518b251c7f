package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adilmn/social-support-ai/internal/core/domain"
)

const (
	reviewRequiredReason   = "Data inconsistencies found. Manual review is necessary."
	scorerFailureReason    = "Eligibility model unavailable. Manual review is necessary."
	contactApplicantAction = "Applicant should be contacted to clarify information."
	parseFailureReason     = "Failed to parse the decision reply."
	generationFailReason   = "Decision generation unavailable."
)

// synthesizeDecision produces the terminal assessment. A failed validation
// short-circuits to Review Required without invoking the reasoning model:
// never auto-approve or auto-decline on unverified data. A failed prediction
// also routes to review rather than feeding the sentinel into the prompt.
// This stage never errors; both of its failure paths are in-band values.
func (p *AssessmentPipeline) synthesizeDecision(ctx context.Context, record *domain.CaseRecord) domain.EligibilityAssessment {
	assessment := *record.Assessment

	if !record.Verdict.Passed {
		assessment.FinalDecision = domain.DecisionReviewRequired
		assessment.DecisionReason = reviewRequiredReason
		assessment.Recommendations = []string{contactApplicantAction}
		return assessment
	}

	if assessment.MLLabel == domain.LabelPredictionError {
		assessment.FinalDecision = domain.DecisionReviewRequired
		assessment.DecisionReason = scorerFailureReason
		assessment.Recommendations = []string{contactApplicantAction}
		return assessment
	}

	raw, err := p.reasoner.GenerateDecision(ctx, buildDecisionPrompt(record))
	if err != nil {
		assessment.FinalDecision = domain.DecisionError
		assessment.DecisionReason = generationFailReason
		return assessment
	}

	parsed, err := parseDecisionReply(raw)
	if err != nil {
		assessment.FinalDecision = domain.DecisionError
		assessment.DecisionReason = parseFailureReason
		return assessment
	}

	assessment.FinalDecision = parsed.FinalDecision
	assessment.DecisionReason = parsed.DecisionReason
	assessment.Recommendations = parsed.Recommendations
	return assessment
}

func buildDecisionPrompt(record *domain.CaseRecord) string {
	experience := "Not available"
	if record.Evidence != nil && record.Evidence.ExperienceSummary != nil {
		experience = *record.Evidence.ExperienceSummary
	}

	return fmt.Sprintf(`You are a social support case officer. Based on the applicant's profile, make a final decision and provide recommendations.

Profile:
- Name: %s, Age: %d
- Monthly income: %d, Family size: %d
- Experience: %s
- Eligibility model check: %s

Your task:
1. Final decision: "Approve" or "Soft Decline".
2. Decision reason: a concise justification.
3. Enablement recommendations: 2-3 concrete upskilling or job matching ideas.

Respond with a JSON object with keys "final_decision", "decision_reason" and "enablement_recommendations". No markdown, no extra keys.`,
		record.Form.Name,
		record.Form.Age,
		record.Form.MonthlyIncome,
		record.Form.FamilySize,
		experience,
		record.Assessment.MLLabel,
	)
}

type decisionReply struct {
	FinalDecision   domain.Decision
	DecisionReason  string
	Recommendations []string
}

// parseDecisionReply parses the reasoning model's reply after stripping any
// markdown fence wrapping. A reply whose final_decision is outside the
// {Approve, Soft Decline} contract counts as malformed.
func parseDecisionReply(raw string) (decisionReply, error) {
	var payload struct {
		FinalDecision   string   `json:"final_decision"`
		DecisionReason  string   `json:"decision_reason"`
		Recommendations []string `json:"enablement_recommendations"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return decisionReply{}, fmt.Errorf("parse decision reply: %w", err)
	}

	decision := domain.Decision(payload.FinalDecision)
	if decision != domain.DecisionApprove && decision != domain.DecisionSoftDecline {
		return decisionReply{}, fmt.Errorf("decision outside contract: %q", payload.FinalDecision)
	}

	return decisionReply{
		FinalDecision:   decision,
		DecisionReason:  payload.DecisionReason,
		Recommendations: payload.Recommendations,
	}, nil
}

func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
