package usecase

import (
	"fmt"
	"strings"

	"github.com/adilmn/social-support-ai/internal/core/domain"
)

// incomeTolerance is the fixed business threshold for form-vs-statement
// income reconciliation, in currency units. Not user-configurable.
const incomeTolerance = 1000

// ValidateCase reconciles declared form data against extracted evidence.
// Pure and deterministic: identical inputs always yield identical verdicts.
//
// The name check is case-insensitive substring containment of the declared
// name within the ID name. Absent evidence leaves the individual check nil
// (unknown) but still fails the overall verdict: there is no unknown-pass.
func ValidateCase(form domain.ApplicationFormData, evidence domain.ExtractedEvidence) domain.ValidationVerdict {
	verdict := domain.ValidationVerdict{Notes: []string{}}

	nameMatches := false
	if evidence.NameFromID != nil {
		nameMatches = strings.Contains(
			strings.ToLower(*evidence.NameFromID),
			strings.ToLower(form.Name),
		)
		verdict.NameMatches = &nameMatches
	}
	if !nameMatches {
		verdict.Notes = append(verdict.Notes, fmt.Sprintf(
			"Name mismatch: form says %q, ID says %q.",
			form.Name, stringOrNA(evidence.NameFromID),
		))
	}

	incomeConsistent := false
	if evidence.IncomeFromStatement != nil {
		diff := form.MonthlyIncome - *evidence.IncomeFromStatement
		if diff < 0 {
			diff = -diff
		}
		incomeConsistent = diff < incomeTolerance
		verdict.IncomeConsistent = &incomeConsistent
	}
	if !incomeConsistent {
		verdict.Notes = append(verdict.Notes, fmt.Sprintf(
			"Income inconsistent: form says %d, bank statement suggests %s.",
			form.MonthlyIncome, intOrNA(evidence.IncomeFromStatement),
		))
	}

	verdict.Passed = nameMatches && incomeConsistent
	return verdict
}

func stringOrNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func intOrNA(n *int) string {
	if n == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *n)
}
