package services

import (
	"strings"
	"unicode"

	domainerrors "quarry/contexts/policy-control/policy-service/domain/errors"

	cedar "github.com/cedar-policy/cedar-go"
)

// MaxPolicyContentBytes bounds accepted policy documents.
const MaxPolicyContentBytes = 20 * 1024

// MaxPolicyIDLength bounds accepted policy ids.
const MaxPolicyIDLength = 128

// ValidatePolicyID enforces the shared id rule: non-empty, at most 128
// characters, first character alphanumeric, remainder alphanumeric, hyphen,
// or underscore.
func ValidatePolicyID(policyID string) error {
	if policyID == "" || len(policyID) > MaxPolicyIDLength {
		return domainerrors.ErrInvalidPolicyID
	}
	for i, r := range policyID {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		if i > 0 && (r == '-' || r == '_') {
			continue
		}
		return domainerrors.ErrInvalidPolicyID
	}
	return nil
}

// ValidateDocument checks size, syntax, and minimal semantics of a policy
// document. A document must parse and carry at least one effect clause.
func ValidateDocument(content string) error {
	if strings.TrimSpace(content) == "" {
		return domainerrors.ErrEmptyPolicyContent
	}
	if len(content) > MaxPolicyContentBytes {
		return domainerrors.ErrPolicyContentTooLong
	}
	policies, err := cedar.NewPolicyListFromBytes("policy.cedar", []byte(content))
	if err != nil {
		return domainerrors.ErrInvalidPolicyContent
	}
	if len(policies) == 0 {
		// Parseable but empty (comments only): no permit/forbid clause.
		return domainerrors.ErrInvalidPolicyContent
	}
	return nil
}
