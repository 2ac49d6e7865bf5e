package entities

import (
	"time"

	"quarry/internal/shared/hrn"
)

// EvaluationRequest identifies one authorization question. Action is the
// bare action name; its namespace is derived from the resource's service.
type EvaluationRequest struct {
	Principal hrn.Hrn
	Action    string
	Resource  hrn.Hrn
	Context   map[string]any
}

// EvaluationDecision is the answer, with the policy ids that determined it.
// Identical requests against unchanged policies yield identical decisions.
type EvaluationDecision struct {
	Principal           string
	Action              string
	Resource            string
	Allowed             bool
	Reason              string
	DeterminingPolicies []string
	EvaluatedAt         time.Time
	CacheHit            bool
}
