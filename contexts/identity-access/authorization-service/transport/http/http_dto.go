package httptransport

import "time"

// EvaluateRequest is the request body for one authorization decision.
type EvaluateRequest struct {
	Principal string         `json:"principal"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Context   map[string]any `json:"context,omitempty"`
}

// EvaluateResponse describes the decision and what determined it.
type EvaluateResponse struct {
	Principal           string    `json:"principal"`
	Action              string    `json:"action"`
	Resource            string    `json:"resource"`
	Decision            string    `json:"decision"`
	Reason              string    `json:"reason"`
	DeterminingPolicies []string  `json:"determining_policies"`
	EvaluatedAt         time.Time `json:"evaluated_at"`
	CacheHit            bool      `json:"cache_hit"`
}

// AttachPolicyRequest binds a policy to a principal.
type AttachPolicyRequest struct {
	Principal string `json:"principal"`
	PolicyID  string `json:"policy_id"`
}

// DetachPolicyRequest removes a policy binding from a principal.
type DetachPolicyRequest struct {
	Principal string `json:"principal"`
	PolicyID  string `json:"policy_id"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
