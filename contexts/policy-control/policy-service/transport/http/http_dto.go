package httptransport

import "time"

// CreatePolicyRequest is the request body for policy creation.
type CreatePolicyRequest struct {
	PolicyID    string   `json:"policy_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdatePolicyRequest carries replacement content for an existing policy.
type UpdatePolicyRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

// PolicyResponse is the full read model: aggregate plus current content.
type PolicyResponse struct {
	Hrn            string    `json:"hrn"`
	PolicyID       string    `json:"policy_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	Tags           []string  `json:"tags,omitempty"`
	Content        string    `json:"content"`
	CurrentVersion int       `json:"current_version"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PolicySummary is the list projection without version content.
type PolicySummary struct {
	PolicyID       string    `json:"policy_id"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	Tags           []string  `json:"tags,omitempty"`
	CurrentVersion int       `json:"current_version"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListPoliciesResponse wraps one page of summaries.
type ListPoliciesResponse struct {
	Policies []PolicySummary `json:"policies"`
	Count    int             `json:"count"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
