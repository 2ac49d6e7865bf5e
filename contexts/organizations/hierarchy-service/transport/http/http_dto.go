package httptransport

// CreateOuRequest creates a unit. An empty parent_hrn creates a root.
type CreateOuRequest struct {
	OuID      string `json:"ou_id,omitempty"`
	Name      string `json:"name"`
	ParentHrn string `json:"parent_hrn,omitempty"`
}

// OuResponse describes one organizational unit.
type OuResponse struct {
	Hrn       string `json:"hrn"`
	Name      string `json:"name"`
	ParentHrn string `json:"parent_hrn,omitempty"`
}

// CreateAccountRequest creates an account under an existing unit.
type CreateAccountRequest struct {
	AccountID string `json:"account_id,omitempty"`
	Name      string `json:"name"`
	ParentHrn string `json:"parent_hrn"`
}

// AccountResponse describes one member account.
type AccountResponse struct {
	Hrn       string `json:"hrn"`
	Name      string `json:"name"`
	ParentHrn string `json:"parent_hrn"`
}

// CreateScpRequest registers a control-policy document.
type CreateScpRequest struct {
	ScpID    string `json:"scp_id,omitempty"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

// ScpResponse describes one control policy.
type ScpResponse struct {
	Hrn      string `json:"hrn"`
	Name     string `json:"name"`
	Document string `json:"document,omitempty"`
}

// AttachScpRequest binds a control policy to a unit or account.
type AttachScpRequest struct {
	ScpHrn    string `json:"scp_hrn"`
	TargetHrn string `json:"target_hrn"`
}

// DetachScpRequest removes a control-policy binding.
type DetachScpRequest struct {
	ScpHrn    string `json:"scp_hrn"`
	TargetHrn string `json:"target_hrn"`
}

// MoveAccountRequest relocates an account between two units.
type MoveAccountRequest struct {
	AccountHrn  string `json:"account_hrn"`
	SourceOuHrn string `json:"source_ou_hrn"`
	TargetOuHrn string `json:"target_ou_hrn"`
}

// EffectiveScpsResponse is the resolved guardrail set for one node, ordered
// from the node itself up to the root.
type EffectiveScpsResponse struct {
	TargetHrn string        `json:"target_hrn"`
	Scps      []ScpResponse `json:"scps"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
