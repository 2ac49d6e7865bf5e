package entities

import (
	"time"

	"quarry/internal/shared/hrn"
)

// PolicyStatus is the lifecycle state of a stored policy.
type PolicyStatus string

const (
	StatusActive    PolicyStatus = "active"
	StatusSystem    PolicyStatus = "system"
	StatusImmutable PolicyStatus = "immutable"
	StatusDeleted   PolicyStatus = "deleted"
)

// Protected reports whether the status forbids deletion.
func (s PolicyStatus) Protected() bool {
	return s == StatusSystem || s == StatusImmutable
}

// Policy is the aggregate root. Exactly one current version exists at any
// time; content lives in PolicyVersion rows.
type Policy struct {
	Hrn            hrn.Hrn
	ID             string
	Name           string
	Description    string
	Status         PolicyStatus
	Tags           []string
	CreatedBy      string
	CurrentVersion int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PolicyVersion is immutable once created. Versions are monotonically
// increasing integers starting at 1.
type PolicyVersion struct {
	PolicyID  string
	Version   int
	Content   string
	CreatedAt time.Time
	CreatedBy string
}

// PolicyView is the read model returned to callers: the aggregate plus the
// current version's content.
type PolicyView struct {
	Hrn            hrn.Hrn
	ID             string
	Name           string
	Description    string
	Status         PolicyStatus
	Tags           []string
	Content        string
	CurrentVersion int
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ViewOf combines an aggregate with its current version.
func ViewOf(policy Policy, version PolicyVersion) PolicyView {
	return PolicyView{
		Hrn:            policy.Hrn,
		ID:             policy.ID,
		Name:           policy.Name,
		Description:    policy.Description,
		Status:         policy.Status,
		Tags:           policy.Tags,
		Content:        version.Content,
		CurrentVersion: policy.CurrentVersion,
		CreatedBy:      policy.CreatedBy,
		CreatedAt:      policy.CreatedAt,
		UpdatedAt:      policy.UpdatedAt,
	}
}
