package entities

import "quarry/internal/shared/hrn"

// ServiceControlPolicy is a guardrail document attachable to units and
// accounts. Its document is Cedar policy text, validated on creation by the
// same rules the policy store applies.
type ServiceControlPolicy struct {
	Hrn      hrn.Hrn
	Name     string
	Document string
}
