// Package hrn defines the hierarchical resource name used as the identity of
// every entity in the platform. The textual form mirrors ARN conventions:
//
//	hrn:<partition>:<service>::<account_id>:<resource_type>/<resource_id>
//
// The region slot is intentionally omitted (double colon). The service segment
// acts as a logical namespace and is normalized to lowercase.
package hrn

import (
	"strings"

	cedar "github.com/cedar-policy/cedar-go"
)

// DefaultPartition names the single partition this platform operates in.
// Hrns built by the services use it; hrns received on the wire may carry
// anything, which is why lookups against platform-owned resources normalize
// to it rather than trusting the caller's partition segment.
const DefaultPartition = "quarry"

// Hrn is immutable once created and compared by value.
type Hrn struct {
	Partition    string
	Service      string
	AccountID    string
	ResourceType string
	ResourceID   string
}

// New builds an Hrn, normalizing the service segment to lowercase.
func New(partition, service, accountID, resourceType, resourceID string) Hrn {
	return Hrn{
		Partition:    partition,
		Service:      strings.ToLower(service),
		AccountID:    accountID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Parse reads the textual form. It returns false for anything that is not a
// six-segment hrn string with a type/id resource tail.
func Parse(raw string) (Hrn, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 6 || parts[0] != "hrn" {
		return Hrn{}, false
	}
	resource := strings.SplitN(parts[5], "/", 2)
	if len(resource) != 2 || resource[0] == "" || resource[1] == "" {
		return Hrn{}, false
	}
	return Hrn{
		Partition:    parts[1],
		Service:      strings.ToLower(parts[2]),
		AccountID:    parts[4],
		ResourceType: resource[0],
		ResourceID:   resource[1],
	}, true
}

// String is the inverse of Parse.
func (h Hrn) String() string {
	var b strings.Builder
	b.WriteString("hrn:")
	b.WriteString(h.Partition)
	b.WriteString(":")
	b.WriteString(h.Service)
	b.WriteString("::")
	b.WriteString(h.AccountID)
	b.WriteString(":")
	b.WriteString(h.ResourceType)
	b.WriteString("/")
	b.WriteString(h.ResourceID)
	return b.String()
}

// IsZero reports whether the Hrn carries no identity at all.
func (h Hrn) IsZero() bool {
	return h == Hrn{}
}

// EntityTypeName returns the Cedar-namespaced type for this Hrn. A resource
// type that already carries a namespace is used as-is; otherwise the service
// segment is promoted to a PascalCase namespace.
func (h Hrn) EntityTypeName() string {
	if strings.Contains(h.ResourceType, "::") {
		return h.ResourceType
	}
	namespace := PascalCase(h.Service)
	if namespace == "" {
		return normalizeIdent(h.ResourceType)
	}
	return namespace + "::" + normalizeIdent(h.ResourceType)
}

// normalizeIdent uppercases the first character and leaves the remainder
// untouched, so "account" becomes "Account" and "OrganizationalUnit" survives.
func normalizeIdent(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// EntityUID maps the Hrn onto the evaluation library's entity identity.
func (h Hrn) EntityUID() cedar.EntityUID {
	return cedar.NewEntityUID(cedar.EntityType(h.EntityTypeName()), cedar.String(h.ResourceID))
}

// PascalCase converts "my-service" or "my_service" to "MyService".
func PascalCase(s string) string {
	segments := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_'
	})
	var b strings.Builder
	for _, segment := range segments {
		b.WriteString(strings.ToUpper(segment[:1]))
		b.WriteString(strings.ToLower(segment[1:]))
	}
	return b.String()
}
