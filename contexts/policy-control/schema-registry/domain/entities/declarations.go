package entities

import (
	"time"

	"quarry/internal/shared/hrn"
)

// AttributeKind discriminates the shape of a declared attribute type.
type AttributeKind int

const (
	KindPrimitive AttributeKind = iota
	KindSet
	KindEntityRef
)

// AttributeType describes one attribute slot in an entity declaration.
type AttributeType struct {
	Kind    AttributeKind
	Name    string         // primitive name or referenced entity type
	Element *AttributeType // set element, nil otherwise
}

func StringType() AttributeType { return AttributeType{Kind: KindPrimitive, Name: "String"} }
func LongType() AttributeType   { return AttributeType{Kind: KindPrimitive, Name: "Long"} }
func BoolType() AttributeType   { return AttributeType{Kind: KindPrimitive, Name: "Bool"} }

func SetOf(element AttributeType) AttributeType {
	return AttributeType{Kind: KindSet, Element: &element}
}

func EntityRef(entityType string) AttributeType {
	return AttributeType{Kind: KindEntityRef, Name: entityType}
}

// Attribute pairs a name with its declared type. Order is significant and
// preserved as declared.
type Attribute struct {
	Name string
	Type AttributeType
}

// EntityTypeDeclaration is contributed once per resource kind by the owning
// bounded context.
type EntityTypeDeclaration struct {
	Service     string
	Name        string
	IsPrincipal bool
	Attributes  []Attribute
	MemberOf    []string // qualified parent entity types
}

// QualifiedName is the namespaced type key, e.g. "Organizations::Account".
func (d EntityTypeDeclaration) QualifiedName() string {
	return hrn.PascalCase(d.Service) + "::" + d.Name
}

// ActionTypeDeclaration is contributed once per operation kind.
type ActionTypeDeclaration struct {
	Service       string
	Name          string
	PrincipalType string // qualified entity type allowed as principal
	ResourceType  string // qualified entity type allowed as resource
}

// QualifiedName follows the <Service>::Action::"<Name>" convention.
func (d ActionTypeDeclaration) QualifiedName() string {
	return hrn.PascalCase(d.Service) + `::Action::"` + d.Name + `"`
}

// Schema is the immutable artifact produced by a build.
type Schema struct {
	ID          string
	Version     string
	EntityCount int
	ActionCount int
	Content     string
	BuiltAt     time.Time
}
