package services

import (
	"sort"
	"strings"
	"sync"

	"quarry/contexts/policy-control/schema-registry/domain/entities"
	domainerrors "quarry/contexts/policy-control/schema-registry/domain/errors"
	"quarry/internal/shared/hrn"
)

// Accumulator collects entity and action type declarations from every bounded
// context until a build drains it. It is owned by the composition root and
// shared by reference with each registrar.
//
// The mutex guards only registration and the drain swap; schema rendering and
// persistence happen on the drained snapshot after the lock is released.
type Accumulator struct {
	mu       sync.Mutex
	entities map[string]entities.EntityTypeDeclaration
	actions  map[string]entities.ActionTypeDeclaration
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		entities: make(map[string]entities.EntityTypeDeclaration),
		actions:  make(map[string]entities.ActionTypeDeclaration),
	}
}

// RegisterEntity inserts the declaration keyed by qualified type name.
// Re-registering an existing name is a successful no-op, so independent
// callers can race safely.
func (a *Accumulator) RegisterEntity(declaration entities.EntityTypeDeclaration) error {
	if strings.TrimSpace(declaration.Service) == "" || strings.TrimSpace(declaration.Name) == "" {
		return domainerrors.ErrInvalidEntity
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	key := declaration.QualifiedName()
	if _, exists := a.entities[key]; exists {
		return nil
	}
	a.entities[key] = declaration
	return nil
}

// RegisterAction inserts the declaration keyed by qualified action name with
// the same idempotency contract as RegisterEntity.
func (a *Accumulator) RegisterAction(declaration entities.ActionTypeDeclaration) error {
	if strings.TrimSpace(declaration.Service) == "" || strings.TrimSpace(declaration.Name) == "" {
		return domainerrors.ErrInvalidAction
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	key := declaration.QualifiedName()
	if _, exists := a.actions[key]; exists {
		return nil
	}
	a.actions[key] = declaration
	return nil
}

// Counts reports the current accumulator sizes.
func (a *Accumulator) Counts() (entityCount, actionCount int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entities), len(a.actions)
}

// Drain atomically takes ownership of the accumulated declarations, replacing
// them with empty maps so registrations after this point start a fresh
// generation. Draining an empty accumulator fails with ErrEmptySchema.
func (a *Accumulator) Drain() (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.entities) == 0 && len(a.actions) == 0 {
		return Snapshot{}, domainerrors.ErrEmptySchema
	}
	snapshot := Snapshot{Entities: a.entities, Actions: a.actions}
	a.entities = make(map[string]entities.EntityTypeDeclaration)
	a.actions = make(map[string]entities.ActionTypeDeclaration)
	return snapshot, nil
}

// Clear discards all accumulated declarations without building.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entities = make(map[string]entities.EntityTypeDeclaration)
	a.actions = make(map[string]entities.ActionTypeDeclaration)
}

// Snapshot is a drained accumulator generation, safe to render and validate
// without further locking.
type Snapshot struct {
	Entities map[string]entities.EntityTypeDeclaration
	Actions  map[string]entities.ActionTypeDeclaration
}

// Validate performs structural checks: every action must reference declared
// entity types, and entity-reference attributes must resolve.
func (s Snapshot) Validate() error {
	for _, action := range s.Actions {
		if _, ok := s.Entities[action.PrincipalType]; !ok {
			return domainerrors.ErrInvalidSchema
		}
		if _, ok := s.Entities[action.ResourceType]; !ok {
			return domainerrors.ErrInvalidSchema
		}
	}
	for _, entity := range s.Entities {
		for _, attribute := range entity.Attributes {
			if err := s.validateAttribute(attribute.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s Snapshot) validateAttribute(t entities.AttributeType) error {
	switch t.Kind {
	case entities.KindEntityRef:
		if _, ok := s.Entities[t.Name]; !ok {
			return domainerrors.ErrInvalidSchema
		}
	case entities.KindSet:
		if t.Element == nil {
			return domainerrors.ErrInvalidSchema
		}
		return s.validateAttribute(*t.Element)
	}
	return nil
}

// Render serializes the snapshot to the Cedar schema language, grouped by
// namespace with deterministic ordering.
func (s Snapshot) Render() string {
	type namespaceBody struct {
		entities []entities.EntityTypeDeclaration
		actions  []entities.ActionTypeDeclaration
	}
	namespaces := make(map[string]*namespaceBody)
	body := func(service string) *namespaceBody {
		ns := hrn.PascalCase(service)
		if namespaces[ns] == nil {
			namespaces[ns] = &namespaceBody{}
		}
		return namespaces[ns]
	}
	for _, entity := range s.Entities {
		b := body(entity.Service)
		b.entities = append(b.entities, entity)
	}
	for _, action := range s.Actions {
		b := body(action.Service)
		b.actions = append(b.actions, action)
	}

	names := make([]string, 0, len(namespaces))
	for name := range namespaces {
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	for _, name := range names {
		ns := namespaces[name]
		sort.Slice(ns.entities, func(i, j int) bool { return ns.entities[i].Name < ns.entities[j].Name })
		sort.Slice(ns.actions, func(i, j int) bool { return ns.actions[i].Name < ns.actions[j].Name })

		out.WriteString("namespace " + name + " {\n")
		for _, entity := range ns.entities {
			renderEntity(&out, entity)
		}
		for _, action := range ns.actions {
			renderAction(&out, action)
		}
		out.WriteString("}\n")
	}
	return out.String()
}

func renderEntity(out *strings.Builder, entity entities.EntityTypeDeclaration) {
	out.WriteString("  entity " + entity.Name)
	if len(entity.MemberOf) > 0 {
		out.WriteString(" in [" + strings.Join(entity.MemberOf, ", ") + "]")
	}
	if len(entity.Attributes) == 0 {
		out.WriteString(";\n")
		return
	}
	out.WriteString(" {\n")
	for _, attribute := range entity.Attributes {
		out.WriteString("    " + attribute.Name + ": " + renderType(attribute.Type) + ",\n")
	}
	out.WriteString("  };\n")
}

func renderAction(out *strings.Builder, action entities.ActionTypeDeclaration) {
	out.WriteString("  action \"" + action.Name + "\" appliesTo {\n")
	out.WriteString("    principal: [" + action.PrincipalType + "],\n")
	out.WriteString("    resource: [" + action.ResourceType + "],\n")
	out.WriteString("  };\n")
}

func renderType(t entities.AttributeType) string {
	switch t.Kind {
	case entities.KindSet:
		if t.Element == nil {
			return "Set<String>"
		}
		return "Set<" + renderType(*t.Element) + ">"
	default:
		return t.Name
	}
}
