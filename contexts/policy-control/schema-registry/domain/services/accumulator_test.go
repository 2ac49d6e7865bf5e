package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"quarry/contexts/policy-control/schema-registry/domain/entities"
	domainerrors "quarry/contexts/policy-control/schema-registry/domain/errors"
)

func userDeclaration() entities.EntityTypeDeclaration {
	return entities.EntityTypeDeclaration{
		Service:     "iam",
		Name:        "User",
		IsPrincipal: true,
		Attributes: []entities.Attribute{
			{Name: "name", Type: entities.StringType()},
			{Name: "tags", Type: entities.SetOf(entities.StringType())},
		},
	}
}

func artifactDeclaration() entities.EntityTypeDeclaration {
	return entities.EntityTypeDeclaration{
		Service: "artifact",
		Name:    "Artifact",
		Attributes: []entities.Attribute{
			{Name: "repository", Type: entities.StringType()},
			{Name: "size", Type: entities.LongType()},
		},
	}
}

func readAction() entities.ActionTypeDeclaration {
	return entities.ActionTypeDeclaration{
		Service:       "artifact",
		Name:          "ReadArtifact",
		PrincipalType: "Iam::User",
		ResourceType:  "Artifact::Artifact",
	}
}

func TestRegisterEntityIsIdempotent(t *testing.T) {
	accumulator := NewAccumulator()
	for i := 0; i < 5; i++ {
		if err := accumulator.RegisterEntity(userDeclaration()); err != nil {
			t.Fatalf("registration %d failed: %v", i, err)
		}
	}
	entityCount, _ := accumulator.Counts()
	if entityCount != 1 {
		t.Fatalf("expected 1 entity after repeated registration, got %d", entityCount)
	}
}

func TestRegisterActionIsIdempotent(t *testing.T) {
	accumulator := NewAccumulator()
	for i := 0; i < 5; i++ {
		if err := accumulator.RegisterAction(readAction()); err != nil {
			t.Fatalf("registration %d failed: %v", i, err)
		}
	}
	_, actionCount := accumulator.Counts()
	if actionCount != 1 {
		t.Fatalf("expected 1 action after repeated registration, got %d", actionCount)
	}
}

func TestRegisterRejectsBlankDeclarations(t *testing.T) {
	accumulator := NewAccumulator()
	if err := accumulator.RegisterEntity(entities.EntityTypeDeclaration{Service: "iam"}); !errors.Is(err, domainerrors.ErrInvalidEntity) {
		t.Fatalf("expected ErrInvalidEntity, got %v", err)
	}
	if err := accumulator.RegisterAction(entities.ActionTypeDeclaration{Name: "Read"}); !errors.Is(err, domainerrors.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestDrainConsumesAndResets(t *testing.T) {
	accumulator := NewAccumulator()
	if err := accumulator.RegisterEntity(userDeclaration()); err != nil {
		t.Fatal(err)
	}
	if err := accumulator.RegisterAction(readAction()); err != nil {
		t.Fatal(err)
	}

	snapshot, err := accumulator.Drain()
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(snapshot.Entities) != 1 || len(snapshot.Actions) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d entities, %d actions", len(snapshot.Entities), len(snapshot.Actions))
	}

	entityCount, actionCount := accumulator.Counts()
	if entityCount != 0 || actionCount != 0 {
		t.Fatalf("expected empty accumulator after drain, got %d/%d", entityCount, actionCount)
	}

	if _, err := accumulator.Drain(); !errors.Is(err, domainerrors.ErrEmptySchema) {
		t.Fatalf("expected ErrEmptySchema on second drain, got %v", err)
	}
}

func TestConcurrentRegistrationCollapsesDuplicates(t *testing.T) {
	accumulator := NewAccumulator()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = accumulator.RegisterEntity(userDeclaration())
			_ = accumulator.RegisterAction(readAction())
		}()
	}
	wg.Wait()

	entityCount, actionCount := accumulator.Counts()
	if entityCount != 1 || actionCount != 1 {
		t.Fatalf("expected 1/1 after concurrent duplicate registration, got %d/%d", entityCount, actionCount)
	}
}

func TestSnapshotValidate(t *testing.T) {
	accumulator := NewAccumulator()
	if err := accumulator.RegisterEntity(userDeclaration()); err != nil {
		t.Fatal(err)
	}
	if err := accumulator.RegisterAction(readAction()); err != nil {
		t.Fatal(err)
	}

	snapshot, err := accumulator.Drain()
	if err != nil {
		t.Fatal(err)
	}
	// Action references Artifact::Artifact which is not registered.
	if err := snapshot.Validate(); !errors.Is(err, domainerrors.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for dangling action reference, got %v", err)
	}

	if err := accumulator.RegisterEntity(userDeclaration()); err != nil {
		t.Fatal(err)
	}
	if err := accumulator.RegisterEntity(artifactDeclaration()); err != nil {
		t.Fatal(err)
	}
	if err := accumulator.RegisterAction(readAction()); err != nil {
		t.Fatal(err)
	}
	snapshot, err = accumulator.Drain()
	if err != nil {
		t.Fatal(err)
	}
	if err := snapshot.Validate(); err != nil {
		t.Fatalf("expected valid snapshot, got %v", err)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	build := func() Snapshot {
		accumulator := NewAccumulator()
		_ = accumulator.RegisterEntity(userDeclaration())
		_ = accumulator.RegisterEntity(artifactDeclaration())
		_ = accumulator.RegisterAction(readAction())
		snapshot, err := accumulator.Drain()
		if err != nil {
			t.Fatal(err)
		}
		return snapshot
	}

	first := build().Render()
	second := build().Render()
	if first != second {
		t.Fatal("expected identical render output for identical registrations")
	}
	if !strings.Contains(first, "namespace Iam {") || !strings.Contains(first, "namespace Artifact {") {
		t.Fatalf("missing namespaces in rendered schema:\n%s", first)
	}
	if !strings.Contains(first, `action "ReadArtifact" appliesTo {`) {
		t.Fatalf("missing action in rendered schema:\n%s", first)
	}
	if !strings.Contains(first, "tags: Set<String>,") {
		t.Fatalf("missing set attribute in rendered schema:\n%s", first)
	}
}
