package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"quarry/contexts/policy-control/schema-registry/domain/entities"
	domainerrors "quarry/contexts/policy-control/schema-registry/domain/errors"
	"quarry/contexts/policy-control/schema-registry/domain/services"
)

type fakeStorage struct {
	saved   []entities.Schema
	saveErr error
}

func (f *fakeStorage) SaveSchema(_ context.Context, schema entities.Schema) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, schema)
	return schema.ID, nil
}

func (f *fakeStorage) GetLatestSchema(context.Context) (entities.Schema, error) {
	if len(f.saved) == 0 {
		return entities.Schema{}, domainerrors.ErrSchemaNotFound
	}
	return f.saved[len(f.saved)-1], nil
}

func (f *fakeStorage) GetSchemaByVersion(_ context.Context, version string) (entities.Schema, error) {
	for _, schema := range f.saved {
		if schema.Version == version {
			return schema, nil
		}
	}
	return entities.Schema{}, domainerrors.ErrSchemaNotFound
}

func (f *fakeStorage) DeleteSchema(context.Context, string) error { return nil }

func (f *fakeStorage) ListSchemaVersions(context.Context) ([]string, error) {
	versions := make([]string, 0, len(f.saved))
	for _, schema := range f.saved {
		versions = append(versions, schema.Version)
	}
	return versions, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type sequenceIDs struct{ next int }

func (g *sequenceIDs) NewID(context.Context) (string, error) {
	g.next++
	return "schema-" + string(rune('0'+g.next)), nil
}

func registeredAccumulator(t *testing.T) *services.Accumulator {
	t.Helper()
	accumulator := services.NewAccumulator()
	err := accumulator.RegisterEntity(entities.EntityTypeDeclaration{
		Service:     "iam",
		Name:        "User",
		IsPrincipal: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = accumulator.RegisterAction(entities.ActionTypeDeclaration{
		Service:       "iam",
		Name:          "CreateUser",
		PrincipalType: "Iam::User",
		ResourceType:  "Iam::User",
	})
	if err != nil {
		t.Fatal(err)
	}
	return accumulator
}

func TestBuildSchemaPersistsAndResets(t *testing.T) {
	accumulator := registeredAccumulator(t)
	storage := &fakeStorage{}
	useCase := BuildSchemaUseCase{
		Accumulator: accumulator,
		Storage:     storage,
		Clock:       fixedClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)},
		IDGenerator: &sequenceIDs{},
	}

	result, err := useCase.Execute(context.Background(), BuildSchemaCommand{Version: "v1", Validate: true})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if result.EntityCount != 1 || result.ActionCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Version != "v1" || result.SchemaID == "" {
		t.Fatalf("unexpected result metadata: %+v", result)
	}
	if len(storage.saved) != 1 || storage.saved[0].Content == "" {
		t.Fatalf("expected one persisted schema with content, got %+v", storage.saved)
	}

	entityCount, actionCount := accumulator.Counts()
	if entityCount != 0 || actionCount != 0 {
		t.Fatalf("expected drained accumulator, got %d/%d", entityCount, actionCount)
	}

	_, err = useCase.Execute(context.Background(), BuildSchemaCommand{})
	if !errors.Is(err, domainerrors.ErrEmptySchema) {
		t.Fatalf("expected ErrEmptySchema on rebuild without registrations, got %v", err)
	}
}

func TestBuildSchemaDefaultsVersionFromClock(t *testing.T) {
	useCase := BuildSchemaUseCase{
		Accumulator: registeredAccumulator(t),
		Storage:     &fakeStorage{},
		Clock:       fixedClock{now: time.Unix(1700000000, 0).UTC()},
		IDGenerator: &sequenceIDs{},
	}

	result, err := useCase.Execute(context.Background(), BuildSchemaCommand{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Version != "v1700000000" {
		t.Fatalf("unexpected default version: %q", result.Version)
	}
}

func TestBuildSchemaSurfacesStorageFailure(t *testing.T) {
	storageErr := errors.New("connection reset")
	useCase := BuildSchemaUseCase{
		Accumulator: registeredAccumulator(t),
		Storage:     &fakeStorage{saveErr: storageErr},
		Clock:       fixedClock{now: time.Now().UTC()},
		IDGenerator: &sequenceIDs{},
	}

	if _, err := useCase.Execute(context.Background(), BuildSchemaCommand{Version: "v1"}); !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error to surface, got %v", err)
	}
}

func TestClearSchemaDiscardsAccumulator(t *testing.T) {
	accumulator := registeredAccumulator(t)
	clear := ClearSchemaUseCase{Accumulator: accumulator}
	if err := clear.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	entityCount, actionCount := accumulator.Counts()
	if entityCount != 0 || actionCount != 0 {
		t.Fatalf("expected cleared accumulator, got %d/%d", entityCount, actionCount)
	}
}
