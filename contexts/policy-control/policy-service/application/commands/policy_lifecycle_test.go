package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quarry/contexts/policy-control/policy-service/adapters/memory"
	domainerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/contexts/policy-control/policy-service/domain/services"
	"quarry/contexts/policy-control/policy-service/ports"
)

const validDocument = `permit(principal, action, resource);`

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

func newCreateUseCase(store *memory.Store) CreatePolicyUseCase {
	return CreatePolicyUseCase{
		Creator:     store,
		Auditor:     store,
		Clock:       fixedClock{at: time.Unix(1700000000, 0).UTC()},
		IDGenerator: store,
	}
}

func TestCreatePolicyPersistsInitialVersion(t *testing.T) {
	store := memory.NewStore()
	useCase := newCreateUseCase(store)

	view, err := useCase.Execute(context.Background(), CreatePolicyCommand{
		PolicyID:  "allow-artifact-read",
		Name:      "Allow artifact read",
		Content:   validDocument,
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if view.CurrentVersion != 1 {
		t.Fatalf("CurrentVersion = %d, want 1", view.CurrentVersion)
	}
	if view.Content != validDocument {
		t.Fatalf("Content = %q, want stored document", view.Content)
	}
	if got := view.Hrn.String(); got != "hrn:quarry:iam::default:Policy/allow-artifact-read" {
		t.Fatalf("Hrn = %q", got)
	}
}

func TestCreatePolicyRejectsInvalidID(t *testing.T) {
	store := memory.NewStore()
	useCase := newCreateUseCase(store)

	for _, id := range []string{"", "-leading-dash", "has space", "dot.dot"} {
		_, err := useCase.Execute(context.Background(), CreatePolicyCommand{
			PolicyID: id,
			Content:  validDocument,
		})
		if !errors.Is(err, domainerrors.ErrInvalidPolicyID) {
			t.Fatalf("id %q: err = %v, want ErrInvalidPolicyID", id, err)
		}
	}
}

func TestCreatePolicyRejectsBadContent(t *testing.T) {
	store := memory.NewStore()
	useCase := newCreateUseCase(store)

	_, err := useCase.Execute(context.Background(), CreatePolicyCommand{
		PolicyID: "empty-doc",
		Content:  "   ",
	})
	if !errors.Is(err, domainerrors.ErrEmptyPolicyContent) {
		t.Fatalf("blank content: err = %v, want ErrEmptyPolicyContent", err)
	}

	_, err = useCase.Execute(context.Background(), CreatePolicyCommand{
		PolicyID: "broken-doc",
		Content:  "permit(principal action resource",
	})
	if !errors.Is(err, domainerrors.ErrInvalidPolicyContent) {
		t.Fatalf("malformed content: err = %v, want ErrInvalidPolicyContent", err)
	}
}

func TestCreatePolicyConcurrentSameID(t *testing.T) {
	store := memory.NewStore()
	useCase := newCreateUseCase(store)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := useCase.Execute(context.Background(), CreatePolicyCommand{
				PolicyID:  "contended-id",
				Content:   validDocument,
				CreatedBy: "user-1",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, conflicted := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrPolicyAlreadyExists):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != attempts-1 {
		t.Fatalf("succeeded = %d, conflicted = %d, want 1 and %d", succeeded, conflicted, attempts-1)
	}
}

func TestUpdatePolicyAppendsVersion(t *testing.T) {
	store := memory.NewStore()
	create := newCreateUseCase(store)
	update := UpdatePolicyUseCase{
		Updater:     store,
		Auditor:     store,
		Clock:       fixedClock{at: time.Unix(1700000100, 0).UTC()},
		IDGenerator: store,
	}

	if _, err := create.Execute(context.Background(), CreatePolicyCommand{
		PolicyID: "versioned", Content: validDocument, CreatedBy: "user-1",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := `forbid(principal, action, resource);`
	view, err := update.Execute(context.Background(), UpdatePolicyCommand{
		PolicyID:  "versioned",
		Content:   updated,
		UpdatedBy: "user-2",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.CurrentVersion != 2 {
		t.Fatalf("CurrentVersion = %d, want 2", view.CurrentVersion)
	}
	if view.Content != updated {
		t.Fatalf("Content = %q, want new document", view.Content)
	}

	first, err := store.GetVersion(context.Background(), "versioned", 1)
	if err != nil {
		t.Fatalf("GetVersion(1): %v", err)
	}
	if first.Content != validDocument {
		t.Fatalf("version 1 mutated: %q", first.Content)
	}
}

func TestUpdateMissingPolicyFails(t *testing.T) {
	store := memory.NewStore()
	update := UpdatePolicyUseCase{Updater: store, Clock: fixedClock{at: time.Now()}}

	_, err := update.Execute(context.Background(), UpdatePolicyCommand{
		PolicyID: "ghost",
		Content:  validDocument,
	})
	if !errors.Is(err, domainerrors.ErrPolicyNotFound) {
		t.Fatalf("err = %v, want ErrPolicyNotFound", err)
	}
}

func TestDeleteProtectedPolicyBlocked(t *testing.T) {
	store := memory.NewStore()
	create := newCreateUseCase(store)
	deleteUC := DeletePolicyUseCase{
		Reader:       store,
		Deleter:      store,
		Dependencies: store,
		Auditor:      store,
		Clock:        fixedClock{at: time.Unix(1700000200, 0).UTC()},
		IDGenerator:  store,
	}

	if _, err := create.Execute(context.Background(), CreatePolicyCommand{
		PolicyID: "root-guard", Content: validDocument, CreatedBy: "system",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Simulate a bootstrap policy marked system after creation.
	if err := store.SetStatus("root-guard", "system"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	err := deleteUC.Execute(context.Background(), DeletePolicyCommand{PolicyID: "root-guard"})
	if !errors.Is(err, domainerrors.ErrDeletionNotAllowed) {
		t.Fatalf("err = %v, want ErrDeletionNotAllowed", err)
	}

	if _, _, err := store.Get(context.Background(), "root-guard"); err != nil {
		t.Fatalf("policy no longer retrievable after blocked delete: %v", err)
	}
}

func TestDeleteWithDependentsBlocked(t *testing.T) {
	store := memory.NewStore()
	create := newCreateUseCase(store)
	deleteUC := DeletePolicyUseCase{
		Reader:       store,
		Deleter:      store,
		Dependencies: store,
		Clock:        fixedClock{at: time.Unix(1700000200, 0).UTC()},
	}

	if _, err := create.Execute(context.Background(), CreatePolicyCommand{
		PolicyID: "attached", Content: validDocument,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	store.Dependents["attached"] = true

	err := deleteUC.Execute(context.Background(), DeletePolicyCommand{PolicyID: "attached"})
	if !errors.Is(err, domainerrors.ErrHasDependencies) {
		t.Fatalf("err = %v, want ErrHasDependencies", err)
	}
}

func TestSoftDeleteKeepsPolicyRetrievable(t *testing.T) {
	store := memory.NewStore()
	create := newCreateUseCase(store)
	deleteUC := DeletePolicyUseCase{
		Reader:  store,
		Deleter: store,
		Clock:   fixedClock{at: time.Unix(1700000300, 0).UTC()},
	}

	if _, err := create.Execute(context.Background(), CreatePolicyCommand{
		PolicyID: "soft-target", Content: validDocument,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := deleteUC.Execute(context.Background(), DeletePolicyCommand{PolicyID: "soft-target"}); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	policy, _, err := store.Get(context.Background(), "soft-target")
	if err != nil {
		t.Fatalf("Get after soft delete: %v", err)
	}
	if string(policy.Status) != "deleted" {
		t.Fatalf("Status = %q, want deleted", policy.Status)
	}
}

func TestHardDeleteArchivesVersions(t *testing.T) {
	store := memory.NewStore()
	create := newCreateUseCase(store)
	update := UpdatePolicyUseCase{Updater: store, Clock: fixedClock{at: time.Unix(1700000400, 0).UTC()}}
	deleteUC := DeletePolicyUseCase{
		Reader:  store,
		Deleter: store,
		Clock:   fixedClock{at: time.Unix(1700000500, 0).UTC()},
	}

	if _, err := create.Execute(context.Background(), CreatePolicyCommand{
		PolicyID: "hard-target", Content: validDocument,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := update.Execute(context.Background(), UpdatePolicyCommand{
		PolicyID: "hard-target",
		Content:  `forbid(principal, action, resource);`,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := deleteUC.Execute(context.Background(), DeletePolicyCommand{PolicyID: "hard-target", Hard: true}); err != nil {
		t.Fatalf("hard delete: %v", err)
	}

	if _, _, err := store.Get(context.Background(), "hard-target"); !errors.Is(err, domainerrors.ErrPolicyNotFound) {
		t.Fatalf("Get after hard delete: err = %v, want ErrPolicyNotFound", err)
	}
	if archived := store.ArchivedVersions("hard-target"); len(archived) != 2 {
		t.Fatalf("archived versions = %d, want 2", len(archived))
	}
}

func TestPolicyIDLengthBound(t *testing.T) {
	long := make([]byte, services.MaxPolicyIDLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := services.ValidatePolicyID(string(long)); !errors.Is(err, domainerrors.ErrInvalidPolicyID) {
		t.Fatalf("err = %v, want ErrInvalidPolicyID", err)
	}
	if err := services.ValidatePolicyID(string(long[:services.MaxPolicyIDLength])); err != nil {
		t.Fatalf("max-length id rejected: %v", err)
	}
}

var _ ports.PolicyCreator = (*memory.Store)(nil)
