package queries

import (
	"context"
	"errors"
	"testing"

	"quarry/contexts/organizations/hierarchy-service/adapters/memory"
	"quarry/contexts/organizations/hierarchy-service/domain/entities"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
	"quarry/internal/shared/hrn"
)

func ouHrn(id string) hrn.Hrn {
	return hrn.New("quarry", "organizations", "default", "OrganizationalUnit", id)
}

func accountHrn(id string) hrn.Hrn {
	return hrn.New("quarry", "organizations", "default", "Account", id)
}

func scpHrn(id string) hrn.Hrn {
	return hrn.New("quarry", "organizations", "default", "ServiceControlPolicy", id)
}

// seedTree builds root -> mid -> leaf with an account under leaf, and stores
// three control policies.
func seedTree(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	root := entities.NewOrganizationalUnit(ouHrn("root"), hrn.Hrn{}, "Root")
	root.AttachScp(scpHrn("deny-prod-delete"))
	mid := entities.NewOrganizationalUnit(ouHrn("mid"), ouHrn("root"), "Mid")
	mid.AttachScp(scpHrn("deny-external-share"))
	// Duplicate of the root attachment; the walk must keep one copy.
	mid.AttachScp(scpHrn("deny-prod-delete"))
	leaf := entities.NewOrganizationalUnit(ouHrn("leaf"), ouHrn("mid"), "Leaf")
	root.AddChildOu(ouHrn("mid"))
	mid.AddChildOu(ouHrn("leaf"))

	account := entities.NewAccount(accountHrn("acct-1"), ouHrn("leaf"), "Workload")
	account.AttachScp(scpHrn("allow-read-only"))
	leaf.AddChildAccount(accountHrn("acct-1"))

	for _, unit := range []entities.OrganizationalUnit{root, mid, leaf} {
		if err := store.SaveOu(ctx, unit); err != nil {
			t.Fatalf("SaveOu(%s): %v", unit.Name, err)
		}
	}
	if err := store.SaveAccount(ctx, account); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	for _, id := range []string{"deny-prod-delete", "deny-external-share", "allow-read-only"} {
		err := store.SaveScp(ctx, entities.ServiceControlPolicy{
			Hrn:      scpHrn(id),
			Name:     id,
			Document: `forbid(principal, action, resource);`,
		})
		if err != nil {
			t.Fatalf("SaveScp(%s): %v", id, err)
		}
	}
}

func TestEffectiveScpsUnionsNodeToRoot(t *testing.T) {
	store := memory.NewStore()
	seedTree(t, store)
	useCase := GetEffectiveScpsUseCase{Ous: store, Accounts: store, Scps: store}

	result, err := useCase.Execute(context.Background(), accountHrn("acct-1"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := make([]string, 0, len(result.Scps))
	for _, scp := range result.Scps {
		got = append(got, scp.Hrn.ResourceID)
	}
	// Account attachments come first, then each ancestor's, root last; the
	// duplicate root policy attached at mid is reported once.
	want := []string{"allow-read-only", "deny-external-share", "deny-prod-delete"}
	if len(got) != len(want) {
		t.Fatalf("scps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scps = %v, want %v", got, want)
		}
	}
}

func TestEffectiveScpsForUnitSkipsAccountAttachments(t *testing.T) {
	store := memory.NewStore()
	seedTree(t, store)
	useCase := GetEffectiveScpsUseCase{Ous: store, Accounts: store, Scps: store}

	result, err := useCase.Execute(context.Background(), ouHrn("mid"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Scps) != 2 {
		t.Fatalf("scp count = %d, want 2", len(result.Scps))
	}
	for _, scp := range result.Scps {
		if scp.Hrn.ResourceID == "allow-read-only" {
			t.Fatal("unit walk picked up an account attachment")
		}
	}
}

func TestEffectiveScpsMissingNodeIsTerminal(t *testing.T) {
	store := memory.NewStore()
	seedTree(t, store)
	useCase := GetEffectiveScpsUseCase{Ous: store, Accounts: store, Scps: store}

	_, err := useCase.Execute(context.Background(), accountHrn("ghost"))
	if !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}

	// A dangling parent pointer mid-walk is also terminal.
	orphan := entities.NewAccount(accountHrn("orphan"), ouHrn("missing-ou"), "Orphan")
	if err := store.SaveAccount(context.Background(), orphan); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	_, err = useCase.Execute(context.Background(), accountHrn("orphan"))
	if !errors.Is(err, domainerrors.ErrOuNotFound) {
		t.Fatalf("err = %v, want ErrOuNotFound", err)
	}
}

func TestEffectiveScpsRootOnly(t *testing.T) {
	store := memory.NewStore()
	seedTree(t, store)
	useCase := GetEffectiveScpsUseCase{Ous: store, Accounts: store, Scps: store}

	result, err := useCase.Execute(context.Background(), ouHrn("root"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Scps) != 1 || result.Scps[0].Hrn.ResourceID != "deny-prod-delete" {
		t.Fatalf("scps = %+v, want only deny-prod-delete", result.Scps)
	}
}
