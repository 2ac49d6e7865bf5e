package commands

import (
	"context"
	"errors"
	"testing"

	"quarry/contexts/organizations/hierarchy-service/adapters/memory"
	domainerrors "quarry/contexts/organizations/hierarchy-service/domain/errors"
)

func TestCreateAccountRegistersParentMembership(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	createOu := CreateOuUseCase{Ous: store, IDGenerator: store}
	if _, err := createOu.Execute(ctx, CreateOuCommand{OuID: "root", Name: "Root"}); err != nil {
		t.Fatalf("create root: %v", err)
	}

	create := CreateAccountUseCase{UnitOfWork: store, IDGenerator: store}
	account, err := create.Execute(ctx, CreateAccountCommand{AccountID: "acct-1", Name: "Workload", ParentHrn: ouHrn("root")})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if account.ParentHrn != ouHrn("root") {
		t.Fatalf("ParentHrn = %s, want %s", account.ParentHrn, ouHrn("root"))
	}

	parent, err := store.FindOuByHrn(ctx, ouHrn("root"))
	if err != nil {
		t.Fatalf("FindOuByHrn: %v", err)
	}
	if !parent.HasChildAccount(accountHrn("acct-1")) {
		t.Fatal("parent does not list the new account")
	}
}

func TestCreateAccountRejectsDuplicate(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	createOu := CreateOuUseCase{Ous: store, IDGenerator: store}
	if _, err := createOu.Execute(ctx, CreateOuCommand{OuID: "root", Name: "Root"}); err != nil {
		t.Fatalf("create root: %v", err)
	}

	create := CreateAccountUseCase{UnitOfWork: store, IDGenerator: store}
	if _, err := create.Execute(ctx, CreateAccountCommand{AccountID: "acct-1", Name: "Workload", ParentHrn: ouHrn("root")}); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	_, err := create.Execute(ctx, CreateAccountCommand{AccountID: "acct-1", Name: "Copy", ParentHrn: ouHrn("root")})
	if !errors.Is(err, domainerrors.ErrAccountAlreadyExists) {
		t.Fatalf("err = %v, want ErrAccountAlreadyExists", err)
	}
}

func TestCreateAccountParentSaveFailureLeavesNoAccount(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	createOu := CreateOuUseCase{Ous: store, IDGenerator: store}
	if _, err := createOu.Execute(ctx, CreateOuCommand{OuID: "root", Name: "Root"}); err != nil {
		t.Fatalf("create root: %v", err)
	}
	store.FailOuSaves[ouHrn("root").String()] = true

	create := CreateAccountUseCase{UnitOfWork: store, IDGenerator: store}
	_, err := create.Execute(ctx, CreateAccountCommand{AccountID: "acct-1", Name: "Workload", ParentHrn: ouHrn("root")})
	if !errors.Is(err, domainerrors.ErrStorageFailure) {
		t.Fatalf("err = %v, want ErrStorageFailure", err)
	}

	// The account save happened first inside the unit of work; the aborted
	// membership update must take it down as well.
	if _, err := store.FindAccountByHrn(ctx, accountHrn("acct-1")); !errors.Is(err, domainerrors.ErrAccountNotFound) {
		t.Fatalf("FindAccountByHrn = %v, want ErrAccountNotFound", err)
	}
}
