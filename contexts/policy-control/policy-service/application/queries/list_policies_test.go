package queries

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quarry/contexts/policy-control/policy-service/adapters/memory"
	"quarry/contexts/policy-control/policy-service/domain/entities"
	domainerrors "quarry/contexts/policy-control/policy-service/domain/errors"
	"quarry/contexts/policy-control/policy-service/ports"
	"quarry/internal/shared/hrn"
)

func seedPolicies(t *testing.T, store *memory.Store, count int) {
	t.Helper()
	now := time.Unix(1700000000, 0).UTC()
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("policy-%03d", i)
		err := store.Create(context.Background(), ports.CreatePolicyInput{
			Policy: entities.Policy{
				Hrn:            hrn.New("quarry", "iam", "default", "Policy", id),
				ID:             id,
				Name:           id,
				Status:         entities.StatusActive,
				CreatedBy:      "seed",
				CurrentVersion: 1,
				CreatedAt:      now,
				UpdatedAt:      now,
			},
			Version: entities.PolicyVersion{
				PolicyID: id, Version: 1,
				Content:   "permit(principal, action, resource);",
				CreatedAt: now, CreatedBy: "seed",
			},
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
}

func TestListPoliciesRejectsBadPagination(t *testing.T) {
	useCase := ListPoliciesUseCase{Reader: memory.NewStore()}

	cases := []ports.ListPoliciesFilter{
		{Limit: 0},
		{Limit: -1},
		{Limit: MaxListLimit + 1},
		{Limit: 10, Offset: -1},
	}
	for _, filter := range cases {
		if _, err := useCase.Execute(context.Background(), filter); !errors.Is(err, domainerrors.ErrInvalidPagination) {
			t.Fatalf("filter %+v: err = %v, want ErrInvalidPagination", filter, err)
		}
	}
}

func TestListPoliciesPaginates(t *testing.T) {
	store := memory.NewStore()
	seedPolicies(t, store, 25)
	useCase := ListPoliciesUseCase{Reader: store}

	page, err := useCase.Execute(context.Background(), ports.ListPoliciesFilter{Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("page length = %d, want 5", len(page))
	}
	if page[0].ID != "policy-020" {
		t.Fatalf("first id = %q, want policy-020", page[0].ID)
	}
}

func TestListPoliciesFiltersByStatusAndName(t *testing.T) {
	store := memory.NewStore()
	seedPolicies(t, store, 5)
	if err := store.SetStatus("policy-002", "deleted"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	useCase := ListPoliciesUseCase{Reader: store}

	deleted, err := useCase.Execute(context.Background(), ports.ListPoliciesFilter{
		Status: entities.StatusDeleted,
		Limit:  MaxListLimit,
	})
	if err != nil {
		t.Fatalf("status filter: %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != "policy-002" {
		t.Fatalf("deleted = %+v, want exactly policy-002", deleted)
	}

	named, err := useCase.Execute(context.Background(), ports.ListPoliciesFilter{
		NameContains: "-00",
		Limit:        MaxListLimit,
	})
	if err != nil {
		t.Fatalf("name filter: %v", err)
	}
	if len(named) != 5 {
		t.Fatalf("name filter length = %d, want 5", len(named))
	}
}

func TestGetPolicyNotFound(t *testing.T) {
	useCase := GetPolicyUseCase{Reader: memory.NewStore()}

	_, err := useCase.Execute(context.Background(), "missing-policy")
	if !errors.Is(err, domainerrors.ErrPolicyNotFound) {
		t.Fatalf("err = %v, want ErrPolicyNotFound", err)
	}
}
