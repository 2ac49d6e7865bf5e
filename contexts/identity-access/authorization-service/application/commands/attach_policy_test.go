package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"quarry/contexts/identity-access/authorization-service/adapters/memory"
	"quarry/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/internal/shared/hrn"
)

func alice() hrn.Hrn {
	return hrn.New("quarry", "iam", "default", "User", "alice")
}

func TestAttachPolicyRequiresExistingPolicy(t *testing.T) {
	store := memory.NewStore()
	useCase := AttachPolicyUseCase{Attachments: store, Contents: store, Cache: store}

	err := useCase.Execute(context.Background(), AttachPolicyCommand{
		Principal: alice(),
		PolicyID:  "ghost",
	})
	if !errors.Is(err, domainerrors.ErrPolicyNotFound) {
		t.Fatalf("err = %v, want ErrPolicyNotFound", err)
	}
}

func TestAttachPolicyInvalidatesCachedDecisions(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-read", `permit(principal, action, resource);`)
	useCase := AttachPolicyUseCase{Attachments: store, Contents: store, Cache: store}

	now := time.Unix(1700000000, 0).UTC()
	key := alice().String() + "|ReadArtifact|hrn:quarry:artifact::default:Artifact/libfoo"
	if err := store.Set(context.Background(), key, entities.EvaluationDecision{Reason: "no_policies_found"}, now.Add(time.Hour)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if err := useCase.Execute(context.Background(), AttachPolicyCommand{
		Principal: alice(),
		PolicyID:  "allow-read",
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if _, hit, _ := store.Get(context.Background(), key, now); hit {
		t.Fatal("stale decision survived the attach")
	}
	ids, err := store.ListAttachedPolicyIDs(context.Background(), alice())
	if err != nil {
		t.Fatalf("ListAttachedPolicyIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != "allow-read" {
		t.Fatalf("attachments = %v, want [allow-read]", ids)
	}
}

func TestDetachMissingAttachmentFails(t *testing.T) {
	store := memory.NewStore()
	useCase := DetachPolicyUseCase{Attachments: store, Cache: store}

	err := useCase.Execute(context.Background(), DetachPolicyCommand{
		Principal: alice(),
		PolicyID:  "never-attached",
	})
	if !errors.Is(err, domainerrors.ErrAttachmentNotFound) {
		t.Fatalf("err = %v, want ErrAttachmentNotFound", err)
	}
}

func TestDetachRemovesAttachment(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-read", `permit(principal, action, resource);`)
	attach := AttachPolicyUseCase{Attachments: store, Contents: store, Cache: store}
	detach := DetachPolicyUseCase{Attachments: store, Cache: store}

	if err := attach.Execute(context.Background(), AttachPolicyCommand{Principal: alice(), PolicyID: "allow-read"}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := detach.Execute(context.Background(), DetachPolicyCommand{Principal: alice(), PolicyID: "allow-read"}); err != nil {
		t.Fatalf("detach: %v", err)
	}
	ids, _ := store.ListAttachedPolicyIDs(context.Background(), alice())
	if len(ids) != 0 {
		t.Fatalf("attachments = %v, want empty", ids)
	}
}
