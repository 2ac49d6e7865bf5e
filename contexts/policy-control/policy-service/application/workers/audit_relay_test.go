package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"quarry/contexts/policy-control/policy-service/adapters/memory"
	"quarry/contexts/policy-control/policy-service/ports"
)

type capturingPublisher struct {
	published []ports.AuditMessage
	failAfter int
}

func (p *capturingPublisher) PublishPolicyChanged(_ context.Context, message ports.AuditMessage) error {
	if p.failAfter > 0 && len(p.published) >= p.failAfter {
		return errors.New("bus unavailable")
	}
	p.published = append(p.published, message)
	return nil
}

func seedAudit(t *testing.T, store *memory.Store, id string, at time.Time) {
	t.Helper()
	err := store.RecordAudit(context.Background(), ports.AuditRecord{
		AuditID:    id,
		PolicyID:   "p1",
		Action:     "created",
		Actor:      "user-1",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("RecordAudit(%s): %v", id, err)
	}
}

func TestAuditRelayPublishesAndAcknowledges(t *testing.T) {
	store := memory.NewStore()
	base := time.Unix(1700000000, 0).UTC()
	seedAudit(t, store, "a1", base)
	seedAudit(t, store, "a2", base.Add(time.Second))

	publisher := &capturingPublisher{}
	relay := AuditRelay{Outbox: store, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published = %d, want 2", len(publisher.published))
	}
	if publisher.published[0].AuditID != "a1" {
		t.Fatalf("first published = %q, want a1 (oldest first)", publisher.published[0].AuditID)
	}

	// A second run finds nothing pending.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("republished acknowledged rows: %d", len(publisher.published))
	}
}

func TestAuditRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	base := time.Unix(1700000000, 0).UTC()
	seedAudit(t, store, "a1", base)
	seedAudit(t, store, "a2", base.Add(time.Second))

	publisher := &capturingPublisher{failAfter: 1}
	relay := AuditRelay{Outbox: store, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce succeeded despite publish failure")
	}

	// The failed row stays pending for the next run.
	pending, err := store.ListPendingAudit(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPendingAudit: %v", err)
	}
	if len(pending) != 1 || pending[0].AuditID != "a2" {
		t.Fatalf("pending = %+v, want only a2", pending)
	}
}
