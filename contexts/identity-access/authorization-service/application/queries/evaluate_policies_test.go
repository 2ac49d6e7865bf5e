package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"quarry/contexts/identity-access/authorization-service/adapters/memory"
	"quarry/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quarry/contexts/identity-access/authorization-service/domain/errors"
	"quarry/contexts/identity-access/authorization-service/domain/services"
	"quarry/internal/shared/hrn"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

// staticScps returns the same control-policy set for every node.
type staticScps struct {
	documents []services.Document
	err       error
}

func (s staticScps) EffectiveScpsFor(context.Context, hrn.Hrn) ([]services.Document, error) {
	return s.documents, s.err
}

func principalHrn() hrn.Hrn {
	return hrn.New("quarry", "iam", "default", "User", "alice")
}

func resourceHrn() hrn.Hrn {
	return hrn.New("quarry", "artifact", "default", "Artifact", "libfoo")
}

func request() entities.EvaluationRequest {
	return entities.EvaluationRequest{
		Principal: principalHrn(),
		Action:    "ReadArtifact",
		Resource:  resourceHrn(),
	}
}

const permitAlice = `permit(principal == Iam::User::"alice", action, resource);`

func newUseCase(store *memory.Store, scps staticScps) EvaluatePoliciesUseCase {
	return EvaluatePoliciesUseCase{
		Scps:     scps,
		Policies: store,
		Cache:    store,
		Clock:    fixedClock{at: time.Unix(1700000000, 0).UTC()},
	}
}

func TestEvaluateDefaultDenyWithoutPolicies(t *testing.T) {
	store := memory.NewStore()
	useCase := newUseCase(store, staticScps{})

	decision, err := useCase.Execute(context.Background(), request())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if decision.Allowed {
		t.Fatal("principal without policies was allowed")
	}
	if decision.Reason != "no_policies_found" {
		t.Fatalf("Reason = %q, want no_policies_found", decision.Reason)
	}
	if len(decision.DeterminingPolicies) != 0 {
		t.Fatalf("DeterminingPolicies = %v, want empty", decision.DeterminingPolicies)
	}
}

func TestEvaluatePermitNamesDeterminingPolicy(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-read", permitAlice)
	if err := store.AttachPolicy(context.Background(), principalHrn(), "allow-read"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}
	useCase := newUseCase(store, staticScps{})

	decision, err := useCase.Execute(context.Background(), request())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("denied: reason %q", decision.Reason)
	}
	if decision.Reason != "explicit_permit" {
		t.Fatalf("Reason = %q, want explicit_permit", decision.Reason)
	}
	if len(decision.DeterminingPolicies) != 1 || decision.DeterminingPolicies[0] != "allow-read" {
		t.Fatalf("DeterminingPolicies = %v, want [allow-read]", decision.DeterminingPolicies)
	}
}

func TestEvaluateScpForbidOverridesPermit(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-read", permitAlice)
	if err := store.AttachPolicy(context.Background(), principalHrn(), "allow-read"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}
	scps := staticScps{documents: []services.Document{
		{ID: "deny-all", Content: `forbid(principal, action, resource);`},
	}}
	useCase := newUseCase(store, scps)

	decision, err := useCase.Execute(context.Background(), request())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if decision.Allowed {
		t.Fatal("control-policy forbid did not override the permit")
	}
	if decision.Reason != "explicit_forbid_scp" {
		t.Fatalf("Reason = %q, want explicit_forbid_scp", decision.Reason)
	}
	if len(decision.DeterminingPolicies) != 1 || decision.DeterminingPolicies[0] != "deny-all" {
		t.Fatalf("DeterminingPolicies = %v, want [deny-all]", decision.DeterminingPolicies)
	}
}

func TestEvaluateNonMatchingPermitDenies(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-bob", `permit(principal == Iam::User::"bob", action, resource);`)
	if err := store.AttachPolicy(context.Background(), principalHrn(), "allow-bob"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}
	useCase := newUseCase(store, staticScps{})

	decision, err := useCase.Execute(context.Background(), request())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if decision.Allowed {
		t.Fatal("non-matching permit allowed the request")
	}
	if decision.Reason != "no_matching_permit" {
		t.Fatalf("Reason = %q, want no_matching_permit", decision.Reason)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-read", permitAlice)
	store.PutPolicyContent("allow-write", `permit(principal == Iam::User::"alice", action == Artifact::Action::"WriteArtifact", resource);`)
	ctx := context.Background()
	if err := store.AttachPolicy(ctx, principalHrn(), "allow-read"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}
	if err := store.AttachPolicy(ctx, principalHrn(), "allow-write"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}

	first, err := newUseCase(store, staticScps{}).Execute(ctx, request())
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	for i := 0; i < 10; i++ {
		// A fresh use case and a cold cache must not change the outcome.
		freshStore := memory.NewStore()
		freshStore.PutPolicyContent("allow-read", permitAlice)
		freshStore.PutPolicyContent("allow-write", `permit(principal == Iam::User::"alice", action == Artifact::Action::"WriteArtifact", resource);`)
		if err := freshStore.AttachPolicy(ctx, principalHrn(), "allow-read"); err != nil {
			t.Fatalf("AttachPolicy: %v", err)
		}
		if err := freshStore.AttachPolicy(ctx, principalHrn(), "allow-write"); err != nil {
			t.Fatalf("AttachPolicy: %v", err)
		}
		again, err := newUseCase(freshStore, staticScps{}).Execute(ctx, request())
		if err != nil {
			t.Fatalf("repeat Execute: %v", err)
		}
		if again.Allowed != first.Allowed || again.Reason != first.Reason {
			t.Fatalf("decision drifted: %+v vs %+v", again, first)
		}
		if len(again.DeterminingPolicies) != len(first.DeterminingPolicies) {
			t.Fatalf("determining drifted: %v vs %v", again.DeterminingPolicies, first.DeterminingPolicies)
		}
	}
}

func TestEvaluateScpResolutionFailureIsAnError(t *testing.T) {
	store := memory.NewStore()
	useCase := newUseCase(store, staticScps{err: errors.New("organizations unreachable")})

	_, err := useCase.Execute(context.Background(), request())
	if !errors.Is(err, domainerrors.ErrEvaluationFailed) {
		t.Fatalf("err = %v, want ErrEvaluationFailed", err)
	}
	if !errors.Is(err, domainerrors.ErrScpResolutionFailed) {
		t.Fatalf("err = %v, want ErrScpResolutionFailed in the chain", err)
	}

	// The failed attempt must leave nothing behind: the same request against
	// a healthy provider is computed fresh, not served from the cache.
	decision, err := newUseCase(store, staticScps{}).Execute(context.Background(), request())
	if err != nil {
		t.Fatalf("Execute after recovery: %v", err)
	}
	if decision.CacheHit {
		t.Fatal("failed evaluation left a cached decision behind")
	}
	if decision.Reason != "no_policies_found" {
		t.Fatalf("Reason = %q, want no_policies_found", decision.Reason)
	}
}

func TestEvaluatePrincipalLookupFailureIsAnError(t *testing.T) {
	store := memory.NewStore()
	// An attachment without a stored document makes the principal lookup fail.
	if err := store.AttachPolicy(context.Background(), principalHrn(), "dangling"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}
	useCase := newUseCase(store, staticScps{})

	_, err := useCase.Execute(context.Background(), request())
	if !errors.Is(err, domainerrors.ErrEvaluationFailed) {
		t.Fatalf("err = %v, want ErrEvaluationFailed", err)
	}
}

func TestEvaluateValidatesInput(t *testing.T) {
	store := memory.NewStore()
	useCase := newUseCase(store, staticScps{})

	_, err := useCase.Execute(context.Background(), entities.EvaluationRequest{
		Action:   "ReadArtifact",
		Resource: resourceHrn(),
	})
	if !errors.Is(err, domainerrors.ErrInvalidPrincipal) {
		t.Fatalf("err = %v, want ErrInvalidPrincipal", err)
	}

	_, err = useCase.Execute(context.Background(), entities.EvaluationRequest{
		Principal: principalHrn(),
		Resource:  resourceHrn(),
	})
	if !errors.Is(err, domainerrors.ErrInvalidAction) {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}

	_, err = useCase.Execute(context.Background(), entities.EvaluationRequest{
		Principal: principalHrn(),
		Action:    "ReadArtifact",
	})
	if !errors.Is(err, domainerrors.ErrInvalidResource) {
		t.Fatalf("err = %v, want ErrInvalidResource", err)
	}
}

// captureScps records every account hrn the engine asks about.
type captureScps struct {
	targets *[]hrn.Hrn
}

func (c captureScps) EffectiveScpsFor(_ context.Context, account hrn.Hrn) ([]services.Document, error) {
	*c.targets = append(*c.targets, account)
	return nil, nil
}

func TestEvaluateResolvesScpsInPlatformPartition(t *testing.T) {
	store := memory.NewStore()
	var targets []hrn.Hrn
	useCase := EvaluatePoliciesUseCase{
		Scps:     captureScps{targets: &targets},
		Policies: store,
		Cache:    store,
		Clock:    fixedClock{at: time.Unix(1700000000, 0).UTC()},
	}

	// A caller-supplied partition must not steer the organization lookup.
	req := entities.EvaluationRequest{
		Principal: hrn.New("aws", "iam", "acct-1", "User", "alice"),
		Action:    "ReadArtifact",
		Resource:  hrn.New("aws", "artifact", "acct-2", "Artifact", "libfoo"),
	}
	if _, err := useCase.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("resolved %d accounts, want 2", len(targets))
	}
	for _, target := range targets {
		if target.Partition != hrn.DefaultPartition {
			t.Fatalf("Partition = %q, want %q", target.Partition, hrn.DefaultPartition)
		}
	}
}

func TestEvaluateRejectsUnsupportedContextValue(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-read", permitAlice)
	if err := store.AttachPolicy(context.Background(), principalHrn(), "allow-read"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}
	useCase := newUseCase(store, staticScps{})

	req := request()
	req.Context = map[string]any{"tags": map[string]any{"env": "prod"}}
	_, err := useCase.Execute(context.Background(), req)
	if !errors.Is(err, domainerrors.ErrInvalidContext) {
		t.Fatalf("err = %v, want ErrInvalidContext", err)
	}

	req.Context = map[string]any{"mfa": true, "ip": "10.0.0.1", "port": 443}
	if _, err := useCase.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute with supported context types: %v", err)
	}
}

func TestEvaluateCachesContextFreeDecisions(t *testing.T) {
	store := memory.NewStore()
	store.PutPolicyContent("allow-read", permitAlice)
	if err := store.AttachPolicy(context.Background(), principalHrn(), "allow-read"); err != nil {
		t.Fatalf("AttachPolicy: %v", err)
	}
	useCase := newUseCase(store, staticScps{})

	first, err := useCase.Execute(context.Background(), request())
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheHit {
		t.Fatal("first evaluation reported a cache hit")
	}
	second, err := useCase.Execute(context.Background(), request())
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second evaluation missed the cache")
	}
	if second.Allowed != first.Allowed {
		t.Fatal("cached decision differs from computed decision")
	}
}
