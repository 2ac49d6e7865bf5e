package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"quarry/contexts/artifact-distribution/artifact-service/adapters/memory"
	domainerrors "quarry/contexts/artifact-distribution/artifact-service/domain/errors"
	"quarry/internal/shared/hrn"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

// staticAuthorizer answers every question the same way.
type staticAuthorizer struct {
	allowed bool
	reason  string
	err     error
}

func (a staticAuthorizer) Authorize(context.Context, hrn.Hrn, string, hrn.Hrn) (bool, string, error) {
	return a.allowed, a.reason, a.err
}

func publisher() hrn.Hrn {
	return hrn.New("quarry", "iam", "acct-1", "User", "ci-bot")
}

func TestPublishArtifactStoresMetadata(t *testing.T) {
	store := memory.NewStore()
	useCase := PublishArtifactUseCase{
		Authorizer: staticAuthorizer{allowed: true},
		Artifacts:  store,
		Clock:      fixedClock{at: time.Unix(1700000000, 0).UTC()},
	}

	artifact, err := useCase.Execute(context.Background(), PublishArtifactCommand{
		Principal:  publisher(),
		Repository: "team-a",
		Name:       "libfoo",
		Version:    "1.2.3",
		Format:     "npm",
		Checksum:   "abc123",
		SizeBytes:  2048,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if artifact.PublishedBy != publisher().String() {
		t.Fatalf("PublishedBy = %q", artifact.PublishedBy)
	}

	stored, err := store.GetArtifact(context.Background(), "team-a", "libfoo", "1.2.3")
	if err != nil {
		t.Fatalf("GetArtifact: %v", err)
	}
	if stored.Checksum != "abc123" || stored.SizeBytes != 2048 {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestPublishArtifactDeniedByPolicy(t *testing.T) {
	store := memory.NewStore()
	useCase := PublishArtifactUseCase{
		Authorizer: staticAuthorizer{allowed: false, reason: "explicit_forbid_scp"},
		Artifacts:  store,
		Clock:      fixedClock{at: time.Unix(1700000000, 0).UTC()},
	}

	_, err := useCase.Execute(context.Background(), PublishArtifactCommand{
		Principal:  publisher(),
		Repository: "team-a",
		Name:       "libfoo",
		Version:    "1.2.3",
	})
	if !errors.Is(err, domainerrors.ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}
	if _, err := store.GetArtifact(context.Background(), "team-a", "libfoo", "1.2.3"); !errors.Is(err, domainerrors.ErrArtifactNotFound) {
		t.Fatal("denied publish still stored metadata")
	}
}

func TestPublishArtifactRejectsDuplicateVersion(t *testing.T) {
	store := memory.NewStore()
	useCase := PublishArtifactUseCase{
		Authorizer: staticAuthorizer{allowed: true},
		Artifacts:  store,
		Clock:      fixedClock{at: time.Unix(1700000000, 0).UTC()},
	}
	cmd := PublishArtifactCommand{
		Principal:  publisher(),
		Repository: "team-a",
		Name:       "libfoo",
		Version:    "1.2.3",
	}

	if _, err := useCase.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if _, err := useCase.Execute(context.Background(), cmd); !errors.Is(err, domainerrors.ErrArtifactAlreadyExists) {
		t.Fatalf("err = %v, want ErrArtifactAlreadyExists", err)
	}
}

func TestPublishArtifactValidatesCoordinates(t *testing.T) {
	useCase := PublishArtifactUseCase{
		Authorizer: staticAuthorizer{allowed: true},
		Artifacts:  memory.NewStore(),
	}

	_, err := useCase.Execute(context.Background(), PublishArtifactCommand{
		Principal:  publisher(),
		Repository: "team-a",
		Name:       "",
		Version:    "1.0.0",
	})
	if !errors.Is(err, domainerrors.ErrInvalidCoordinates) {
		t.Fatalf("err = %v, want ErrInvalidCoordinates", err)
	}
}
