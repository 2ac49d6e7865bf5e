package ports

import (
	"context"
	"time"

	"quarry/contexts/policy-control/schema-registry/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts schema artifact id generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// SchemaStorage persists immutable schema artifacts. Implementations must
// treat (version) as unique and return the storage-assigned schema id.
type SchemaStorage interface {
	SaveSchema(ctx context.Context, schema entities.Schema) (string, error)
	GetLatestSchema(ctx context.Context) (entities.Schema, error)
	GetSchemaByVersion(ctx context.Context, version string) (entities.Schema, error)
	DeleteSchema(ctx context.Context, schemaID string) error
	ListSchemaVersions(ctx context.Context) ([]string, error)
}
