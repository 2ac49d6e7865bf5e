package httptransport

import "time"

// BuildSchemaRequest configures one schema build.
type BuildSchemaRequest struct {
	Version  string `json:"version,omitempty"`
	Validate bool   `json:"validate"`
}

// BuildSchemaResponse reports what a build produced.
type BuildSchemaResponse struct {
	SchemaID    string `json:"schema_id"`
	Version     string `json:"version"`
	EntityCount int    `json:"entity_count"`
	ActionCount int    `json:"action_count"`
}

// SchemaResponse is one persisted schema artifact.
type SchemaResponse struct {
	SchemaID    string    `json:"schema_id"`
	Version     string    `json:"version"`
	EntityCount int       `json:"entity_count"`
	ActionCount int       `json:"action_count"`
	Content     string    `json:"content"`
	BuiltAt     time.Time `json:"built_at"`
}

// ListSchemaVersionsResponse lists persisted schema versions.
type ListSchemaVersionsResponse struct {
	Versions []string `json:"versions"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
