package httptransport

import "time"

// PublishArtifactRequest records one artifact version's metadata.
type PublishArtifactRequest struct {
	Repository string `json:"repository"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	Format     string `json:"format,omitempty"`
	Checksum   string `json:"checksum,omitempty"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`
}

// ArtifactResponse describes one stored artifact version.
type ArtifactResponse struct {
	Hrn         string    `json:"hrn"`
	ArtifactID  string    `json:"artifact_id"`
	Repository  string    `json:"repository"`
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Format      string    `json:"format,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	PublishedBy string    `json:"published_by"`
	PublishedAt time.Time `json:"published_at"`
}

// ListArtifactsResponse wraps one repository listing.
type ListArtifactsResponse struct {
	Repository string             `json:"repository"`
	Artifacts  []ArtifactResponse `json:"artifacts"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
