package entities

import (
	"time"

	"quarry/internal/shared/hrn"
)

// Artifact is the metadata record for one published artifact version.
// Checksum is the hex-encoded SHA-256 of the uploaded bytes.
type Artifact struct {
	Hrn         hrn.Hrn
	ID          string
	Repository  string
	Name        string
	Version     string
	Format      string // npm, maven, oci
	Checksum    string
	SizeBytes   int64
	PublishedBy string
	PublishedAt time.Time
}
