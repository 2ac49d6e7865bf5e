// Package artifactservice manages artifact metadata for tenant repositories
// and is the platform's consumer of the decision engine: every publish and
// fetch is authorized before it touches storage. Byte storage itself lives
// behind other services.
package artifactservice
