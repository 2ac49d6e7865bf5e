// Package schemaregistry implements the authorization schema registry inside
// Quarry.
//
// Layering:
// - domain: declaration entities, the schema accumulator, sentinel errors
// - application: commands/queries using explicit ports
// - ports: stable boundaries for schema persistence
// - adapters: concrete memory and postgres implementations
//
// Boundary notes:
// - Each bounded context registers its entity/action types here at
//   composition time; a build drains the accumulator into one immutable
//   schema artifact.
// - Do not import other context adapters into domain/application.
package schemaregistry
