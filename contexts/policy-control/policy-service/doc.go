// Package policyservice implements the access-control policy store inside
// Quarry.
//
// Layering:
// - domain: policy/version entities, document and id validation, errors
// - application: commands/queries/workers using explicit ports
// - ports: segregated boundaries (creator, updater, deleter, reader, audit)
// - adapters: concrete memory and postgres implementations
//
// Boundary notes:
// - Every accepted document must parse as a well-formed policy with at least
//   one effect clause; validation runs before any storage round-trip.
// - Duplicate policy ids are a hard conflict, unlike the idempotent type
//   registration in schema-registry.
package policyservice
