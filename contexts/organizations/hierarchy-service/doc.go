// Package hierarchyservice manages the organizational tree: organizational
// units, member accounts, and service control policies attached to either.
// It resolves the effective control-policy set for any node by walking the
// tree to the root, and moves accounts between units atomically through a
// unit-of-work boundary.
package hierarchyservice
