// Package core defines the shared language of the lkml2cube system.
//
// This package contains:
//   - Semantic-layer entities (Entity, Attribute, Measure, Edge, Explore)
//   - Composite view records produced for Cube views
//   - Diagnostics collected by recoverable conversion steps
//   - Typed errors for the conversion error taxonomy
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
