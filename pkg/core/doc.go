// Package core defines the shared language of the scriptdeps system.
//
// This package contains:
//   - Domain entities (ScriptRecord, Dataset, Block, Metadata)
//   - The renderer protocol (Snapshot, Relations, Event, EventSink)
//   - Collaborator contracts (PathProvider)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
