// Package model describes the base objects manipulated by shedmon.
//
// The package exposes a model for repository metadata.
//
// The object model for shedmon is composed of:
//
//	Users:
//	  A tool shed user owns repositories. Repository dependencies refer to repositories by (name, owner).
//
//	Repositories:
//	  A tool shed repository has a linear history of changeset revisions and a type.
//	  Some types (suites, tool dependency definitions) only ever carry metadata on their tip.
//
//	Metadata:
//	  The structural fingerprint of one revision: tools, repository dependencies,
//	  tool dependencies and data managers.
//
//	Snapshots:
//	  A persisted metadata record for one changeset revision. Consecutive revisions with
//	  comparable metadata are collapsed into a single snapshot, citing the latest of them.
package model
