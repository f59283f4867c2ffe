// Package core reconciles the metadata snapshots of tool shed repositories.
//
// A Reconciler walks the linear history of a repository, oldest revision first. Each revision is materialized
// in a scratch directory and its metadata is generated, then compared with the pending span of compatible revisions.
// Spans are persisted as one snapshot each, citing their most recent revision.
//
// ReconcileAll runs reconciliations for many repositories concurrently.
package core
