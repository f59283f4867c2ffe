// Package snapshot persists the metadata snapshots of repositories.
//
// At most one snapshot exists for a repository at a given changeset revision.
// Every write is committed on its own.
package snapshot
