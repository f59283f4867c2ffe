// Package status exports errors produced by snapshot stores.
package status

import "github.com/toolshed/shedmon/pkg/errors"

var (
	// ErrNotFound indicates that no snapshot exists for a repository at some changeset revision
	ErrNotFound = errors.New("snapshot not found")

	// ErrExists indicates that a snapshot exists already for a repository at some changeset revision
	ErrExists = errors.New("snapshot exists already")

	// ErrInvalid indicates a snapshot which cannot be persisted
	ErrInvalid = errors.New("invalid snapshot")

	// ErrCorrupted indicates a persisted snapshot which cannot be read back
	ErrCorrupted = errors.New("corrupted snapshot")
)
