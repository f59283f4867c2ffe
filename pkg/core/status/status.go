// Package status exports errors produced by the core package.
package status

import (
	"github.com/toolshed/shedmon/pkg/errors"
)

var (
	// ErrInterrupted signals that the current background processing has been interrupted
	ErrInterrupted = errors.New("background processing interrupted")

	// ErrHistory indicates that the history of a repository could not be retrieved
	ErrHistory = errors.New("cannot retrieve repository history")

	// ErrScratch indicates that no scratch directory could be prepared to materialize a revision
	ErrScratch = errors.New("cannot prepare scratch directory")

	// ErrExtract indicates that metadata could not be extracted from a revision
	ErrExtract = errors.New("cannot extract metadata")

	// ErrPersist indicates that a snapshot could not be persisted: reconciliation is aborted
	ErrPersist = errors.New("cannot persist snapshot")

	// ErrToolVersions indicates that tool versions could not be recomputed
	ErrToolVersions = errors.New("cannot reset tool versions")
)
