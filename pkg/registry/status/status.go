// Package status exports errors produced by the registry package.
package status

import "github.com/toolshed/shedmon/pkg/errors"

var (
	// ErrUserNotFound indicates that no user is registered with this name
	ErrUserNotFound = errors.New("user not found")

	// ErrRepoNotFound indicates that no repository is registered with this owner and name
	ErrRepoNotFound = errors.New("repository not found")

	// ErrUserExists indicates an attempt to register a user twice
	ErrUserExists = errors.New("user exists already")

	// ErrRepoExists indicates an attempt to register a repository twice
	ErrRepoExists = errors.New("repository exists already")

	// ErrNotLoaded indicates that the catalog index has not been loaded from its store
	ErrNotLoaded = errors.New("catalog not loaded")

	// ErrInvalidTypes indicates a repository type definition file which cannot be used
	ErrInvalidTypes = errors.New("invalid repository types definition")

	// ErrUnknownType indicates a repository declared with an unregistered type
	ErrUnknownType = errors.New("unknown repository type")
)
