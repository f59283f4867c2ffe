// Package status declares the errors returned by object stores.
//
// They live apart from pkg/storage so that store implementations
// may use them without importing their own interface.
package status

import "github.com/toolshed/shedmon/pkg/errors"

var (
	// ErrNotExists is returned when reading or deleting a missing object
	ErrNotExists = errors.New("object doesn't exist")

	// ErrExists is returned by exclusive writes to a key already taken
	ErrExists = errors.New("exists already")

	// ErrObjectTooBig is returned when an object exceeds what may be loaded in memory
	ErrObjectTooBig = errors.New("object too big to be read into memory")

	// ErrInvalidResource is returned for keys a store cannot hold
	ErrInvalidResource = errors.New("invalid storage resource name")
)
