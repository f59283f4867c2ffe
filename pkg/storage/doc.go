// Package storage provides interface to handle backend storage objects.
//
// Metadata snapshots, repository descriptors and revision trees are all persisted
// as keyed objects. This package supports the following backends:
//   - local file system (or any afero.Fs)
//   - an instrumented decorator, which traces and logs calls to another store
package storage
