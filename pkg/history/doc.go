// Package history provides the linear changeset history of repositories, and knows how to
// materialize the file tree of any revision.
//
// Two providers are available: Git reads the history of a local git clone, Store keeps
// revision trees in an object store.
package history
