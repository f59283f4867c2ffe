// Package registry knows about the users and repositories served by a tool shed, and
// about the types of repositories.
//
// Users and repositories are persisted as YAML descriptors in a storage.Store and
// indexed in memory for lookups by owner and name.
package registry
