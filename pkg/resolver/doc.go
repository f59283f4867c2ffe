// Package resolver validates repository dependency declarations.
//
// Two resolvers are provided. Shed validates declarations authored in repositories served by a tool shed,
// against its catalog and the history of the repositories. Install validates declarations encountered while
// installing repositories, against what is installed locally.
//
// Resolvers never fail on invalid declarations: the normalized tuple carries an explanation in its error slot.
// Errors are only returned on infrastructure failures.
package resolver
