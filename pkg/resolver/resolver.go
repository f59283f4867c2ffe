package resolver

import (
	"context"
	"fmt"

	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

// Resolver validates a single repository dependency declaration.
//
// It returns the normalized tuple and whether it is valid. Invalid tuples carry an error message.
type Resolver interface {
	Resolve(context.Context, model.DependencyTuple) (model.DependencyTuple, bool, error)
}

// Catalog knows about the users and repositories served by a tool shed
type Catalog interface {
	GetUser(string) (model.UserDescriptor, error)
	GetRepo(owner, name string) (model.RepoDescriptor, error)
}

// Changelogger retrieves the history of a repository
type Changelogger interface {
	Changelog(context.Context, model.RepoDescriptor) (model.Changelog, error)
}

// normalize strips the protocol from the host and spells flags consistently
func normalize(decl model.DependencyTuple) model.DependencyTuple {
	decl.ToolShed = model.StripProtocol(decl.ToolShed)
	decl.PriorInstallationRequired = model.BoolAsString(decl.IsPriorInstallationRequired())
	decl.OnlyIfCompilingContainedTD = model.BoolAsString(decl.IsOnlyIfCompiling())
	decl.Error = ""
	return decl
}

func invalid(tuple model.DependencyTuple, reason string) (model.DependencyTuple, bool, error) {
	tuple.Error = fmt.Sprintf(
		"Ignoring repository dependency definition for tool shed %s, name %s, owner %s, changeset revision %s because %s.",
		tuple.ToolShed, tuple.Name, tuple.Owner, tuple.ChangesetRevision, reason,
	)
	return tuple, false, nil
}

// lookupFailed turns the failure to look up a dependency into an invalid tuple.
//
// Only the cancellation of ctx is returned as an error: a broken dependency never stops the
// reconciliation of the repository declaring it.
func lookupFailed(ctx context.Context, l *zap.Logger, tuple model.DependencyTuple, what string, err error) (model.DependencyTuple, bool, error) {
	if ctx.Err() != nil {
		return tuple, false, err
	}
	l.Warn("could not look up repository dependency", zap.Stringer("dependency", tuple), zap.Error(err))
	return invalid(tuple, fmt.Sprintf("the %s could not be looked up: %v", what, err))
}
