package resolver

import (
	"context"
	"fmt"

	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

var _ Resolver = &Install{}

// InstalledLookup tells if a repository is installed locally at some changeset revision
type InstalledLookup interface {
	IsInstalled(ctx context.Context, toolShed, name, owner, changeset string) (bool, error)
}

// InstalledLookupFunc adapts a function to the InstalledLookup interface
type InstalledLookupFunc func(ctx context.Context, toolShed, name, owner, changeset string) (bool, error)

// IsInstalled calls f
func (f InstalledLookupFunc) IsInstalled(ctx context.Context, toolShed, name, owner, changeset string) (bool, error) {
	return f(ctx, toolShed, name, owner, changeset)
}

// Install resolves dependencies declared by repositories being installed
type Install struct {
	installed InstalledLookup
	updating  bool
	l         *zap.Logger
}

// NewInstall builds a resolver for the installing side
func NewInstall(installed InstalledLookup, opts ...InstallOption) *Install {
	i := &Install{
		installed: installed,
		l:         zap.NewNop(),
	}
	for _, apply := range opts {
		apply(i)
	}
	return i
}

// Resolve a repository dependency declaration.
//
// All of tool shed, name, owner and changeset revision are required. A dependency which is not installed
// is invalid, unless an installed repository is being updated: the dependency is then accepted and will
// be installed later.
func (i *Install) Resolve(ctx context.Context, decl model.DependencyTuple) (model.DependencyTuple, bool, error) {
	tuple := normalize(decl)

	if tuple.ToolShed == "" || tuple.Name == "" || tuple.Owner == "" || tuple.ChangesetRevision == "" {
		tuple.Error = fmt.Sprintf(
			"Invalid repository dependency definition: tool shed %s, name %s, owner %s, changeset revision %s.",
			tuple.ToolShed, tuple.Name, tuple.Owner, tuple.ChangesetRevision,
		)
		return tuple, false, nil
	}

	ok, err := i.installed.IsInstalled(ctx, tuple.ToolShed, tuple.Name, tuple.Owner, tuple.ChangesetRevision)
	if err != nil {
		return lookupFailed(ctx, i.l, tuple, "installed repository", err)
	}
	if ok {
		return tuple, true, nil
	}
	if i.updating {
		i.l.Debug("accepting dependency not installed yet", zap.Stringer("dependency", tuple))
		return tuple, true, nil
	}
	return invalid(tuple, "it is not installed")
}
