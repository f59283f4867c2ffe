package resolver

import (
	"context"
	"fmt"

	"github.com/toolshed/shedmon/pkg/errors"
	"github.com/toolshed/shedmon/pkg/model"
	registrystatus "github.com/toolshed/shedmon/pkg/registry/status"
	"go.uber.org/zap"
)

var _ Resolver = &Shed{}

// Shed resolves dependencies declared by repositories hosted on the serving tool shed
type Shed struct {
	host    string
	catalog Catalog
	history Changelogger
	l       *zap.Logger
}

// NewShed builds a resolver for the tool shed serving host
func NewShed(host string, catalog Catalog, history Changelogger, opts ...ShedOption) *Shed {
	s := &Shed{
		host:    model.StripProtocol(host),
		catalog: catalog,
		history: history,
		l:       zap.NewNop(),
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// Host served by this tool shed, without protocol
func (s *Shed) Host() string {
	return s.host
}

// Resolve a repository dependency declaration.
//
// Dependencies are supported only within the serving tool shed. An omitted changeset revision stands
// for the tip of the repository, provided it has some history.
func (s *Shed) Resolve(ctx context.Context, decl model.DependencyTuple) (model.DependencyTuple, bool, error) {
	tuple := normalize(decl)
	if tuple.ToolShed == "" {
		tuple.ToolShed = s.host
	}

	if tuple.ToolShed != s.host {
		tuple.Error = fmt.Sprintf(
			"Repository dependencies are currently supported only within the same tool shed. "+
				"Ignoring repository dependency definition for tool shed %s, name %s, owner %s, changeset revision %s.",
			tuple.ToolShed, tuple.Name, tuple.Owner, tuple.ChangesetRevision,
		)
		return tuple, false, nil
	}

	if _, err := s.catalog.GetUser(tuple.Owner); err != nil {
		if errors.Is(err, registrystatus.ErrUserNotFound) {
			return invalid(tuple, "the owner is invalid")
		}
		return lookupFailed(ctx, s.l, tuple, "owner", err)
	}

	repo, err := s.catalog.GetRepo(tuple.Owner, tuple.Name)
	if err != nil {
		if errors.Is(err, registrystatus.ErrRepoNotFound) {
			return invalid(tuple, "the name is invalid")
		}
		return lookupFailed(ctx, s.l, tuple, "repository", err)
	}

	changelog, err := s.history.Changelog(ctx, repo)
	if err != nil {
		return lookupFailed(ctx, s.l, tuple, "history of the repository", err)
	}

	if tuple.ChangesetRevision == "" {
		if tip, ok := changelog.Tip(); ok {
			// omitting the revision allows circular dependencies on the tip
			tuple.ChangesetRevision = tip.ID
			s.l.Debug("defaulted dependency to tip", zap.Stringer("dependency", tuple))
			return tuple, true, nil
		}
	}

	if !changelog.Contains(tuple.ChangesetRevision) {
		return invalid(tuple, "the changeset revision is invalid")
	}
	return tuple, true, nil
}
