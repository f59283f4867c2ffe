package history

import (
	"context"

	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/model"
)

// Provider of repository histories
type Provider interface {
	// Changelog lists the revisions of a repository, oldest first
	Changelog(context.Context, model.RepoDescriptor) (model.Changelog, error)

	// Materialize writes the file tree of a revision under some destination directory
	Materialize(ctx context.Context, repo model.RepoDescriptor, revision model.Revision, fs afero.Fs, dest string) error
}

var (
	_ Provider = &Router{}
	_ Provider = &Git{}
	_ Provider = &Store{}
)

// Router serves repositories with a local clone from git, and all other repositories from a store
type Router struct {
	git   Provider
	store Provider
}

// NewRouter builds a provider which picks git or the store, depending on the repository
func NewRouter(git, store Provider) *Router {
	return &Router{git: git, store: store}
}

func (r *Router) pick(repo model.RepoDescriptor) Provider {
	if repo.Path != "" {
		return r.git
	}
	return r.store
}

// Changelog of a repository
func (r *Router) Changelog(ctx context.Context, repo model.RepoDescriptor) (model.Changelog, error) {
	return r.pick(repo).Changelog(ctx, repo)
}

// Materialize a revision of a repository
func (r *Router) Materialize(ctx context.Context, repo model.RepoDescriptor, revision model.Revision, fs afero.Fs, dest string) error {
	return r.pick(repo).Materialize(ctx, repo, revision, fs, dest)
}
