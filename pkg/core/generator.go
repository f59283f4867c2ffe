package core

import (
	"context"
	"errors"

	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/extract"
	"github.com/toolshed/shedmon/pkg/model"
	registrystatus "github.com/toolshed/shedmon/pkg/registry/status"
	"github.com/toolshed/shedmon/pkg/resolver"
	"github.com/toolshed/shedmon/pkg/snapshot"
	snapshotstatus "github.com/toolshed/shedmon/pkg/snapshot/status"
	"go.uber.org/zap"
)

// MetadataGenerator extracts the metadata of a materialized revision.
//
// There is one implementation per hosting context: the tool shed which serves repositories,
// and the installing side which consumes them.
type MetadataGenerator interface {
	Generate(ctx context.Context, fs afero.Fs, dir string, repo model.RepoDescriptor, changeset string) (model.Metadata, []model.InvalidFile, error)
}

var (
	_ MetadataGenerator = &ShedGenerator{}
	_ MetadataGenerator = &InstallGenerator{}
)

// ShedGenerator generates metadata on the tool shed serving repositories.
//
// Tool guids are built on the serving host.
type ShedGenerator struct {
	host      string
	extractor *extract.Extractor
}

// NewShedGenerator builds a metadata generator for the tool shed serving host.
//
// Repository dependencies are resolved against the catalog of the tool shed and the histories of its repositories.
func NewShedGenerator(host string, catalog resolver.Catalog, history resolver.Changelogger, opts ...Option) *ShedGenerator {
	s := newSettings(opts)
	res := resolver.NewShed(host, catalog, history, resolver.ShedLogger(s.l))

	return &ShedGenerator{
		host:      res.Host(),
		extractor: extract.New(res, extract.WithLogger(s.l)),
	}
}

// Generate metadata for a revision of a repository hosted on this tool shed
func (g *ShedGenerator) Generate(ctx context.Context, fs afero.Fs, dir string, repo model.RepoDescriptor, _ string) (model.Metadata, []model.InvalidFile, error) {
	return g.extractor.Extract(ctx, fs, dir, extract.Target{Repository: repo, Host: g.host})
}

// InstallGenerator generates metadata for repositories installed from some tool shed.
//
// Tool guids are built on the tool shed the repository was installed from.
type InstallGenerator struct {
	extractor *extract.Extractor
}

// NewInstallGenerator builds a metadata generator for the installing side.
//
// When updating is set, repository dependencies which are not installed yet are accepted.
func NewInstallGenerator(installed resolver.InstalledLookup, updating bool, opts ...Option) *InstallGenerator {
	s := newSettings(opts)
	res := resolver.NewInstall(installed, resolver.InstallLogger(s.l), resolver.Updating(updating))

	return &InstallGenerator{
		extractor: extract.New(res, extract.WithLogger(s.l)),
	}
}

// Generate metadata for a revision of an installed repository
func (g *InstallGenerator) Generate(ctx context.Context, fs afero.Fs, dir string, repo model.RepoDescriptor, _ string) (model.Metadata, []model.InvalidFile, error) {
	return g.extractor.Extract(ctx, fs, dir, extract.Target{Repository: repo, Host: repo.ToolShed})
}

// repoFinder finds repositories by owner and name
type repoFinder interface {
	GetRepo(owner, name string) (model.RepoDescriptor, error)
}

// InstalledRepositories knows that a repository is installed at some changeset revision whenever
// the catalog holds it and a snapshot exists at this revision
type InstalledRepositories struct {
	catalog   repoFinder
	snapshots snapshot.Store
	l         *zap.Logger
}

var _ resolver.InstalledLookup = &InstalledRepositories{}

// NewInstalledRepositories builds a lookup for installed repositories
func NewInstalledRepositories(catalog repoFinder, snapshots snapshot.Store, opts ...Option) *InstalledRepositories {
	s := newSettings(opts)
	return &InstalledRepositories{
		catalog:   catalog,
		snapshots: snapshots,
		l:         s.l,
	}
}

// IsInstalled tells if a repository is installed at some changeset revision
func (i *InstalledRepositories) IsInstalled(ctx context.Context, toolShed, name, owner, changeset string) (bool, error) {
	repo, err := i.catalog.GetRepo(owner, name)
	if err != nil {
		if errors.Is(err, registrystatus.ErrRepoNotFound) {
			return false, nil
		}
		return false, err
	}
	if repo.ToolShed != "" && model.StripProtocol(repo.ToolShed) != model.StripProtocol(toolShed) {
		i.l.Debug("repository installed from another tool shed",
			zap.String("repository", repo.FullName()),
			zap.String("toolshed", repo.ToolShed),
			zap.String("expected", toolShed),
		)
		return false, nil
	}

	_, err = i.snapshots.Find(ctx, repo.ID, changeset)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, snapshotstatus.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
