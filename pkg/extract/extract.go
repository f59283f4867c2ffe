package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/resolver"
	"go.uber.org/zap"
)

// Well-known definition files, expected at the root of a repository
const (
	RepositoryDependenciesFile = "repository_dependencies.xml"
	ToolDependenciesFile       = "tool_dependencies.xml"
	DataManagerConfFile        = "data_manager_conf.xml"
)

const maxXMLFileSize = 8 * 1024 * 1024

// Target identifies the repository revision being extracted
type Target struct {
	Repository model.RepoDescriptor

	// Host is the tool shed the repository comes from, used to build guids
	Host string
}

// GUID builds the globally unique identifier of a tool: {host}/repos/{owner}/{repo}/{id}/{version}
func GUID(host, owner, repo, id, version string) string {
	return strings.Join([]string{model.StripProtocol(host), "repos", owner, repo, id, version}, "/")
}

// Extractor computes metadata documents
type Extractor struct {
	resolver resolver.Resolver
	l        *zap.Logger
}

// New builds an extractor, which validates repository dependencies with some resolver
func New(res resolver.Resolver, opts ...Option) *Extractor {
	e := &Extractor{
		resolver: res,
		l:        zap.NewNop(),
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// extraction holds the state of one extraction
type extraction struct {
	fs       afero.Fs
	root     string
	target   Target
	metadata model.Metadata
	invalid  []model.InvalidFile
	tools    map[string]model.ToolRecord // by relative config path
}

func (x *extraction) addInvalid(pth, format string, args ...interface{}) {
	x.invalid = append(x.invalid, model.InvalidFile{Path: pth, Message: fmt.Sprintf(format, args...)})
}

// Extract the metadata from a materialized file tree.
//
// Errors on single files are reported as invalid files. An error is returned only when the tree cannot be
// walked or when dependencies cannot be resolved.
func (e *Extractor) Extract(ctx context.Context, fs afero.Fs, root string, target Target) (model.Metadata, []model.InvalidFile, error) {
	x := &extraction{
		fs:     fs,
		root:   root,
		target: target,
		tools:  make(map[string]model.ToolRecord),
	}

	files, err := xmlFiles(fs, root)
	if err != nil {
		return model.Metadata{}, nil, err
	}

	for _, file := range files {
		switch file {
		case RepositoryDependenciesFile, ToolDependenciesFile, DataManagerConfFile:
			continue
		}
		x.tool(file)
	}

	if err := e.repositoryDependencies(ctx, x); err != nil {
		return model.Metadata{}, nil, err
	}
	if err := e.toolDependencies(ctx, x); err != nil {
		return model.Metadata{}, nil, err
	}
	excluded := x.dataManagers()

	paths := make([]string, 0, len(x.tools))
	for pth := range x.tools {
		if _, isDataManager := excluded[pth]; !isDataManager {
			paths = append(paths, pth)
		}
	}
	sort.Strings(paths)
	for _, pth := range paths {
		x.metadata.Tools = append(x.metadata.Tools, x.tools[pth])
	}

	e.l.Debug("extracted metadata",
		zap.String("repository", target.Repository.FullName()),
		zap.Int("tools", len(x.metadata.Tools)),
		zap.Int("repository_dependencies", len(x.metadata.Dependencies())),
		zap.Int("tool_dependencies", len(x.metadata.ToolDependencies)),
		zap.Int("data_managers", len(x.metadata.DataManagers)),
		zap.Int("invalid_files", len(x.invalid)),
	)
	return x.metadata, x.invalid, nil
}

// xmlFiles lists the slash-separated relative paths of all XML files, skipping hidden directories
func xmlFiles(fs afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if pth != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(pth), ".xml") {
			return nil
		}
		rel, err := filepath.Rel(root, pth)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (x *extraction) read(rel string) ([]byte, error) {
	pth := filepath.Join(x.root, filepath.FromSlash(rel))
	info, err := x.fs.Stat(pth)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxXMLFileSize {
		return nil, fmt.Errorf("file is too large (%d bytes)", info.Size())
	}
	return afero.ReadFile(x.fs, pth)
}

func (x *extraction) exists(rel string) bool {
	ok, _ := afero.Exists(x.fs, filepath.Join(x.root, filepath.FromSlash(rel)))
	return ok
}

func (x *extraction) guid(id, version string) string {
	repo := x.target.Repository
	return GUID(x.target.Host, repo.Owner, repo.Name, id, version)
}
