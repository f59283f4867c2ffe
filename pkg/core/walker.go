package core

import (
	"context"

	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/core/status"
	"github.com/toolshed/shedmon/pkg/history"
	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

// Results of walking a single revision
const (
	revisionSkipped   = "skipped"
	revisionEmpty     = "empty"
	revisionExtracted = "extracted"
)

// visitFunc is called on each revision which could be materialized in dir.
//
// The terminal flag is set on the last revision of the walk.
type visitFunc func(index int, revision model.Revision, dir string, terminal bool) error

// walker visits the revisions of a repository, oldest first.
//
// Each revision is materialized in a fresh scratch directory, removed before the next revision is visited.
type walker struct {
	history history.Provider
	fs      afero.Fs
	dir     string
	l       *zap.Logger
}

func newWalker(provider history.Provider, s Settings) *walker {
	return &walker{
		history: provider,
		fs:      s.scratchFs,
		dir:     s.scratchDir,
		l:       s.l,
	}
}

// walk the revisions. Revisions which fail to materialize are skipped and reported.
//
// An error returned by visit aborts the walk.
func (w *walker) walk(ctx context.Context, repo model.RepoDescriptor, revisions model.Changelog, visit visitFunc) ([]model.Revision, error) {
	var skipped []model.Revision

	for i, revision := range revisions {
		// a revision being visited always completes: interruptions are checked between revisions
		if err := ctx.Err(); err != nil {
			return skipped, status.ErrInterrupted.Wrap(err)
		}
		terminal := i == len(revisions)-1

		ok, err := w.visit(ctx, repo, i, revision, terminal, visit)
		if err != nil {
			return skipped, err
		}
		if !ok {
			skipped = append(skipped, revision)
		}
	}
	return skipped, nil
}

func (w *walker) visit(ctx context.Context, repo model.RepoDescriptor, index int, revision model.Revision, terminal bool, visit visitFunc) (bool, error) {
	if w.dir != "" {
		if err := w.fs.MkdirAll(w.dir, 0700); err != nil {
			return false, status.ErrScratch.Wrap(err)
		}
	}
	dir, err := afero.TempDir(w.fs, w.dir, "shedmon-")
	if err != nil {
		return false, status.ErrScratch.Wrap(err)
	}

	defer func() {
		if erm := w.fs.RemoveAll(dir); erm != nil {
			w.l.Warn("could not remove scratch directory", zap.String("dir", dir), zap.Error(erm))
		}
	}()

	if err = w.history.Materialize(ctx, repo, revision, w.fs, dir); err != nil {
		w.l.Warn("skipping revision which could not be materialized",
			zap.String("repository", repo.FullName()),
			zap.Stringer("changeset", revision),
			zap.Error(err),
		)
		return false, nil
	}

	return true, visit(index, revision, dir, terminal)
}
