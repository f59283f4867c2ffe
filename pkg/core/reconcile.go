package core

import (
	"context"
	"time"

	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/compare"
	"github.com/toolshed/shedmon/pkg/core/status"
	"github.com/toolshed/shedmon/pkg/history"
	"github.com/toolshed/shedmon/pkg/metrics"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/registry"
	"github.com/toolshed/shedmon/pkg/snapshot"
	"go.uber.org/zap"
)

// TipOnlyTypes tells which repository types only ever track their tip revision
type TipOnlyTypes interface {
	IsTipOnly(repoType string) bool
}

// Reconciler maintains the metadata snapshots of repositories.
//
// Reconciling one repository is sequential. Two reconciliations of the same repository must not run concurrently.
type Reconciler struct {
	history    history.Provider
	generator  MetadataGenerator
	comparator *compare.Comparator
	snapshots  snapshot.Store
	types      TipOnlyTypes
	settings   Settings
}

// NewReconciler builds a reconciler. When types is nil, the default repository types are assumed.
func NewReconciler(provider history.Provider, generator MetadataGenerator, comparator *compare.Comparator, snapshots snapshot.Store, types TipOnlyTypes, opts ...Option) *Reconciler {
	if types == nil {
		types = registry.DefaultTypes()
	}
	if comparator == nil {
		comparator = compare.New()
	}
	return &Reconciler{
		history:    provider,
		generator:  generator,
		comparator: comparator,
		snapshots:  snapshots,
		types:      types,
		settings:   newSettings(opts),
	}
}

// Result of the reconciliation of a repository
type Result struct {
	Repository model.RepoDescriptor `json:"repository" yaml:"repository"`

	// InvalidFiles found while extracting metadata, in history order
	InvalidFiles []model.InvalidFile `json:"invalid_files,omitempty" yaml:"invalid_files,omitempty"`

	// Flushed lists the changeset revisions which hold a snapshot after the reconciliation, in history order
	Flushed []string `json:"flushed,omitempty" yaml:"flushed,omitempty"`

	// Deleted lists the changeset revisions whose snapshot has been removed
	Deleted []string `json:"deleted,omitempty" yaml:"deleted,omitempty"`

	// Skipped lists the changeset revisions which could not be materialized
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	Created  int           `json:"created" yaml:"created"`
	Updated  int           `json:"updated" yaml:"updated"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// span of compatible revisions, represented by its most recent revision
type span struct {
	start    int // index of the revision which opened the span
	index    int // index of the representative revision
	revision model.Revision
	metadata model.Metadata
}

// reconciliation holds the state of one walk
type reconciliation struct {
	*Reconciler
	ctx       context.Context
	fs        afero.Fs
	repo      model.RepoDescriptor
	revisions model.Changelog
	existing  map[string]model.SnapshotDescriptor
	pending   *span
	result    *Result
	l         *zap.Logger
}

// Reconcile walks the history of a repository and maintains its metadata snapshots.
//
// Each span of revisions with compatible metadata is persisted as one snapshot, citing the most recent
// revision of the span. Snapshots which do not correspond to any span are then deleted, and the tool versions
// of all downloadable revisions are recomputed.
//
// Revisions which cannot be materialized are skipped. Persistence errors abort the reconciliation.
func (r *Reconciler) Reconcile(ctx context.Context, repo model.RepoDescriptor) (res *Result, err error) {
	done := r.settings.startRun()
	defer func() { done(err) }()

	start := time.Now()
	l := r.settings.l.With(zap.String("repository", repo.FullName()))

	changelog, err := r.history.Changelog(ctx, repo)
	if err != nil {
		return nil, status.ErrHistory.Wrap(err)
	}
	revisions := r.revisionsToWalk(repo, changelog)

	persisted, err := r.snapshots.List(ctx, repo.ID)
	if err != nil {
		return nil, status.ErrPersist.Wrap(err)
	}

	rc := &reconciliation{
		Reconciler: r,
		ctx:        ctx,
		fs:         r.settings.scratchFs,
		repo:       repo,
		revisions:  revisions,
		existing:   make(map[string]model.SnapshotDescriptor, len(persisted)),
		result:     &Result{Repository: repo},
		l:          l,
	}
	for _, sd := range persisted {
		rc.existing[sd.ChangesetRevision] = sd
	}
	defer func() {
		rc.result.Duration = time.Since(start)
	}()

	l.Debug("reconciling repository", zap.Int("revisions", len(revisions)), zap.Int("snapshots", len(persisted)))

	skipped, err := newWalker(r.history, r.settings).walk(ctx, repo, revisions, rc.visit)
	for _, revision := range skipped {
		r.settings.observeRevision(revisionSkipped)
		rc.result.Skipped = append(rc.result.Skipped, revision.ID)
	}
	if err != nil {
		return rc.result, err
	}

	if rc.pending != nil {
		// the terminal revision could not be materialized
		if err = rc.flush(); err != nil {
			return rc.result, err
		}
	}

	if len(revisions) > 0 && len(skipped) == len(revisions) {
		l.Warn("no revision could be materialized: existing snapshots are left untouched")
		return rc.result, nil
	}

	if err = rc.cleanup(); err != nil {
		return rc.result, err
	}

	if err = r.resetToolVersions(ctx, repo, changelog); err != nil {
		return rc.result, err
	}

	l.Info("reconciled repository",
		zap.Strings("flushed", rc.result.Flushed),
		zap.Int("created", rc.result.Created),
		zap.Int("updated", rc.result.Updated),
		zap.Int("deleted", len(rc.result.Deleted)),
		zap.Int("skipped", len(rc.result.Skipped)),
		zap.Int("invalid_files", len(rc.result.InvalidFiles)),
	)
	return rc.result, nil
}

// revisionsToWalk restricts the history of tip-only repositories to their tip
func (r *Reconciler) revisionsToWalk(repo model.RepoDescriptor, changelog model.Changelog) model.Changelog {
	if !r.types.IsTipOnly(repo.Type) {
		return changelog
	}
	tip, ok := changelog.Tip()
	if !ok {
		return changelog
	}
	return model.Changelog{tip}
}

func (rc *reconciliation) visit(index int, revision model.Revision, dir string, terminal bool) error {
	metadata, invalid, err := rc.generator.Generate(rc.ctx, rc.fs, dir, rc.repo, revision.ID)
	if err != nil {
		return status.ErrExtract.Wrapf("changeset %s: %v", revision.ID, err)
	}

	for _, file := range invalid {
		file.Changeset = revision.ID
		rc.result.InvalidFiles = append(rc.result.InvalidFiles, file)
	}
	rc.settings.observeInvalidFiles(len(invalid))

	if metadata.IsEmpty() {
		rc.settings.observeRevision(revisionEmpty)
		if terminal && rc.pending != nil {
			return rc.flush()
		}
		return nil
	}
	rc.settings.observeRevision(revisionExtracted)

	current := &span{start: index, index: index, revision: revision, metadata: metadata}

	switch {
	case rc.pending == nil:
		rc.pending = current

	default:
		comparison := rc.comparator.Compare(rc.pending.metadata, metadata)
		rc.settings.observeComparison(comparison)
		rc.l.Debug("compared revision with pending span",
			zap.Stringer("ancestor", rc.pending.revision),
			zap.Stringer("changeset", revision),
			zap.Stringer("comparison", comparison),
		)

		if comparison.ExtendsSpan() {
			rc.pending.index = index
			rc.pending.revision = revision
			rc.pending.metadata = metadata
			break
		}

		if err := rc.flush(); err != nil {
			return err
		}
		rc.pending = current
	}

	if terminal {
		return rc.flush()
	}
	return nil
}

// flush persists the pending span.
//
// A snapshot found at the representative revision is updated. Otherwise, a snapshot found at an older revision
// of the span is moved forward, keeping its identity. A new snapshot is created only when the span holds none.
func (rc *reconciliation) flush() error {
	pending := rc.pending
	rc.pending = nil
	changeset := pending.revision.ID

	var err error
	sd, found := rc.existing[changeset]
	from := changeset
	if !found {
		sd, found = rc.withinSpan(pending)
		from = sd.ChangesetRevision
	}

	switch {
	case found:
		delete(rc.existing, from)
		sd.ChangesetRevision = changeset
		sd.SetMetadata(pending.metadata)
		if err = rc.snapshots.Update(rc.ctx, from, sd); err != nil {
			return status.ErrPersist.Wrapf("updating snapshot at %s: %v", from, err)
		}
		rc.result.Updated++
		rc.settings.observeSnapshot(metrics.OpUpdate)
		rc.l.Debug("updated snapshot", zap.String("from", from), zap.Stringer("changeset", pending.revision))

	default:
		sd = *model.NewSnapshotDescriptor(
			model.SnapshotRepository(rc.repo.ID),
			model.SnapshotChangeset(changeset),
			model.SnapshotMetadata(pending.metadata),
		)
		if err = rc.snapshots.Create(rc.ctx, sd); err != nil {
			return status.ErrPersist.Wrapf("creating snapshot at %s: %v", changeset, err)
		}
		rc.result.Created++
		rc.settings.observeSnapshot(metrics.OpCreate)
		rc.l.Debug("created snapshot", zap.Stringer("changeset", pending.revision))
	}

	rc.result.Flushed = append(rc.result.Flushed, changeset)
	return nil
}

// withinSpan finds the most recent snapshot persisted for an older revision of a span
func (rc *reconciliation) withinSpan(pending *span) (model.SnapshotDescriptor, bool) {
	for i := pending.index - 1; i >= pending.start; i-- {
		if sd, ok := rc.existing[rc.revisions[i].ID]; ok {
			return sd, true
		}
	}
	return model.SnapshotDescriptor{}, false
}

// cleanup deletes all snapshots which have not been flushed by this walk
func (rc *reconciliation) cleanup() error {
	persisted, err := rc.snapshots.List(rc.ctx, rc.repo.ID)
	if err != nil {
		return status.ErrPersist.Wrap(err)
	}

	flushed := make(map[string]struct{}, len(rc.result.Flushed))
	for _, changeset := range rc.result.Flushed {
		flushed[changeset] = struct{}{}
	}

	for _, sd := range persisted {
		if _, ok := flushed[sd.ChangesetRevision]; ok {
			continue
		}
		if err := rc.snapshots.Delete(rc.ctx, rc.repo.ID, sd.ChangesetRevision); err != nil {
			return status.ErrPersist.Wrapf("deleting snapshot at %s: %v", sd.ChangesetRevision, err)
		}
		rc.result.Deleted = append(rc.result.Deleted, sd.ChangesetRevision)
		rc.settings.observeSnapshot(metrics.OpDelete)
		rc.l.Debug("deleted orphaned snapshot", zap.String("changeset", sd.ChangesetRevision))
	}
	return nil
}
