package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/toolshed/shedmon/pkg/core/status"
	"github.com/toolshed/shedmon/pkg/model"
)

func TestReconcileSpans(t *testing.T) {
	empty := model.Metadata{}

	for _, toPin := range []struct {
		Name      string
		Sequence  []model.Metadata
		Flushed   []string
		Snapshots map[string][]string // changeset -> tool ids
	}{
		{
			Name:      "monotonic growth collapses to the terminal revision",
			Sequence:  []model.Metadata{empty, withTools("cat1"), withTools("cat1"), withTools("cat1", "cat2")},
			Flushed:   []string{"c4"},
			Snapshots: map[string][]string{"c4": {"cat1", "cat2"}},
		},
		{
			Name:      "equal metadata collapses to the last revision",
			Sequence:  []model.Metadata{withTools("cat1"), withTools("cat1"), withTools("cat1")},
			Flushed:   []string{"c3"},
			Snapshots: map[string][]string{"c3": {"cat1"}},
		},
		{
			Name:      "divergence forks",
			Sequence:  []model.Metadata{withTools("cat1"), withTools("cat2")},
			Flushed:   []string{"c1", "c2"},
			Snapshots: map[string][]string{"c1": {"cat1"}, "c2": {"cat2"}},
		},
		{
			Name:      "divergence then equal",
			Sequence:  []model.Metadata{withTools("cat1"), withTools("cat2"), withTools("cat2")},
			Flushed:   []string{"c1", "c3"},
			Snapshots: map[string][]string{"c1": {"cat1"}, "c3": {"cat2"}},
		},
		{
			Name:      "empty terminal revision flushes the pending span",
			Sequence:  []model.Metadata{withTools("cat1"), withTools("cat1"), empty},
			Flushed:   []string{"c2"},
			Snapshots: map[string][]string{"c2": {"cat1"}},
		},
		{
			Name:      "empty revisions within a span are ignored",
			Sequence:  []model.Metadata{withTools("cat1"), empty, withTools("cat1", "cat2")},
			Flushed:   []string{"c3"},
			Snapshots: map[string][]string{"c3": {"cat1", "cat2"}},
		},
		{
			Name:      "no metadata at all",
			Sequence:  []model.Metadata{empty, empty},
			Snapshots: map[string][]string{},
		},
		{
			Name:      "single revision",
			Sequence:  []model.Metadata{withTools("cat1")},
			Flushed:   []string{"c1"},
			Snapshots: map[string][]string{"c1": {"cat1"}},
		},
	} {
		tt := toPin

		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()

			store := newSnapshotStore()
			provider := &fakeHistory{changelog: changelogOf(len(tt.Sequence))}
			reconciler := newTestReconciler(provider, newStubGenerator(tt.Sequence...), store)

			result, err := reconciler.Reconcile(context.Background(), testRepo)
			require.NoError(t, err)
			assert.Equal(t, tt.Flushed, result.Flushed)
			assert.Equal(t, len(tt.Flushed), result.Created)
			assert.Zero(t, result.Updated)
			assert.Empty(t, result.Deleted)
			assert.Empty(t, result.Skipped)

			snapshots := snapshotsByChangeset(t, store, testRepo.ID)
			require.Len(t, snapshots, len(tt.Snapshots))
			for changeset, ids := range tt.Snapshots {
				sd, ok := snapshots[changeset]
				require.Truef(t, ok, "expected a snapshot at %s", changeset)
				assert.ElementsMatch(t, ids, toolIDs(sd.Metadata))
				assert.True(t, sd.Downloadable)
				assert.True(t, sd.IncludesTools)
			}
		})
	}
}

func TestReconcileSubsetUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	provider := &fakeHistory{changelog: changelogOf(1)}
	generator := newStubGenerator(withTools("cat1"), withTools("cat1", "cat2"))
	reconciler := newTestReconciler(provider, generator, store)

	result, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	require.Equal(t, []string{"c1"}, result.Flushed)
	first := snapshotsByChangeset(t, store, testRepo.ID)["c1"]

	provider.grow(2)
	result, err = reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, result.Flushed)
	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Deleted)

	snapshots := snapshotsByChangeset(t, store, testRepo.ID)
	require.Len(t, snapshots, 1)
	moved, ok := snapshots["c2"]
	require.True(t, ok)
	assert.Equal(t, first.ID, moved.ID)
	assert.ElementsMatch(t, []string{"cat1", "cat2"}, toolIDs(moved.Metadata))
}

func TestReconcileDivergencePreservesAncestor(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	provider := &fakeHistory{changelog: changelogOf(1)}
	generator := newStubGenerator(withTools("cat1"), withTools("cat2"))
	reconciler := newTestReconciler(provider, generator, store)

	_, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	first := snapshotsByChangeset(t, store, testRepo.ID)["c1"]

	provider.grow(2)
	result, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, result.Flushed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	snapshots := snapshotsByChangeset(t, store, testRepo.ID)
	require.Len(t, snapshots, 2)
	assert.Equal(t, first.ID, snapshots["c1"].ID)
	assert.Equal(t, []string{"cat1"}, toolIDs(snapshots["c1"].Metadata))
	assert.Equal(t, []string{"cat2"}, toolIDs(snapshots["c2"].Metadata))
}

func TestReconcileIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	provider := &fakeHistory{changelog: changelogOf(5)}
	generator := newStubGenerator(
		withTools("cat1"), withTools("cat1", "cat2"), withTools("cat3"), model.Metadata{}, withTools("cat3"),
	)
	reconciler := newTestReconciler(provider, generator, store)

	first, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	before := snapshotsByChangeset(t, store, testRepo.ID)

	second, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	after := snapshotsByChangeset(t, store, testRepo.ID)

	assert.Equal(t, first.Flushed, second.Flushed)
	assert.Equal(t, []string{"c2", "c5"}, second.Flushed)
	assert.Zero(t, second.Created)
	assert.Empty(t, second.Deleted)
	require.Len(t, after, len(before))
	for changeset, sd := range before {
		assert.Equal(t, sd.ID, after[changeset].ID)
	}
}

func TestReconcileDeletesOrphans(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()

	orphan := *model.NewSnapshotDescriptor(
		model.SnapshotRepository(testRepo.ID),
		model.SnapshotChangeset("gone"),
		model.SnapshotMetadata(withTools("cat0")),
	)
	require.NoError(t, store.Create(ctx, orphan))
	stale := *model.NewSnapshotDescriptor(
		model.SnapshotRepository(testRepo.ID),
		model.SnapshotChangeset("c1"),
		model.SnapshotMetadata(withTools("cat1")),
	)
	require.NoError(t, store.Create(ctx, stale))

	provider := &fakeHistory{changelog: changelogOf(3)}
	generator := newStubGenerator(withTools("cat1"), withTools("cat2"), withTools("cat2"))
	reconciler := newTestReconciler(provider, generator, store)

	result, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3"}, result.Flushed)
	assert.Equal(t, []string{"gone"}, result.Deleted)

	snapshots := snapshotsByChangeset(t, store, testRepo.ID)
	assert.Len(t, snapshots, 2)
	assert.Equal(t, stale.ID, snapshots["c1"].ID)
}

func TestReconcileEmptyHistory(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	require.NoError(t, store.Create(ctx, *model.NewSnapshotDescriptor(
		model.SnapshotRepository(testRepo.ID),
		model.SnapshotChangeset("c1"),
		model.SnapshotMetadata(withTools("cat1")),
	)))

	reconciler := newTestReconciler(&fakeHistory{}, newStubGenerator(), store)
	result, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	assert.Empty(t, result.Flushed)
	assert.Equal(t, []string{"c1"}, result.Deleted)
	assert.Empty(t, snapshotsByChangeset(t, store, testRepo.ID))
}

func TestReconcileMaterializationFailures(t *testing.T) {
	for _, toPin := range []struct {
		Name     string
		Sequence []model.Metadata
		Failing  []string
		Flushed  []string
		Skipped  []string
	}{
		{
			Name:     "failed revision is skipped",
			Sequence: []model.Metadata{withTools("cat1"), withTools("cat2"), withTools("cat1", "cat3")},
			Failing:  []string{"c2"},
			Flushed:  []string{"c3"},
			Skipped:  []string{"c2"},
		},
		{
			Name:     "failed terminal revision flushes the pending span",
			Sequence: []model.Metadata{withTools("cat1"), withTools("cat2"), withTools("cat3")},
			Failing:  []string{"c3"},
			Flushed:  []string{"c1", "c2"},
			Skipped:  []string{"c3"},
		},
		{
			Name:     "failed first revision",
			Sequence: []model.Metadata{withTools("cat1"), withTools("cat2")},
			Failing:  []string{"c1"},
			Flushed:  []string{"c2"},
			Skipped:  []string{"c1"},
		},
	} {
		tt := toPin

		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()

			failing := make(map[string]bool, len(tt.Failing))
			for _, changeset := range tt.Failing {
				failing[changeset] = true
			}
			provider := &fakeHistory{changelog: changelogOf(len(tt.Sequence)), failing: failing}
			store := newSnapshotStore()
			generator := newStubGenerator(tt.Sequence...)
			reconciler := newTestReconciler(provider, generator, store)

			result, err := reconciler.Reconcile(context.Background(), testRepo)
			require.NoError(t, err)
			assert.Equal(t, tt.Flushed, result.Flushed)
			assert.Equal(t, tt.Skipped, result.Skipped)
			assert.ElementsMatch(t, tt.Flushed, persistedChangesets(t, store, testRepo.ID))
			for _, changeset := range tt.Failing {
				assert.NotContains(t, generator.calls, changeset)
			}
		})
	}
}

func TestReconcileNothingMaterialized(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	require.NoError(t, store.Create(ctx, *model.NewSnapshotDescriptor(
		model.SnapshotRepository(testRepo.ID),
		model.SnapshotChangeset("c2"),
		model.SnapshotMetadata(withTools("cat1")),
	)))

	provider := &historyMock{}
	provider.On("Changelog", mock.Anything, testRepo).Return(changelogOf(2), nil)
	provider.On("Materialize", mock.Anything, testRepo, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("remote unreachable"))

	reconciler := newTestReconciler(provider, newStubGenerator(), store)
	result, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, result.Skipped)
	assert.Empty(t, result.Deleted)
	assert.Len(t, snapshotsByChangeset(t, store, testRepo.ID), 1)
	provider.AssertNumberOfCalls(t, "Materialize", 2)
}

func TestReconcileHistoryError(t *testing.T) {
	provider := &historyMock{}
	provider.On("Changelog", mock.Anything, testRepo).Return(nil, errors.New("not a repository"))

	reconciler := newTestReconciler(provider, newStubGenerator(), newSnapshotStore())
	_, err := reconciler.Reconcile(context.Background(), testRepo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrHistory))
	provider.AssertNotCalled(t, "Materialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcilePersistenceErrorAborts(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	orphan := *model.NewSnapshotDescriptor(
		model.SnapshotRepository(testRepo.ID),
		model.SnapshotChangeset("gone"),
		model.SnapshotMetadata(withTools("cat0")),
	)
	require.NoError(t, store.Create(ctx, orphan))

	provider := &historyMock{}
	provider.On("Changelog", mock.Anything, testRepo).Return(changelogOf(3), nil)
	provider.On("Materialize", mock.Anything, testRepo, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			// stub generator expects the revision marker
			fakeMaterialize(t, args)
		})

	generator := newStubGenerator(withTools("cat1"), withTools("cat2"), withTools("cat3"))
	reconciler := newTestReconciler(provider, generator, failingStore{Store: store})

	result, err := reconciler.Reconcile(ctx, testRepo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrPersist))
	assert.Empty(t, result.Flushed)

	// the walk stopped at the first flush, and no cleanup happened
	assert.Equal(t, []string{"c1", "c2"}, generator.calls)
	assert.Contains(t, snapshotsByChangeset(t, store, testRepo.ID), "gone")
}

func TestReconcileTipOnly(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	repo := testRepo
	repo.Type = model.TypeRepositorySuiteDefinition

	suite := func(changeset string) model.Metadata {
		return model.Metadata{
			RepositoryDependencies: &model.RepositoryDependencies{
				Dependencies: []model.DependencyTuple{
					{ToolShed: testHost, Name: "bwa", Owner: "devteam", ChangesetRevision: changeset, PriorInstallationRequired: "False", OnlyIfCompilingContainedTD: "False"},
				},
			},
		}
	}
	provider := &fakeHistory{changelog: changelogOf(3)}
	generator := newStubGenerator(suite("a"), suite("b"), suite("c"))
	reconciler := newTestReconciler(provider, generator, store)

	result, err := reconciler.Reconcile(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"c3"}, result.Flushed)
	assert.Equal(t, []string{"c3"}, generator.calls)

	sd := snapshotsByChangeset(t, store, repo.ID)["c3"]
	assert.True(t, sd.Downloadable)
	assert.True(t, sd.HasRepositoryDependencies)
	assert.False(t, sd.IncludesTools)
}

func TestReconcileInvalidFiles(t *testing.T) {
	provider := &fakeHistory{changelog: changelogOf(2)}
	generator := newStubGenerator(withTools("cat1"), withTools("cat1"))
	generator.invalid["c1"] = []model.InvalidFile{{Path: "broken.xml", Message: "XML syntax error"}}
	generator.invalid["c2"] = []model.InvalidFile{{Path: "broken.xml", Message: "XML syntax error"}, {Path: "other.xml", Message: "missing id"}}

	reconciler := newTestReconciler(provider, generator, newSnapshotStore())
	result, err := reconciler.Reconcile(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, []model.InvalidFile{
		{Path: "broken.xml", Message: "XML syntax error", Changeset: "c1"},
		{Path: "broken.xml", Message: "XML syntax error", Changeset: "c2"},
		{Path: "other.xml", Message: "missing id", Changeset: "c2"},
	}, result.InvalidFiles)
}

func TestReconcileInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newSnapshotStore()
	reconciler := newTestReconciler(&fakeHistory{changelog: changelogOf(2)}, newStubGenerator(withTools("cat1")), store)
	_, err := reconciler.Reconcile(ctx, testRepo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInterrupted))
}
