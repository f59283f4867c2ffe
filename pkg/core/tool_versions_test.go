package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolshed/shedmon/pkg/model"
)

func TestParentGUID(t *testing.T) {
	c1 := model.SnapshotDescriptor{Metadata: model.Metadata{Tools: []model.ToolRecord{tool("cat1", "1.0"), tool("sort1", "1.0")}}}
	c2 := model.SnapshotDescriptor{Metadata: model.Metadata{Tools: []model.ToolRecord{tool("cat1", "1.5"), tool("sort1", "1.0")}}}

	for _, toPin := range []struct {
		Name     string
		Tool     model.ToolRecord
		Earlier  []model.SnapshotDescriptor
		Expected string
	}{
		{
			Name:     "first revision maps to the tool id",
			Tool:     tool("cat1", "1.0"),
			Expected: "cat1",
		},
		{
			Name:     "unchanged tool maps to its id",
			Tool:     tool("sort1", "1.0"),
			Earlier:  []model.SnapshotDescriptor{c1, c2},
			Expected: "sort1",
		},
		{
			Name:     "new version maps to the most recent earlier version",
			Tool:     tool("cat1", "2.0"),
			Earlier:  []model.SnapshotDescriptor{c1, c2},
			Expected: guid("cat1", "1.5"),
		},
		{
			Name:     "unchanged tool is skipped while scanning",
			Tool:     tool("cat1", "1.5"),
			Earlier:  []model.SnapshotDescriptor{c1, c2},
			Expected: guid("cat1", "1.0"),
		},
		{
			Name:     "unknown tool",
			Tool:     tool("grep1", "1.0"),
			Earlier:  []model.SnapshotDescriptor{c1, c2},
			Expected: "grep1",
		},
	} {
		tt := toPin

		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.Expected, parentGUID(tt.Tool, tt.Earlier))
		})
	}
}

func TestReconcileToolVersions(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()
	provider := &fakeHistory{changelog: changelogOf(3)}
	generator := newStubGenerator(
		model.Metadata{Tools: []model.ToolRecord{tool("cat1", "1.0")}},
		model.Metadata{Tools: []model.ToolRecord{tool("sort1", "1.0")}},
		model.Metadata{Tools: []model.ToolRecord{tool("cat1", "2.0")}},
	)
	reconciler := newTestReconciler(provider, generator, store)

	result, err := reconciler.Reconcile(ctx, testRepo)
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2", "c3"}, result.Flushed)

	snapshots := snapshotsByChangeset(t, store, testRepo.ID)
	assert.Equal(t, map[string]string{guid("cat1", "1.0"): "cat1"}, snapshots["c1"].ToolVersions)
	assert.Equal(t, map[string]string{guid("sort1", "1.0"): "sort1"}, snapshots["c2"].ToolVersions)
	assert.Equal(t, map[string]string{guid("cat1", "2.0"): guid("cat1", "1.0")}, snapshots["c3"].ToolVersions)
}

func TestResetToolVersions(t *testing.T) {
	ctx := context.Background()
	store := newSnapshotStore()

	create := func(changeset string, metadata model.Metadata, versions map[string]string) {
		sd := model.NewSnapshotDescriptor(
			model.SnapshotRepository(testRepo.ID),
			model.SnapshotChangeset(changeset),
			model.SnapshotMetadata(metadata),
		)
		sd.ToolVersions = versions
		require.NoError(t, store.Create(ctx, *sd))
	}

	// out of history order on purpose: c3 comes before c2 in the changelog
	changelog := model.Changelog{{ID: "c1"}, {ID: "c3", Number: 1}, {ID: "c2", Number: 2}}
	create("c1", model.Metadata{Tools: []model.ToolRecord{tool("cat1", "1.0")}}, map[string]string{"stale": "value"})
	create("c2", model.Metadata{Tools: []model.ToolRecord{tool("cat1", "3.0")}}, nil)
	create("c3", model.Metadata{Tools: []model.ToolRecord{tool("cat1", "2.0")}}, nil)
	create("c4", model.Metadata{ToolDependencies: map[string]model.ToolDependency{
		"bwa/0.5.9": {Name: "bwa", Version: "0.5.9", Type: "package"},
	}}, nil)

	provider := &fakeHistory{changelog: changelog}
	reconciler := newTestReconciler(provider, newStubGenerator(), store)
	require.NoError(t, reconciler.ResetToolVersions(ctx, testRepo))

	snapshots := snapshotsByChangeset(t, store, testRepo.ID)
	assert.Equal(t, map[string]string{guid("cat1", "1.0"): "cat1"}, snapshots["c1"].ToolVersions)
	assert.Equal(t, map[string]string{guid("cat1", "2.0"): guid("cat1", "1.0")}, snapshots["c3"].ToolVersions)
	assert.Equal(t, map[string]string{guid("cat1", "3.0"): guid("cat1", "2.0")}, snapshots["c2"].ToolVersions)
	assert.Empty(t, snapshots["c4"].ToolVersions)
}
