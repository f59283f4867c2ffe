package snapshot

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolshed/shedmon/pkg/errors"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/snapshot/status"
	"github.com/toolshed/shedmon/pkg/storage/localfs"
	"github.com/toolshed/shedmon/pkg/storage/mockstorage"
	storagestatus "github.com/toolshed/shedmon/pkg/storage/status"
)

type storeFixture struct {
	name  string
	setup func(testing.TB) Store
}

func storeFixtures() []storeFixture {
	return []storeFixture{
		{
			name: "object store",
			setup: func(t testing.TB) Store {
				return NewObjectStore(localfs.New(afero.NewMemMapFs()))
			},
		},
		{
			name: "sqlite",
			setup: func(t testing.TB) Store {
				db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "snapshots.db"))
				require.NoError(t, err)
				return db
			},
		},
	}
}

func closeStore(t testing.TB, store Store) {
	if db, ok := store.(*SQLite); ok {
		require.NoError(t, db.Close())
	}
}

func testSnapshot(repositoryID, changeset string, toolIDs ...string) model.SnapshotDescriptor {
	metadata := model.Metadata{}
	for _, id := range toolIDs {
		metadata.Tools = append(metadata.Tools, model.ToolRecord{
			ID: id, Name: id, Version: "1.0", GUID: "toolshed.example.org/repos/devteam/cat/" + id + "/1.0",
		})
	}
	return *model.NewSnapshotDescriptor(
		model.SnapshotRepository(repositoryID),
		model.SnapshotChangeset(changeset),
		model.SnapshotMetadata(metadata),
	)
}

func TestStoreCreateFind(t *testing.T) {
	for _, toPin := range storeFixtures() {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := fixture.setup(t)
			defer closeStore(t, store)

			_, err := store.Find(ctx, "repo1", "abc")
			require.True(t, errors.Is(err, status.ErrNotFound))

			sd := testSnapshot("repo1", "abc", "cat1")
			sd.Metadata.RepositoryDependencies = &model.RepositoryDependencies{
				Dependencies: []model.DependencyTuple{{
					ToolShed: "toolshed.example.org", Name: "bwa", Owner: "devteam", ChangesetRevision: "def",
					PriorInstallationRequired: "False", OnlyIfCompilingContainedTD: "True",
				}},
			}
			sd.SetMetadata(sd.Metadata)
			require.NoError(t, store.Create(ctx, sd))

			err = store.Create(ctx, testSnapshot("repo1", "abc"))
			require.True(t, errors.Is(err, status.ErrExists))

			found, err := store.Find(ctx, "repo1", "abc")
			require.NoError(t, err)
			assert.Equal(t, sd.ID, found.ID)
			assert.Equal(t, sd.Metadata.GUIDs(), found.Metadata.GUIDs())
			assert.Equal(t, sd.Metadata.Dependencies(), found.Metadata.Dependencies())
			assert.True(t, found.Downloadable)
			assert.True(t, found.IncludesTools)
			assert.True(t, found.HasRepositoryDependenciesOnlyIfCompiling)
			assert.False(t, found.HasRepositoryDependencies)
			assert.False(t, found.IncludesToolDependencies)
			assert.True(t, sd.Timestamp.Equal(found.Timestamp))

			err = store.Create(ctx, model.SnapshotDescriptor{ID: "x", RepositoryID: "repo1"})
			require.True(t, errors.Is(err, status.ErrInvalid))
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for _, toPin := range storeFixtures() {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := fixture.setup(t)
			defer closeStore(t, store)

			sd := testSnapshot("repo1", "abc", "cat1")
			require.NoError(t, store.Create(ctx, sd))
			other := testSnapshot("repo1", "xyz", "cat9")
			require.NoError(t, store.Create(ctx, other))

			// in place
			sd.ToolVersions = map[string]string{sd.Metadata.Tools[0].GUID: "cat1"}
			require.NoError(t, store.Update(ctx, "abc", sd))
			found, err := store.Find(ctx, "repo1", "abc")
			require.NoError(t, err)
			assert.Equal(t, sd.ToolVersions, found.ToolVersions)

			// moved to a later changeset
			moved := testSnapshot("repo1", "def", "cat1", "cat2")
			moved.ID = sd.ID
			require.NoError(t, store.Update(ctx, "abc", moved))
			_, err = store.Find(ctx, "repo1", "abc")
			require.True(t, errors.Is(err, status.ErrNotFound))
			found, err = store.Find(ctx, "repo1", "def")
			require.NoError(t, err)
			assert.Equal(t, sd.ID, found.ID)
			assert.Len(t, found.Metadata.Tools, 2)

			// moving onto another snapshot is not permitted
			clash := found
			clash.ChangesetRevision = "xyz"
			err = store.Update(ctx, "def", clash)
			require.True(t, errors.Is(err, status.ErrExists))

			// unknown snapshot
			err = store.Update(ctx, "nowhere", testSnapshot("repo1", "nowhere"))
			require.True(t, errors.Is(err, status.ErrNotFound))

			// another snapshot at this changeset
			impostor := testSnapshot("repo1", "def")
			err = store.Update(ctx, "def", impostor)
			require.True(t, errors.Is(err, status.ErrInvalid))
		})
	}
}

func TestStoreListDelete(t *testing.T) {
	for _, toPin := range storeFixtures() {
		fixture := toPin
		t.Run(fixture.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := fixture.setup(t)
			defer closeStore(t, store)

			list, err := store.List(ctx, "repo1")
			require.NoError(t, err)
			assert.Empty(t, list)

			for _, changeset := range []string{"c", "a", "b"} {
				require.NoError(t, store.Create(ctx, testSnapshot("repo1", changeset, "cat1")))
			}
			require.NoError(t, store.Create(ctx, testSnapshot("repo2", "a", "cat1")))

			list, err = store.List(ctx, "repo1")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, list.ChangesetRevisions())

			require.NoError(t, store.Delete(ctx, "repo1", "b"))
			require.NoError(t, store.Delete(ctx, "repo1", "unknown"))

			list, err = store.List(ctx, "repo1")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "c"}, list.ChangesetRevisions())

			list, err = store.List(ctx, "repo2")
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, list.ChangesetRevisions())
		})
	}
}

func TestObjectStoreErrors(t *testing.T) {
	ctx := context.Background()
	unavailable := errors.New("store unavailable")
	var gets int
	mock := &mockstorage.StoreMock{
		GetFunc: func(_ context.Context, key string) (io.ReadCloser, error) {
			gets++
			switch key {
			case model.GetArchivePathToSnapshot("r1", "corrupted"):
				return io.NopCloser(strings.NewReader("id: [")), nil
			case model.GetArchivePathToSnapshot("r1", "missing"):
				return nil, storagestatus.ErrNotExists
			default:
				return nil, unavailable
			}
		},
		StringFunc: func() string { return "mock" },
	}
	store := NewObjectStore(mock)

	_, err := store.Find(ctx, "r1", "missing")
	assert.True(t, errors.Is(err, status.ErrNotFound))

	_, err = store.Find(ctx, "r1", "corrupted")
	assert.True(t, errors.Is(err, status.ErrCorrupted))

	_, err = store.Find(ctx, "r1", "other")
	assert.True(t, errors.Is(err, unavailable))
	assert.False(t, errors.Is(err, status.ErrNotFound))
	assert.Equal(t, 3, gets)
}
