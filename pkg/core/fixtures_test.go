package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/toolshed/shedmon/pkg/history"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/snapshot"
	"github.com/toolshed/shedmon/pkg/storage/localfs"
)

const testHost = "toolshed.example.org"

var testRepo = model.RepoDescriptor{ID: "repo-id", Owner: "devteam", Name: "cat", Type: model.TypeUnrestricted}

func changeset(i int) string {
	return fmt.Sprintf("c%d", i)
}

func guid(id, version string) string {
	return testHost + "/repos/devteam/cat/" + id + "/" + version
}

func tool(id, version string) model.ToolRecord {
	return model.ToolRecord{ID: id, Name: id, Version: version, GUID: guid(id, version)}
}

// withTools builds a metadata document declaring tools at version 1.0
func withTools(ids ...string) model.Metadata {
	var metadata model.Metadata
	for _, id := range ids {
		metadata.Tools = append(metadata.Tools, tool(id, "1.0"))
	}
	return metadata
}

func changelogOf(n int) model.Changelog {
	changelog := make(model.Changelog, 0, n)
	for i := 1; i <= n; i++ {
		changelog = append(changelog, model.Revision{ID: changeset(i), Number: i - 1})
	}
	return changelog
}

// fakeHistory serves a changelog which may be altered between reconciliations
type fakeHistory struct {
	mx        sync.Mutex
	changelog model.Changelog
	failing   map[string]bool
}

func (f *fakeHistory) Changelog(_ context.Context, _ model.RepoDescriptor) (model.Changelog, error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	return append(model.Changelog(nil), f.changelog...), nil
}

func (f *fakeHistory) Materialize(_ context.Context, _ model.RepoDescriptor, revision model.Revision, fs afero.Fs, dest string) error {
	f.mx.Lock()
	defer f.mx.Unlock()
	if f.failing[revision.ID] {
		return errors.New("clone failed")
	}
	return afero.WriteFile(fs, dest+"/.revision", []byte(revision.ID), 0600)
}

func (f *fakeHistory) grow(n int) {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.changelog = changelogOf(n)
}

// historyMock is a testify mock of a history provider
type historyMock struct {
	mock.Mock
}

func (m *historyMock) Changelog(ctx context.Context, repo model.RepoDescriptor) (model.Changelog, error) {
	args := m.Called(ctx, repo)
	changelog, _ := args.Get(0).(model.Changelog)
	return changelog, args.Error(1)
}

func (m *historyMock) Materialize(ctx context.Context, repo model.RepoDescriptor, revision model.Revision, fs afero.Fs, dest string) error {
	args := m.Called(ctx, repo, revision, fs, dest)
	return args.Error(0)
}

// stubGenerator serves predefined metadata by changeset revision
type stubGenerator struct {
	mx       sync.Mutex
	metadata map[string]model.Metadata
	invalid  map[string][]model.InvalidFile
	calls    []string
}

func newStubGenerator(sequence ...model.Metadata) *stubGenerator {
	g := &stubGenerator{
		metadata: make(map[string]model.Metadata, len(sequence)),
		invalid:  make(map[string][]model.InvalidFile),
	}
	for i, metadata := range sequence {
		g.metadata[changeset(i+1)] = metadata
	}
	return g
}

func (g *stubGenerator) Generate(_ context.Context, fs afero.Fs, dir string, _ model.RepoDescriptor, changeset string) (model.Metadata, []model.InvalidFile, error) {
	g.mx.Lock()
	defer g.mx.Unlock()
	g.calls = append(g.calls, changeset)

	// the revision must have been materialized in dir
	content, err := afero.ReadFile(fs, dir+"/.revision")
	if err != nil {
		return model.Metadata{}, nil, err
	}
	if string(content) != changeset {
		return model.Metadata{}, nil, fmt.Errorf("unexpected revision %q in scratch dir", content)
	}
	return g.metadata[changeset], g.invalid[changeset], nil
}

func (g *stubGenerator) set(changeset string, metadata model.Metadata) {
	g.mx.Lock()
	defer g.mx.Unlock()
	g.metadata[changeset] = metadata
}

// failingStore fails all writes
type failingStore struct {
	snapshot.Store
}

var errWrite = errors.New("database is locked")

func (failingStore) Create(context.Context, model.SnapshotDescriptor) error { return errWrite }

func (failingStore) Update(context.Context, string, model.SnapshotDescriptor) error { return errWrite }

func (failingStore) Delete(context.Context, string, string) error { return errWrite }

func newSnapshotStore() snapshot.Store {
	return snapshot.NewObjectStore(localfs.New(afero.NewMemMapFs()))
}

func newTestReconciler(provider history.Provider, generator MetadataGenerator, store snapshot.Store, opts ...Option) *Reconciler {
	opts = append([]Option{WithScratch(afero.NewMemMapFs(), "/scratch")}, opts...)
	return NewReconciler(provider, generator, nil, store, nil, opts...)
}

func snapshotsByChangeset(t testing.TB, store snapshot.Store, repositoryID string) map[string]model.SnapshotDescriptor {
	t.Helper()
	list, err := store.List(context.Background(), repositoryID)
	require.NoError(t, err)
	res := make(map[string]model.SnapshotDescriptor, len(list))
	for _, sd := range list {
		res[sd.ChangesetRevision] = sd
	}
	return res
}

func toolIDs(metadata model.Metadata) []string {
	ids := make([]string, 0, len(metadata.Tools))
	for _, t := range metadata.Tools {
		ids = append(ids, t.ID)
	}
	return ids
}

func persistedChangesets(t testing.TB, store snapshot.Store, repositoryID string) []string {
	t.Helper()
	list, err := store.List(context.Background(), repositoryID)
	require.NoError(t, err)
	return list.ChangesetRevisions()
}

// fakeMaterialize leaves the marker expected by the stub generator
func fakeMaterialize(t testing.TB, args mock.Arguments) {
	revision := args.Get(2).(model.Revision)
	fs := args.Get(3).(afero.Fs)
	dest := args.String(4)
	require.NoError(t, afero.WriteFile(fs, dest+"/.revision", []byte(revision.ID), 0600))
}
