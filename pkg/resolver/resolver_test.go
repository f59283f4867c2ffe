package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/registry"
	"github.com/toolshed/shedmon/pkg/storage/localfs"
)

const testHost = "toolshed.example.org"

type changeloggerMock struct {
	mock.Mock
}

func (m *changeloggerMock) Changelog(ctx context.Context, repo model.RepoDescriptor) (model.Changelog, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(model.Changelog), args.Error(1)
}

func setupShed(t testing.TB) (*Shed, *changeloggerMock) {
	t.Helper()
	ctx := context.Background()
	catalog, err := registry.OpenCatalog(ctx, localfs.New(afero.NewMemMapFs()))
	require.NoError(t, err)
	_, err = catalog.CreateUser(ctx, model.UserDescriptor{Name: "devteam"})
	require.NoError(t, err)
	_, err = catalog.CreateRepo(ctx, model.RepoDescriptor{Owner: "devteam", Name: "bwa"})
	require.NoError(t, err)
	_, err = catalog.CreateRepo(ctx, model.RepoDescriptor{Owner: "devteam", Name: "empty"})
	require.NoError(t, err)

	history := &changeloggerMock{}
	history.On("Changelog", mock.Anything, mock.MatchedBy(func(r model.RepoDescriptor) bool { return r.Name == "bwa" })).
		Return(model.Changelog{{ID: "abc", Number: 0}, {ID: "def", Number: 1}}, nil)
	history.On("Changelog", mock.Anything, mock.MatchedBy(func(r model.RepoDescriptor) bool { return r.Name == "empty" })).
		Return(model.Changelog{}, nil)

	return NewShed("https://"+testHost+"/", catalog, history), history
}

func TestShedResolve(t *testing.T) {
	shed, _ := setupShed(t)
	assert.Equal(t, testHost, shed.Host())

	for _, toPin := range []struct {
		name          string
		decl          model.DependencyTuple
		valid         bool
		expectedHost  string
		expectedRev   string
		expectedError string
	}{
		{
			name:        "valid",
			decl:        model.DependencyTuple{ToolShed: "http://" + testHost, Name: "bwa", Owner: "devteam", ChangesetRevision: "abc"},
			valid:       true,
			expectedRev: "abc",
		},
		{
			name:        "default host",
			decl:        model.DependencyTuple{Name: "bwa", Owner: "devteam", ChangesetRevision: "def"},
			valid:       true,
			expectedRev: "def",
		},
		{
			name:        "omitted revision defaults to tip",
			decl:        model.DependencyTuple{Name: "bwa", Owner: "devteam"},
			valid:       true,
			expectedRev: "def",
		},
		{
			name:          "omitted revision without history",
			decl:          model.DependencyTuple{Name: "empty", Owner: "devteam"},
			expectedError: "because the changeset revision is invalid",
		},
		{
			name:          "other tool shed",
			decl:          model.DependencyTuple{ToolShed: "https://other.example.org", Name: "bwa", Owner: "devteam", ChangesetRevision: "abc"},
			expectedHost:  "other.example.org",
			expectedError: "supported only within the same tool shed",
		},
		{
			name:          "unknown owner",
			decl:          model.DependencyTuple{Name: "bwa", Owner: "nobody", ChangesetRevision: "abc"},
			expectedError: "because the owner is invalid",
		},
		{
			name:          "unknown name",
			decl:          model.DependencyTuple{Name: "bowtie", Owner: "devteam", ChangesetRevision: "abc"},
			expectedError: "because the name is invalid",
		},
		{
			name:          "unknown revision",
			decl:          model.DependencyTuple{Name: "bwa", Owner: "devteam", ChangesetRevision: "fff"},
			expectedError: "because the changeset revision is invalid",
		},
	} {
		tt := toPin
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tuple, valid, err := shed.Resolve(context.Background(), tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)
			expectedHost := tt.expectedHost
			if expectedHost == "" {
				expectedHost = testHost
			}
			assert.Equal(t, expectedHost, tuple.ToolShed)
			assert.Equal(t, "False", tuple.PriorInstallationRequired)
			assert.Equal(t, "False", tuple.OnlyIfCompilingContainedTD)
			if tt.valid {
				assert.Empty(t, tuple.Error)
				assert.Equal(t, tt.expectedRev, tuple.ChangesetRevision)
				return
			}
			assert.Contains(t, tuple.Error, tt.expectedError)
		})
	}
}

func TestShedResolveOtherShedKeepsHost(t *testing.T) {
	shed, _ := setupShed(t)
	tuple, valid, err := shed.Resolve(context.Background(), model.DependencyTuple{
		ToolShed: "https://other.example.org/", Name: "bwa", Owner: "devteam", ChangesetRevision: "abc",
		PriorInstallationRequired: "yes",
	})
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, "other.example.org", tuple.ToolShed)
	assert.Equal(t, "True", tuple.PriorInstallationRequired)
}

func TestShedResolveHistoryError(t *testing.T) {
	ctx := context.Background()
	catalog, err := registry.OpenCatalog(ctx, localfs.New(afero.NewMemMapFs()))
	require.NoError(t, err)
	_, err = catalog.CreateUser(ctx, model.UserDescriptor{Name: "devteam"})
	require.NoError(t, err)
	_, err = catalog.CreateRepo(ctx, model.RepoDescriptor{Owner: "devteam", Name: "bwa"})
	require.NoError(t, err)

	history := &changeloggerMock{}
	history.On("Changelog", mock.Anything, mock.Anything).Return(model.Changelog(nil), errors.New("unreachable"))

	shed := NewShed(testHost, catalog, history)
	tuple, valid, err := shed.Resolve(ctx, model.DependencyTuple{Name: "bwa", Owner: "devteam", ChangesetRevision: "abc"})
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Contains(t, tuple.Error, "the history of the repository could not be looked up: unreachable")
	history.AssertExpectations(t)
}

func TestShedResolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	catalog, err := registry.OpenCatalog(ctx, localfs.New(afero.NewMemMapFs()))
	require.NoError(t, err)
	_, err = catalog.CreateUser(ctx, model.UserDescriptor{Name: "devteam"})
	require.NoError(t, err)
	_, err = catalog.CreateRepo(ctx, model.RepoDescriptor{Owner: "devteam", Name: "bwa"})
	require.NoError(t, err)
	cancel()

	history := &changeloggerMock{}
	history.On("Changelog", mock.Anything, mock.Anything).Return(model.Changelog(nil), ctx.Err())

	shed := NewShed(testHost, catalog, history)
	_, _, err = shed.Resolve(ctx, model.DependencyTuple{Name: "bwa", Owner: "devteam", ChangesetRevision: "abc"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestInstallResolve(t *testing.T) {
	installed := InstalledLookupFunc(func(_ context.Context, toolShed, name, owner, changeset string) (bool, error) {
		return toolShed == testHost && name == "bwa" && owner == "devteam" && changeset == "abc", nil
	})

	for _, toPin := range []struct {
		name          string
		decl          model.DependencyTuple
		updating      bool
		valid         bool
		expectedError string
	}{
		{
			name:  "installed",
			decl:  model.DependencyTuple{ToolShed: "https://" + testHost, Name: "bwa", Owner: "devteam", ChangesetRevision: "abc"},
			valid: true,
		},
		{
			name:          "missing host",
			decl:          model.DependencyTuple{Name: "bwa", Owner: "devteam", ChangesetRevision: "abc"},
			expectedError: "Invalid repository dependency definition",
		},
		{
			name:          "missing revision",
			decl:          model.DependencyTuple{ToolShed: testHost, Name: "bwa", Owner: "devteam"},
			updating:      true,
			expectedError: "Invalid repository dependency definition",
		},
		{
			name:          "not installed",
			decl:          model.DependencyTuple{ToolShed: testHost, Name: "bwa", Owner: "devteam", ChangesetRevision: "def"},
			expectedError: "because it is not installed",
		},
		{
			name:     "not installed while updating",
			decl:     model.DependencyTuple{ToolShed: testHost, Name: "bwa", Owner: "devteam", ChangesetRevision: "def"},
			updating: true,
			valid:    true,
		},
	} {
		tt := toPin
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resolver := NewInstall(installed, Updating(tt.updating))
			tuple, valid, err := resolver.Resolve(context.Background(), tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)
			if tt.valid {
				assert.Empty(t, tuple.Error)
				return
			}
			assert.Contains(t, tuple.Error, tt.expectedError)
		})
	}
}

func TestInstallResolveLookupError(t *testing.T) {
	resolver := NewInstall(InstalledLookupFunc(func(context.Context, string, string, string, string) (bool, error) {
		return false, errors.New("database is locked")
	}))
	tuple, valid, err := resolver.Resolve(context.Background(), model.DependencyTuple{
		ToolShed: testHost, Name: "bwa", Owner: "devteam", ChangesetRevision: "abc",
	})
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Contains(t, tuple.Error, "the installed repository could not be looked up: database is locked")
}
