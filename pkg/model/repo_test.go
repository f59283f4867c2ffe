package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRepo(t *testing.T) {
	for _, toPin := range []struct {
		name       string
		repo       RepoDescriptor
		wantsError bool
	}{
		{name: "valid", repo: RepoDescriptor{Name: "package_bwa_0_5_9", Owner: "devteam"}},
		{name: "valid tip-only", repo: RepoDescriptor{Name: "suite", Owner: "iuc", Type: TypeRepositorySuiteDefinition}},
		{name: "custom type", repo: RepoDescriptor{Name: "x", Owner: "iuc", Type: "workflow_bundle"}},
		{name: "empty name", repo: RepoDescriptor{Owner: "iuc"}, wantsError: true},
		{name: "empty owner", repo: RepoDescriptor{Name: "x"}, wantsError: true},
		{name: "slash in name", repo: RepoDescriptor{Name: "a/b", Owner: "iuc"}, wantsError: true},
		{name: "bad type", repo: RepoDescriptor{Name: "x", Owner: "iuc", Type: "a b"}, wantsError: true},
	} {
		tt := toPin
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRepo(tt.repo)
			if tt.wantsError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateUser(t *testing.T) {
	require.NoError(t, ValidateUser(UserDescriptor{Name: "devteam", Email: "devteam@example.org"}))
	require.NoError(t, ValidateUser(UserDescriptor{Name: "devteam"}))
	require.Error(t, ValidateUser(UserDescriptor{Name: "devteam", Email: "not-an-email"}))
	require.Error(t, ValidateUser(UserDescriptor{Name: "dev team"}))
}

func TestRepoDescriptorsSort(t *testing.T) {
	repos := RepoDescriptors{
		{Owner: "iuc", Name: "b"},
		{Owner: "devteam", Name: "z"},
		{Owner: "iuc", Name: "a"},
	}
	sort.Sort(repos)
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.FullName())
	}
	assert.Equal(t, []string{"devteam/z", "iuc/a", "iuc/b"}, names)
}

func TestChangelog(t *testing.T) {
	var empty Changelog
	_, ok := empty.Tip()
	assert.False(t, ok)

	log := Changelog{{ID: "aaaaaaaaaaaaaaaa", Number: 0}, {ID: "bbb", Number: 1}}
	tip, ok := log.Tip()
	require.True(t, ok)
	assert.Equal(t, "bbb", tip.ID)
	assert.True(t, log.Contains("aaaaaaaaaaaaaaaa"))
	assert.False(t, log.Contains("ccc"))
	assert.Equal(t, []string{"aaaaaaaaaaaaaaaa", "bbb"}, log.IDs())
	assert.Equal(t, "0:aaaaaaaaaaaa", log[0].String())
}
