package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type archivePathFixture struct {
	name       string
	path       string
	wantsError bool
	expected   ArchivePathComponents
}

func archivePathTestCases() []archivePathFixture {
	return []archivePathFixture{
		// happy path
		{
			name: "user descriptor",
			path: "users/devteam/user.yaml",
			expected: ArchivePathComponents{
				User:            "devteam",
				ArchiveFileName: "user.yaml",
			},
		},
		{
			name: "repo descriptor",
			path: "repos/devteam/package_bwa_0_5_9/repo.yaml",
			expected: ArchivePathComponents{
				Owner:           "devteam",
				Repo:            "package_bwa_0_5_9",
				ArchiveFileName: "repo.yaml",
			},
		},
		{
			name: "snapshot descriptor",
			path: "snapshots/1Jbb3SicFGoKB7JQJZdCCwdBQwE/a4c2e8d1f0b9/snapshot.yaml",
			expected: ArchivePathComponents{
				RepositoryID:      "1Jbb3SicFGoKB7JQJZdCCwdBQwE",
				ChangesetRevision: "a4c2e8d1f0b9",
				ArchiveFileName:   "snapshot.yaml",
			},
		},
		{
			name: "changelog",
			path: "history/devteam/bwa/changelog.yaml",
			expected: ArchivePathComponents{
				Owner:           "devteam",
				Repo:            "bwa",
				ArchiveFileName: "changelog.yaml",
			},
		},
		{
			name: "tree file",
			path: "history/devteam/bwa/a4c2e8d1f0b9/tree/tools/bwa/bwa.xml",
			expected: ArchivePathComponents{
				Owner:             "devteam",
				Repo:              "bwa",
				ChangesetRevision: "a4c2e8d1f0b9",
				TreePath:          "tools/bwa/bwa.xml",
				ArchiveFileName:   "bwa.xml",
			},
		},
		// error cases
		{
			name:       "invalid path (no parts)",
			path:       "",
			wantsError: true,
		},
		{
			name:       "invalid path (no leading part)",
			path:       "/repos/devteam/bwa/repo.yaml",
			wantsError: true,
		},
		{
			name:       "invalid users (wrong file)",
			path:       "users/devteam/wrong.yaml",
			wantsError: true,
		},
		{
			name:       "invalid repos (too short)",
			path:       "repos/devteam",
			wantsError: true,
		},
		{
			name:       "invalid repos (wrong file)",
			path:       "repos/devteam/bwa/wrong.yaml",
			wantsError: true,
		},
		{
			name:       "invalid snapshots (too short)",
			path:       "snapshots/1Jbb3SicFGoKB7JQJZdCCwdBQwE/snapshot.yaml",
			wantsError: true,
		},
		{
			name:       "invalid history (no tree)",
			path:       "history/devteam/bwa/a4c2e8d1f0b9/other/bwa.xml",
			wantsError: true,
		},
		{
			name:       "invalid history (empty tree path)",
			path:       "history/devteam/bwa/a4c2e8d1f0b9/tree/",
			wantsError: true,
		},
	}
}

func TestGetArchivePathComponents(t *testing.T) {
	for _, toPin := range archivePathTestCases() {
		tt := toPin
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			apc, err := GetArchivePathComponents(tt.path)
			if tt.wantsError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, apc)
		})
	}
}

func TestArchivePaths(t *testing.T) {
	assert.Equal(t, "users/devteam/user.yaml", GetArchivePathToUser("devteam"))
	assert.Equal(t, "repos/devteam/bwa/repo.yaml", GetArchivePathToRepoDescriptor("devteam", "bwa"))
	assert.Equal(t, "repos/", GetArchivePathPrefixToRepos())
	assert.Equal(t, "repos/devteam/", GetArchivePathPrefixToRepos("devteam"))
	assert.Equal(t, "snapshots/x/abc/snapshot.yaml", GetArchivePathToSnapshot("x", "abc"))
	assert.Equal(t, "snapshots/x/", GetArchivePathPrefixToSnapshots("x"))
	assert.Equal(t, "history/devteam/bwa/changelog.yaml", GetArchivePathToChangelog("devteam", "bwa"))
	assert.Equal(t, "history/devteam/bwa/abc/tree/", GetArchivePathPrefixToTree("devteam", "bwa", "abc"))
	assert.Equal(t, "history/devteam/bwa/abc/tree/tools/bwa.xml",
		GetArchivePathToTreeFile("devteam", "bwa", "abc", "./tools/bwa.xml"))
	assert.Equal(t, "history/devteam/bwa/abc/tree/etc/passwd",
		GetArchivePathToTreeFile("devteam", "bwa", "abc", "../../etc/passwd"))

	for _, toPin := range []string{
		GetArchivePathToUser("devteam"),
		GetArchivePathToRepoDescriptor("devteam", "bwa"),
		GetArchivePathToSnapshot("x", "abc"),
		GetArchivePathToChangelog("devteam", "bwa"),
		GetArchivePathToTreeFile("devteam", "bwa", "abc", "tools/bwa.xml"),
	} {
		_, err := GetArchivePathComponents(toPin)
		require.NoErrorf(t, err, "expected path %q to parse", toPin)
	}
}
