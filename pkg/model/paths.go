package model

import (
	"fmt"
	"path"
	"strings"
)

const (
	// descriptor files (object metadata)
	userDescriptorFile     = "user.yaml"
	repoDescriptorFile     = "repo.yaml"
	snapshotDescriptorFile = "snapshot.yaml"
	changelogFile          = "changelog.yaml"

	treeDir = "tree"
)

// ArchivePathComponents defines the unique path parts to retrieve an object in a store
type ArchivePathComponents struct {
	User              string
	Owner             string
	Repo              string
	RepositoryID      string
	ChangesetRevision string
	ArchiveFileName   string
	TreePath          string
}

// GetArchivePathToUser yields the path to a user descriptor: users/{user}/user.yaml
func GetArchivePathToUser(user string) string {
	return path.Join("users", user, userDescriptorFile)
}

// GetArchivePathPrefixToUsers yields the prefix of all users
func GetArchivePathPrefixToUsers() string {
	return "users/"
}

// GetArchivePathToRepoDescriptor yields the path to a repo descriptor: repos/{owner}/{repo}/repo.yaml
func GetArchivePathToRepoDescriptor(owner, repo string) string {
	return path.Join("repos", owner, repo, repoDescriptorFile)
}

// GetArchivePathPrefixToRepos yields the prefix of all repos, or of the repos of some owners
func GetArchivePathPrefixToRepos(owner ...string) string {
	if len(owner) == 0 || owner[0] == "" {
		return "repos/"
	}
	return path.Join("repos", owner[0]) + "/"
}

// GetArchivePathToSnapshot yields the path to a snapshot: snapshots/{repository-id}/{changeset}/snapshot.yaml
func GetArchivePathToSnapshot(repositoryID, changeset string) string {
	return path.Join("snapshots", repositoryID, changeset, snapshotDescriptorFile)
}

// GetArchivePathPrefixToSnapshots yields the prefix of all snapshots of a repository
func GetArchivePathPrefixToSnapshots(repositoryID string) string {
	return path.Join("snapshots", repositoryID) + "/"
}

// GetArchivePathToChangelog yields the path to the changelog of a stored history
func GetArchivePathToChangelog(owner, repo string) string {
	return path.Join("history", owner, repo, changelogFile)
}

// GetArchivePathPrefixToTree yields the prefix of all files in some revision of a stored history
func GetArchivePathPrefixToTree(owner, repo, changeset string) string {
	return path.Join("history", owner, repo, changeset, treeDir) + "/"
}

// GetArchivePathToTreeFile yields the path to a file in some revision of a stored history
func GetArchivePathToTreeFile(owner, repo, changeset, file string) string {
	return GetArchivePathPrefixToTree(owner, repo, changeset) + strings.TrimPrefix(path.Clean("/"+file), "/")
}

// GetArchivePathComponents yields all metadata components from a parsed archive path.
func GetArchivePathComponents(archivePath string) (ArchivePathComponents, error) {
	const (
		maxPos      = 6
		userPos     = 2 // as in: users/{user}/user.yaml
		repoPos     = 3 // as in: repos/{owner}/{repo}/repo.yaml
		snapshotPos = 3 // as in: snapshots/{repository-id}/{changeset}/snapshot.yaml
		historyPos  = 3 // as in: history/{owner}/{repo}/changelog.yaml
		treePos     = 4 // as in: history/{owner}/{repo}/{changeset}/tree/{path...}
	)
	cs := strings.SplitN(archivePath, "/", maxPos)
	switch cs[0] { // we always have at least 1 element

	case "users":
		if len(cs) != userPos+1 || cs[userPos] != userDescriptorFile {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid, expected users/{user}/%s: %s", userDescriptorFile, archivePath)
		}
		return ArchivePathComponents{
			ArchiveFileName: cs[userPos],
			User:            cs[userPos-1],
		}, nil

	case "repos":
		if len(cs) != repoPos+1 || cs[repoPos] != repoDescriptorFile {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid, expected repos/{owner}/{repo}/%s: %s", repoDescriptorFile, archivePath)
		}
		return ArchivePathComponents{
			ArchiveFileName: cs[repoPos],
			Repo:            cs[repoPos-1],
			Owner:           cs[repoPos-2],
		}, nil

	case "snapshots":
		if len(cs) != snapshotPos+1 || cs[snapshotPos] != snapshotDescriptorFile {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid, expected snapshots/{repository-id}/{changeset}/%s: %s",
					snapshotDescriptorFile, archivePath)
		}
		return ArchivePathComponents{
			ArchiveFileName:   cs[snapshotPos],
			ChangesetRevision: cs[snapshotPos-1],
			RepositoryID:      cs[snapshotPos-2],
		}, nil

	case "history":
		switch {
		case len(cs) == historyPos+1 && cs[historyPos] == changelogFile:
			return ArchivePathComponents{
				ArchiveFileName: cs[historyPos],
				Repo:            cs[historyPos-1],
				Owner:           cs[historyPos-2],
			}, nil
		case len(cs) == maxPos && cs[treePos] == treeDir && cs[maxPos-1] != "":
			return ArchivePathComponents{
				ArchiveFileName:   path.Base(cs[maxPos-1]),
				TreePath:          cs[maxPos-1],
				ChangesetRevision: cs[treePos-1],
				Repo:              cs[treePos-2],
				Owner:             cs[treePos-3],
			}, nil
		default:
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid, expected a changelog or a tree file: %s", archivePath)
		}

	default:
		return ArchivePathComponents{}, fmt.Errorf("path is invalid: %v, path: %s", cs, archivePath)
	}
}
