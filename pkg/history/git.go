package history

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

var _ Provider = &Git{}

const fieldSep = "\x1f"

// Git reads histories from local git clones, following first parents only.
//
// The clone is located by the Path of the repository descriptor.
type Git struct {
	binary string
	l      *zap.Logger
}

// NewGit builds a git history provider
func NewGit(opts ...GitOption) *Git {
	g := &Git{
		binary: "git",
		l:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(g)
	}
	return g
}

func (g *Git) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	return cmd
}

// run executes a git command and returns its trimmed stdout.
func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := g.command(ctx, dir, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func clonePath(repo model.RepoDescriptor) (string, error) {
	if repo.Path == "" {
		return "", fmt.Errorf("repository %s has no local clone", repo.FullName())
	}
	return repo.Path, nil
}

// Changelog lists the commits of the checked out branch, oldest first
func (g *Git) Changelog(ctx context.Context, repo model.RepoDescriptor) (model.Changelog, error) {
	dir, err := clonePath(repo)
	if err != nil {
		return nil, err
	}

	// an empty repository has no HEAD
	if _, err := g.run(ctx, dir, "rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
		return model.Changelog{}, nil
	}

	output, err := g.run(ctx, dir, "log", "--first-parent", "--reverse", "--format=%H%x1f%at%x1f%s")
	if err != nil {
		return nil, fmt.Errorf("changelog of %s: %w", repo.FullName(), err)
	}
	return parseLog(output)
}

func parseLog(output string) (model.Changelog, error) {
	if output == "" {
		return model.Changelog{}, nil
	}
	lines := strings.Split(output, "\n")
	changelog := make(model.Changelog, 0, len(lines))
	for i, line := range lines {
		fields := strings.SplitN(line, fieldSep, 3)
		if len(fields) < 2 {
			return nil, fmt.Errorf("unexpected git log line: %q", line)
		}
		epoch, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected commit timestamp in %q: %w", line, err)
		}
		rev := model.Revision{
			ID:        fields[0],
			Number:    i,
			Timestamp: time.Unix(epoch, 0).UTC(),
		}
		if len(fields) == 3 {
			rev.Message = fields[2]
		}
		changelog = append(changelog, rev)
	}
	return changelog, nil
}

// Materialize extracts the tree of a commit with git archive
func (g *Git) Materialize(ctx context.Context, repo model.RepoDescriptor, revision model.Revision, fs afero.Fs, dest string) error {
	dir, err := clonePath(repo)
	if err != nil {
		return err
	}

	cmd := g.command(ctx, dir, "archive", "--format=tar", revision.ID)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("git archive %s: %w", revision.ID, err)
	}

	extractErr := untar(stdout, fs, dest)
	if extractErr != nil {
		// drain, so the command may terminate
		_, _ = io.Copy(io.Discard, stdout)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("git archive %s: %s: %w", revision.ID, strings.TrimSpace(stderr.String()), err)
	}
	if extractErr != nil {
		return fmt.Errorf("extracting revision %s: %w", revision, extractErr)
	}
	g.l.Debug("materialized revision",
		zap.String("repository", repo.FullName()),
		zap.Stringer("changeset", revision),
		zap.String("dest", dest),
	)
	return nil
}

func untar(r io.Reader, fs afero.Fs, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := path.Clean("/" + hdr.Name)
		target := filepath.Join(dest, filepath.FromSlash(name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fs.MkdirAll(target, 0700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(fs, target, tr, os.FileMode(hdr.Mode).Perm()|0600); err != nil {
				return err
			}
		default:
			// symlinks and git metadata entries are not part of the metadata of a revision
		}
	}
}

func writeFile(fs afero.Fs, target string, content io.Reader, mode os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return err
	}
	file, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, content); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
