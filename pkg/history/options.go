package history

import (
	"time"

	"go.uber.org/zap"
)

// GitOption for the git history provider
type GitOption func(*Git)

// StoreOption for the object store history provider
type StoreOption func(*Store)

// CommitOption for commits to a stored history
type CommitOption func(*commitSettings)

type commitSettings struct {
	id        string
	message   string
	timestamp time.Time
}

// GitBinary sets the git executable, which defaults to "git" in the PATH
func GitBinary(binary string) GitOption {
	return func(g *Git) {
		if binary != "" {
			g.binary = binary
		}
	}
}

// GitLogger sets a logger
func GitLogger(l *zap.Logger) GitOption {
	return func(g *Git) {
		if l != nil {
			g.l = l
		}
	}
}

// StoreLogger sets a logger
func StoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.l = l
		}
	}
}

// CommitMessage sets the message of a commit
func CommitMessage(message string) CommitOption {
	return func(c *commitSettings) {
		c.message = message
	}
}

// CommitID keeps a known changeset identifier instead of computing one, e.g. when importing histories
func CommitID(id string) CommitOption {
	return func(c *commitSettings) {
		c.id = id
	}
}

// CommitTimestamp sets the timestamp of a commit
func CommitTimestamp(ts time.Time) CommitOption {
	return func(c *commitSettings) {
		if !ts.IsZero() {
			c.timestamp = ts
		}
	}
}
