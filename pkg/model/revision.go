package model

import (
	"strconv"
	"time"
)

// Revision is one changeset in the linear history of a repository
type Revision struct {
	ID        string    `json:"id" yaml:"id"`
	Number    int       `json:"number" yaml:"number"`
	Timestamp time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	_         struct{}
}

func (r Revision) String() string {
	return strconv.Itoa(r.Number) + ":" + shortHash(r.ID)
}

// Changelog is the ordered history of a repository, oldest first
type Changelog []Revision

// Tip is the most recent revision, if any
func (c Changelog) Tip() (Revision, bool) {
	if len(c) == 0 {
		return Revision{}, false
	}
	return c[len(c)-1], true
}

// Contains tells if some changeset revision belongs to the history
func (c Changelog) Contains(changeset string) bool {
	for _, r := range c {
		if r.ID == changeset {
			return true
		}
	}
	return false
}

// IDs lists changeset revisions in history order
func (c Changelog) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, r := range c {
		ids = append(ids, r.ID)
	}
	return ids
}

func shortHash(id string) string {
	const short = 12
	if len(id) > short {
		return id[:short]
	}
	return id
}
