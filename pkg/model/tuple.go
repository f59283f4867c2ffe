package model

import (
	"fmt"
	"strings"
)

// DependencyTuple is a repository dependency definition:
// (toolshed, name, owner, changeset_revision, prior_installation_required, only_if_compiling_contained_td),
// with an optional error message when the definition is invalid.
//
// Boolean flags are kept as strings, the way they are declared in XML definitions.
type DependencyTuple struct {
	ToolShed                   string `json:"toolshed" yaml:"toolshed"`
	Name                       string `json:"name" yaml:"name"`
	Owner                      string `json:"owner" yaml:"owner"`
	ChangesetRevision          string `json:"changeset_revision" yaml:"changeset_revision"`
	PriorInstallationRequired  string `json:"prior_installation_required" yaml:"prior_installation_required"`
	OnlyIfCompilingContainedTD string `json:"only_if_compiling_contained_td" yaml:"only_if_compiling_contained_td"`
	Error                      string `json:"error,omitempty" yaml:"error,omitempty"`
	_                          struct{}
}

// StripProtocol removes the scheme (e.g. "https://") and any trailing slash from a tool shed url
func StripProtocol(toolShed string) string {
	if idx := strings.Index(toolShed, "://"); idx >= 0 {
		toolShed = toolShed[idx+3:]
	}
	return strings.TrimRight(toolShed, "/")
}

// StringAsBool interprets flags declared as strings: "true", "yes", "on" and "1" are true
func StringAsBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

// BoolAsString renders a flag the way definitions declare them
func BoolAsString(value bool) string {
	if value {
		return "True"
	}
	return "False"
}

// SameRepository tells if two tuples refer to the same repository, regardless of its revision
func (t DependencyTuple) SameRepository(other DependencyTuple) bool {
	return StripProtocol(t.ToolShed) == StripProtocol(other.ToolShed) &&
		t.Name == other.Name &&
		t.Owner == other.Owner
}

// Matches compares two tuples on all fields but the error slot.
//
// Tool shed hosts are compared without their protocol, flags are compared as booleans.
func (t DependencyTuple) Matches(other DependencyTuple) bool {
	return t.SameRepository(other) &&
		t.ChangesetRevision == other.ChangesetRevision &&
		StringAsBool(t.PriorInstallationRequired) == StringAsBool(other.PriorInstallationRequired) &&
		StringAsBool(t.OnlyIfCompilingContainedTD) == StringAsBool(other.OnlyIfCompilingContainedTD)
}

// IsPriorInstallationRequired is the boolean value of the prior_installation_required flag
func (t DependencyTuple) IsPriorInstallationRequired() bool {
	return StringAsBool(t.PriorInstallationRequired)
}

// IsOnlyIfCompiling is the boolean value of the only_if_compiling_contained_td flag
func (t DependencyTuple) IsOnlyIfCompiling() bool {
	return StringAsBool(t.OnlyIfCompilingContainedTD)
}

// WithoutError returns a copy of the tuple with the error slot cleared
func (t DependencyTuple) WithoutError() DependencyTuple {
	t.Error = ""
	return t
}

func (t DependencyTuple) String() string {
	s := fmt.Sprintf("%s/repos/%s/%s@%s", StripProtocol(t.ToolShed), t.Owner, t.Name, t.ChangesetRevision)
	if t.Error != "" {
		s += " (" + t.Error + ")"
	}
	return s
}

// DependencyTypes reports which kinds of repository dependencies a list holds:
// regular ones and those only required when compiling a contained tool dependency.
func DependencyTypes(tuples []DependencyTuple) (hasRegular, hasOnlyIfCompiling bool) {
	for _, t := range tuples {
		if t.IsOnlyIfCompiling() {
			hasOnlyIfCompiling = true
		} else {
			hasRegular = true
		}
	}
	return
}
