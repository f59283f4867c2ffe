package model

import (
	"fmt"
	"regexp"
	"time"
	"unicode"
)

// Repository types known to the tool shed
const (
	// TypeUnrestricted repositories may contain anything
	TypeUnrestricted = "unrestricted"
	// TypeRepositorySuiteDefinition repositories only declare dependencies on other repositories
	TypeRepositorySuiteDefinition = "repository_suite_definition"
	// TypeToolDependencyDefinition repositories only contain a tool_dependencies.xml definition
	TypeToolDependencyDefinition = "tool_dependency_definition"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RepoDescriptor represents a tool shed repository
type RepoDescriptor struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Owner       string    `json:"owner" yaml:"owner"`
	Type        string    `json:"type,omitempty" yaml:"type,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	ToolShed    string    `json:"toolshed,omitempty" yaml:"toolshed,omitempty"`
	Path        string    `json:"path,omitempty" yaml:"path,omitempty"` // local clone, for git backed histories
	Deleted     bool      `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	_           struct{}
}

// RepoDescriptors is a sortable list of repositories
type RepoDescriptors []RepoDescriptor

func (r RepoDescriptors) Len() int      { return len(r) }
func (r RepoDescriptors) Swap(i, j int) { r[i], r[j] = r[j], r[i] }
func (r RepoDescriptors) Less(i, j int) bool {
	if r[i].Owner == r[j].Owner {
		return r[i].Name < r[j].Name
	}
	return r[i].Owner < r[j].Owner
}

// FullName is owner/name
func (r RepoDescriptor) FullName() string {
	return r.Owner + "/" + r.Name
}

// UserDescriptor represents a tool shed user, owner of repositories
type UserDescriptor struct {
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email,omitempty" yaml:"email,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	_         struct{}
}

func validateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("empty field: %s name is empty", kind)
	}
	for i, c := range name {
		if !unicode.IsDigit(c) && !unicode.IsLetter(c) && !unicode.Is(unicode.Hyphen, c) && c != '_' {
			return fmt.Errorf("invalid name: %s name:%s contains unsupported character \"%s\"",
				kind,
				name,
				string([]rune(name)[i]))
		}
	}
	return nil
}

// ValidateRepo checks the fields of a repository descriptor
func ValidateRepo(repo RepoDescriptor) error {
	if err := validateName("repo", repo.Name); err != nil {
		return err
	}
	if err := validateName("owner", repo.Owner); err != nil {
		return err
	}
	switch repo.Type {
	case "", TypeUnrestricted, TypeRepositorySuiteDefinition, TypeToolDependencyDefinition:
	default:
		// custom types may be registered: only the syntax is checked here
		if err := validateName("repository type", repo.Type); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUser checks the fields of a user descriptor
func ValidateUser(user UserDescriptor) error {
	if err := validateName("user", user.Name); err != nil {
		return err
	}
	if user.Email != "" && !emailRe.MatchString(user.Email) {
		return fmt.Errorf("invalid email: %q", user.Email)
	}
	return nil
}
