package registry

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/toolshed/shedmon/pkg/model"
	"github.com/toolshed/shedmon/pkg/registry/status"
	"gopkg.in/yaml.v2"
)

// TypeDefinition declares a repository type
type TypeDefinition struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty"`
	TipOnly     bool   `toml:"tip_only" yaml:"tip_only"`
}

// typesFile is the layout of a repository types definition file, e.g. in TOML:
//
//	[[types]]
//	name = "repository_suite_definition"
//	tip_only = true
type typesFile struct {
	Types []TypeDefinition `toml:"types" yaml:"types"`
}

// Types is a registry of repository types
type Types struct {
	mx    sync.RWMutex
	types map[string]TypeDefinition
}

// DefaultTypes knows about the builtin repository types
func DefaultTypes() *Types {
	t := &Types{types: make(map[string]TypeDefinition, 3)}
	t.Register(TypeDefinition{
		Name:        model.TypeUnrestricted,
		Description: "Unrestricted",
	})
	t.Register(TypeDefinition{
		Name:        model.TypeRepositorySuiteDefinition,
		Description: "Repository suite definition",
		TipOnly:     true,
	})
	t.Register(TypeDefinition{
		Name:        model.TypeToolDependencyDefinition,
		Description: "Tool dependency definition",
		TipOnly:     true,
	})
	return t
}

// LoadTypes loads type definitions from a TOML or YAML file, on top of the builtin types.
//
// The format is determined by the file extension.
func LoadTypes(fs afero.Fs, pth string) (*Types, error) {
	content, err := afero.ReadFile(fs, pth)
	if err != nil {
		return nil, status.ErrInvalidTypes.Wrap(err)
	}

	var defs typesFile
	switch strings.ToLower(filepath.Ext(pth)) {
	case ".toml":
		err = toml.Unmarshal(content, &defs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &defs)
	default:
		return nil, status.ErrInvalidTypes.Wrapf("unsupported file extension for %q", pth)
	}
	if err != nil {
		return nil, status.ErrInvalidTypes.Wrap(err)
	}

	t := DefaultTypes()
	for _, def := range defs.Types {
		if def.Name == "" {
			return nil, status.ErrInvalidTypes.Wrapf("type without a name in %q", pth)
		}
		t.Register(def)
	}
	return t, nil
}

// Register a type, replacing any former definition with the same name
func (t *Types) Register(def TypeDefinition) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.types[def.Name] = def
}

// IsTipOnly tells if the metadata of repositories of this type always tracks their tip.
//
// The empty type stands for unrestricted.
func (t *Types) IsTipOnly(repoType string) bool {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.types[repoType].TipOnly
}

// Has tells if the type is registered
func (t *Types) Has(repoType string) bool {
	if repoType == "" {
		return true
	}
	t.mx.RLock()
	defer t.mx.RUnlock()
	_, ok := t.types[repoType]
	return ok
}

// List all type definitions, sorted by name
func (t *Types) List() []TypeDefinition {
	t.mx.RLock()
	defer t.mx.RUnlock()
	defs := make([]TypeDefinition, 0, len(t.types))
	for _, def := range t.types {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
