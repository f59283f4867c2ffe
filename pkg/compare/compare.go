package compare

import (
	"sort"
	"strings"

	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

// TipOnlyLookup tells if a repository served by some tool shed is of a type whose
// metadata always tracks its tip.
type TipOnlyLookup interface {
	IsTipOnlyRepository(toolShed, name, owner string) bool
}

// TipOnlyLookupFunc adapts a function to the TipOnlyLookup interface
type TipOnlyLookupFunc func(toolShed, name, owner string) bool

// IsTipOnlyRepository calls f
func (f TipOnlyLookupFunc) IsTipOnlyRepository(toolShed, name, owner string) bool {
	return f(toolShed, name, owner)
}

var noTipOnly = TipOnlyLookupFunc(func(_, _, _ string) bool { return false })

// Comparator compares metadata documents
type Comparator struct {
	tipOnly TipOnlyLookup
	l       *zap.Logger
}

// New builds a comparator
func New(opts ...Option) *Comparator {
	c := &Comparator{
		tipOnly: noTipOnly,
		l:       zap.NewNop(),
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// Compare classifies the relationship of the ancestor document with the current one
func (c *Comparator) Compare(ancestor, current model.Metadata) model.Comparison {
	if ancestor.IsEmpty() && current.IsEmpty() {
		return model.NoMetadata
	}

	ancestorGUIDs := ancestor.GUIDs()
	currentGUIDs := current.GUIDs()
	toolsEqual := equalStrings(ancestorGUIDs, currentGUIDs)

	rd := c.CompareRepositoryDependencies(ancestor.Dependencies(), current.Dependencies())
	td := CompareToolDependencies(ancestor.ToolDependencies, current.ToolDependencies)
	dm := CompareDataManagers(ancestor.DataManagers, current.DataManagers)

	c.l.Debug("compared metadata",
		zap.Bool("tools_equal", toolsEqual),
		zap.Stringer("repository_dependencies", rd),
		zap.Stringer("tool_dependencies", td),
		zap.Stringer("data_managers", dm),
	)

	if toolsEqual && rd == model.Equal && td == model.Equal && dm == model.Equal {
		return model.Equal
	}
	if rd.IsSubsetCompatible() && td.IsSubsetCompatible() && dm.IsSubsetCompatible() &&
		containsAll(currentGUIDs, ancestorGUIDs) {
		return model.Subset
	}
	return model.NotEqualAndNotSubset
}

// CompareRepositoryDependencies compares lists of repository dependency tuples.
//
// A tuple from the ancestor list which differs from a tuple of the current list only by its changeset
// revision is tolerated when the repository it refers to is tip-only.
func (c *Comparator) CompareRepositoryDependencies(ancestor, current []model.DependencyTuple) model.Comparison {
	if len(ancestor) > len(current) {
		return model.NotEqualAndNotSubset
	}

	var drifted bool
	for _, at := range ancestor {
		if matchAny(at, current) {
			continue
		}
		if !c.tipOnlyDrift(at, current) {
			return model.NotEqualAndNotSubset
		}
		drifted = true
	}

	if !drifted && len(ancestor) == len(current) {
		return model.Equal
	}
	return model.Subset
}

func matchAny(tuple model.DependencyTuple, tuples []model.DependencyTuple) bool {
	for _, candidate := range tuples {
		if tuple.Matches(candidate) {
			return true
		}
	}
	return false
}

func (c *Comparator) tipOnlyDrift(tuple model.DependencyTuple, tuples []model.DependencyTuple) bool {
	for _, candidate := range tuples {
		if !tuple.SameRepository(candidate) {
			continue
		}
		if c.tipOnly.IsTipOnlyRepository(model.StripProtocol(candidate.ToolShed), candidate.Name, candidate.Owner) {
			c.l.Debug("tolerated changeset drift on tip-only repository",
				zap.Stringer("ancestor", tuple),
				zap.Stringer("current", candidate),
			)
			return true
		}
	}
	return false
}

// CompareToolDependencies compares tool dependency definitions by key.
//
// Changes of type or readme for a given key are not considered.
func CompareToolDependencies(ancestor, current map[string]model.ToolDependency) model.Comparison {
	if len(ancestor) > len(current) {
		return model.NotEqualAndNotSubset
	}
	for key := range ancestor {
		if _, ok := current[key]; !ok {
			return model.NotEqualAndNotSubset
		}
	}
	if len(ancestor) == len(current) {
		return model.Equal
	}
	return model.Subset
}

// CompareDataManagers compares data manager entries as sets
func CompareDataManagers(ancestor, current map[string]model.DataManager) model.Comparison {
	as := dataManagerSet(ancestor)
	cs := dataManagerSet(current)

	for k := range as {
		if _, ok := cs[k]; !ok {
			return model.NotEqualAndNotSubset
		}
	}
	if len(as) == len(cs) {
		return model.Equal
	}
	return model.Subset
}

type dataManagerKey struct {
	key, tables, guid, version, name, id string
}

func dataManagerSet(managers map[string]model.DataManager) map[dataManagerKey]struct{} {
	set := make(map[dataManagerKey]struct{}, len(managers))
	for key, dm := range managers {
		tables := append([]string(nil), dm.DataTables...)
		sort.Strings(tables)
		set[dataManagerKey{
			key:     key,
			tables:  strings.Join(dedup(tables), "\x00"),
			guid:    dm.GUID,
			version: dm.Version,
			name:    dm.Name,
			id:      dm.ID,
		}] = struct{}{}
	}
	return set
}

// dedup removes consecutive duplicates from a sorted slice
func dedup(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsAll(set, subset []string) bool {
	index := make(map[string]struct{}, len(set))
	for _, s := range set {
		index[s] = struct{}{}
	}
	for _, s := range subset {
		if _, ok := index[s]; !ok {
			return false
		}
	}
	return true
}
