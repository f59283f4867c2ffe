package extract

import (
	"context"

	"github.com/toolshed/shedmon/pkg/model"
	"go.uber.org/zap"
)

// accumulator collects repository dependencies during the traversal of a definition.
//
// It is passed by value down the traversal and returned, never shared.
type accumulator struct {
	valid   []model.DependencyTuple
	invalid []model.DependencyTuple
}

func (a accumulator) merge(other accumulator) accumulator {
	a.valid = append(a.valid, other.valid...)
	a.invalid = append(a.invalid, other.invalid...)
	return a
}

func declaration(elem node) model.DependencyTuple {
	return model.DependencyTuple{
		ToolShed:                   elem.attr("toolshed"),
		Name:                       elem.attr("name"),
		Owner:                      elem.attr("owner"),
		ChangesetRevision:          elem.attr("changeset_revision"),
		PriorInstallationRequired:  elem.attr("prior_installation_required"),
		OnlyIfCompilingContainedTD: elem.attr("only_if_compiling_contained_td"),
	}
}

func (e *Extractor) resolveElement(ctx context.Context, elem node, acc accumulator) (accumulator, error) {
	tuple, valid, err := e.resolver.Resolve(ctx, declaration(elem))
	if err != nil {
		return acc, err
	}
	if valid {
		acc.valid = append(acc.valid, tuple)
	} else {
		e.l.Debug("invalid repository dependency", zap.Stringer("dependency", tuple))
		acc.invalid = append(acc.invalid, tuple)
	}
	return acc, nil
}

// collectRepositoryElements resolves all <repository> elements found beneath some element, depth first
func (e *Extractor) collectRepositoryElements(ctx context.Context, elem node, acc accumulator) (accumulator, error) {
	for _, child := range elem.Nodes {
		var err error
		if child.XMLName.Local == "repository" {
			acc, err = e.resolveElement(ctx, child, acc)
		} else {
			acc, err = e.collectRepositoryElements(ctx, child, acc)
		}
		if err != nil {
			return acc, err
		}
	}
	return acc, nil
}

// addRepositoryDependencies merges resolved dependencies into the metadata document
func (x *extraction) addRepositoryDependencies(description string, acc accumulator) {
	for _, tuple := range acc.valid {
		if x.metadata.RepositoryDependencies == nil {
			x.metadata.RepositoryDependencies = &model.RepositoryDependencies{}
		}
		if description != "" && x.metadata.RepositoryDependencies.Description == "" {
			x.metadata.RepositoryDependencies.Description = description
		}
		if !containsTuple(x.metadata.RepositoryDependencies.Dependencies, tuple) {
			x.metadata.RepositoryDependencies.Dependencies = append(x.metadata.RepositoryDependencies.Dependencies, tuple)
		}
	}
	for _, tuple := range acc.invalid {
		if x.metadata.InvalidRepositoryDependencies == nil {
			x.metadata.InvalidRepositoryDependencies = &model.RepositoryDependencies{Description: description}
		}
		x.metadata.InvalidRepositoryDependencies.Dependencies = append(x.metadata.InvalidRepositoryDependencies.Dependencies, tuple)
	}
}

func containsTuple(tuples []model.DependencyTuple, tuple model.DependencyTuple) bool {
	for _, t := range tuples {
		if t.Matches(tuple) {
			return true
		}
	}
	return false
}

// repositoryDependencies loads repository_dependencies.xml
func (e *Extractor) repositoryDependencies(ctx context.Context, x *extraction) error {
	if !x.exists(RepositoryDependenciesFile) {
		return nil
	}
	content, err := x.read(RepositoryDependenciesFile)
	if err != nil {
		x.addInvalid(RepositoryDependenciesFile, "Error reading file: %v", err)
		return nil
	}
	root, err := parseNode(content)
	if err != nil {
		x.addInvalid(RepositoryDependenciesFile, "Error parsing XML: %v", err)
		return nil
	}

	var acc accumulator
	for _, elem := range root.children("repository") {
		if acc, err = e.resolveElement(ctx, elem, acc); err != nil {
			return err
		}
	}
	for _, tuple := range acc.invalid {
		x.addInvalid(RepositoryDependenciesFile, "%s", tuple.Error)
	}
	x.addRepositoryDependencies(root.attr("description"), acc)
	return nil
}

// toolDependencies loads tool_dependencies.xml.
//
// Packages are keyed {name}/{version}, environment variables {name}/set_environment. <repository> elements nested in
// a package declare complex repository dependencies: a package with some invalid complex dependency is itself invalid.
func (e *Extractor) toolDependencies(ctx context.Context, x *extraction) error {
	if !x.exists(ToolDependenciesFile) {
		return nil
	}
	content, err := x.read(ToolDependenciesFile)
	if err != nil {
		x.addInvalid(ToolDependenciesFile, "Error reading file: %v", err)
		return nil
	}
	root, err := parseNode(content)
	if err != nil {
		x.addInvalid(ToolDependenciesFile, "Error parsing XML: %v", err)
		return nil
	}

	var complexDeps accumulator
	for _, elem := range root.Nodes {
		switch elem.XMLName.Local {
		case "package":
			dep := model.ToolDependency{
				Name:    elem.attr("name"),
				Version: elem.attr("version"),
				Type:    "package",
			}
			if dep.Name == "" || dep.Version == "" {
				x.addInvalid(ToolDependenciesFile, "Package definition is missing its name or version")
				continue
			}
			if readme := elem.children("readme"); len(readme) > 0 {
				dep.Readme = readme[0].text()
			}

			acc, err := e.collectRepositoryElements(ctx, elem, accumulator{})
			if err != nil {
				return err
			}
			complexDeps = complexDeps.merge(acc)

			key := model.ToolDependencyKey(dep.Name, dep.Version)
			if len(acc.invalid) > 0 {
				dep.Error = acc.invalid[0].Error
				x.addInvalid(ToolDependenciesFile, "%s", dep.Error)
				x.addInvalidToolDependency(key, dep)
				continue
			}
			x.addToolDependency(key, dep)

		case "set_environment":
			for _, variable := range elem.children("environment_variable") {
				name := variable.attr("name")
				if name == "" {
					x.addInvalid(ToolDependenciesFile, "Environment variable definition is missing its name")
					continue
				}
				x.addToolDependency(model.ToolDependencyKey(name, "set_environment"), model.ToolDependency{
					Name: name,
					Type: "set_environment",
				})
			}
		}
	}

	x.addRepositoryDependencies("", complexDeps)
	return nil
}

func (x *extraction) addToolDependency(key string, dep model.ToolDependency) {
	if x.metadata.ToolDependencies == nil {
		x.metadata.ToolDependencies = make(map[string]model.ToolDependency)
	}
	x.metadata.ToolDependencies[key] = dep
}

func (x *extraction) addInvalidToolDependency(key string, dep model.ToolDependency) {
	if x.metadata.InvalidToolDependencies == nil {
		x.metadata.InvalidToolDependencies = make(map[string]model.ToolDependency)
	}
	x.metadata.InvalidToolDependencies[key] = dep
}
