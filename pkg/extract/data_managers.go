package extract

import (
	"path"

	"github.com/toolshed/shedmon/pkg/model"
)

// dataManagers loads data_manager_conf.xml and returns the tool configs used by data managers
func (x *extraction) dataManagers() map[string]struct{} {
	used := make(map[string]struct{})
	if !x.exists(DataManagerConfFile) {
		return used
	}
	content, err := x.read(DataManagerConfFile)
	if err != nil {
		x.addInvalid(DataManagerConfFile, "Error reading file: %v", err)
		return used
	}
	root, err := parseNode(content)
	if err != nil {
		x.addInvalid(DataManagerConfFile, "Error parsing XML: %v", err)
		return used
	}

	for _, elem := range root.children("data_manager") {
		id := elem.attr("id")
		if id == "" {
			x.addInvalid(DataManagerConfFile, "Data Manager entry is missing id attribute")
			continue
		}
		toolFile := elem.attr("tool_file")
		if toolFile == "" {
			x.addInvalid(DataManagerConfFile, "Data Manager %s is missing tool_file attribute", id)
			continue
		}
		toolFile = path.Clean(toolFile)
		tool, ok := x.tools[toolFile]
		if !ok {
			x.addInvalid(DataManagerConfFile, "Data Manager %s refers to an invalid or missing tool config: %s", id, toolFile)
			continue
		}
		if _, exists := x.metadata.DataManagers[id]; exists {
			x.addInvalid(DataManagerConfFile, "Data Manager id %s is defined more than once", id)
			continue
		}

		version := elem.attr("version")
		if version == "" {
			version = tool.Version
		}
		var tables []string
		for _, table := range elem.children("data_table") {
			if name := table.attr("name"); name != "" {
				tables = append(tables, name)
			}
		}

		if x.metadata.DataManagers == nil {
			x.metadata.DataManagers = make(map[string]model.DataManager)
		}
		x.metadata.DataManagers[id] = model.DataManager{
			ID:             id,
			Name:           tool.Name,
			GUID:           x.guid(id, version),
			Version:        version,
			ToolConfigFile: toolFile,
			DataTables:     tables,
			ToolGUID:       tool.GUID,
		}
		used[toolFile] = struct{}{}
	}
	return used
}
