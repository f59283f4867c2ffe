package extract

import (
	"encoding/xml"
	"strings"

	"github.com/toolshed/shedmon/pkg/model"
)

// tool loads a tool config. XML files which are not tool configs are ignored.
func (x *extraction) tool(rel string) {
	content, err := x.read(rel)
	if err != nil {
		x.addInvalid(rel, "Error reading file: %v", err)
		return
	}
	root, err := rootElement(content)
	if err != nil {
		x.addInvalid(rel, "Error parsing XML: %v", err)
		return
	}
	if root != "tool" {
		return
	}

	var config toolXML
	if err := xml.Unmarshal(content, &config); err != nil {
		x.addInvalid(rel, "Error parsing tool config: %v", err)
		x.metadata.InvalidTools = append(x.metadata.InvalidTools, rel)
		return
	}

	var missing []string
	for _, field := range []struct{ name, value string }{
		{"id", config.ID},
		{"name", config.Name},
		{"version", config.Version},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		x.addInvalid(rel, "Tool config is missing required attributes: %s", strings.Join(missing, ", "))
		x.metadata.InvalidTools = append(x.metadata.InvalidTools, rel)
		return
	}

	record := model.ToolRecord{
		ID:         strings.TrimSpace(config.ID),
		Name:       strings.TrimSpace(config.Name),
		Version:    strings.TrimSpace(config.Version),
		ToolConfig: rel,
	}
	record.GUID = x.guid(record.ID, record.Version)

	for existing, other := range x.tools {
		if other.GUID == record.GUID {
			x.addInvalid(rel, "Tool id %s version %s is already defined in %s", record.ID, record.Version, existing)
			x.metadata.InvalidTools = append(x.metadata.InvalidTools, rel)
			return
		}
	}

	for _, req := range config.Requirements {
		reqType := strings.TrimSpace(req.Type)
		if reqType == "" {
			reqType = "package"
		}
		record.Requirements = append(record.Requirements, model.Requirement{
			Name:    strings.TrimSpace(req.Name),
			Version: strings.TrimSpace(req.Version),
			Type:    reqType,
		})
	}
	x.tools[rel] = record
}
