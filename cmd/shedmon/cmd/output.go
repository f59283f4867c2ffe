package cmd

import (
	"fmt"
	"io"
	"text/template"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	repoTemplate     = template.Must(template.New("repo").Parse(`{{.Owner}}/{{.Name}} , {{.Type}} , {{.ID}} , {{.Timestamp}}` + "\n"))
	revisionTemplate = template.Must(template.New("revision").Parse(`{{.Number}}:{{.ID}} , {{.Timestamp}} , {{.Message}}` + "\n"))
	snapshotTemplate = template.Must(template.New("snapshot").Parse(
		`{{.ChangesetRevision}} , {{.ID}} , downloadable={{.Downloadable}} , tools={{len .Metadata.Tools}} , ` +
			`repository_dependencies={{len .Metadata.Dependencies}} , tool_dependencies={{len .Metadata.ToolDependencies}} , ` +
			`data_managers={{len .Metadata.DataManagers}}` + "\n"))
	invalidFileTemplate = template.Must(template.New("invalid").Parse(
		`{{if .Changeset}}{{.Changeset}} , {{end}}{{.Path}} , {{.Message}}` + "\n"))
)

// render a value in the requested output format. Text output uses a template per item, or YAML when no template is given.
func render(w io.Writer, v interface{}, items []interface{}, tmpl *template.Template) error {
	switch shedmonFlags.root.output {
	case outputJSON:
		content, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(content))
		return err

	case outputYAML:
		return renderYAML(w, v)

	case outputText, "":
		if tmpl == nil {
			return renderYAML(w, v)
		}
		for _, item := range items {
			if err := tmpl.Execute(w, item); err != nil {
				return fmt.Errorf("executing template: %w", err)
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported output format %q", shedmonFlags.root.output)
	}
}

func renderYAML(w io.Writer, v interface{}) error {
	content, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

func mustRender(w io.Writer, v interface{}, items []interface{}, tmpl *template.Template) {
	if err := render(w, v, items, tmpl); err != nil {
		wrapFatalln("rendering output", err)
	}
}
