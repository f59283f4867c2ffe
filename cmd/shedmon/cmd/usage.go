package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// Documentation formats
const (
	docMarkdown = "markdown"
	docMan      = "man"
)

// markdownHeader adds the version of shedmon at the top of each page
func markdownHeader(filename string) string {
	name := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	return fmt.Sprintf("<!-- %s, shedmon %s -->\n\n", strings.ReplaceAll(name, "_", " "), NewVersionInfo().Version)
}

// generateDocs writes the documentation of all commands into dir
func generateDocs(root *cobra.Command, format, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	switch format {
	case docMarkdown:
		return doc.GenMarkdownTreeCustom(root, dir, markdownHeader, func(s string) string { return s })
	case docMan:
		return doc.GenManTree(root, &doc.GenManHeader{
			Title:   "SHEDMON",
			Section: "1",
			Source:  "shedmon " + NewVersionInfo().Version,
		}, dir)
	default:
		return fmt.Errorf("unsupported documentation format %q", format)
	}
}

var docCmd = &cobra.Command{
	Use:   "usage",
	Short: "Generates the documentation of shedmon commands",
	Long: `Generates one page per command, as markdown or as man pages.

Markdown pages link to each other and carry the version of shedmon they document.`,
	Example: `% shedmon usage --target-dir ./docs
% shedmon usage --format man --target-dir ./man/man1`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := generateDocs(rootCmd, shedmonFlags.doc.docFormat, shedmonFlags.doc.docTarget); err != nil {
			wrapFatalln("generating documentation", err)
		}
	},
}

func init() {
	addTargetFlag(docCmd)
	addDocFormatFlag(docCmd)
	rootCmd.AddCommand(docCmd)
}
