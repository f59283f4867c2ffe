// Package extract computes the metadata of a repository revision from its file tree.
//
// The following files are recognized:
//   - tool configs: any XML file with a <tool> root element
//   - repository_dependencies.xml, at the root of the tree
//   - tool_dependencies.xml, at the root of the tree
//   - data_manager_conf.xml, at the root of the tree
//
// Files which cannot be processed are reported as invalid files: extraction carries on with the other files.
package extract
