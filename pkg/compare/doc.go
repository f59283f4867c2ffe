// Package compare classifies how the metadata of a repository revision relates to the metadata
// of an ancestor revision.
//
// The outcome is one of:
//   - no metadata: neither revision declares anything
//   - equal: both declare the same tools and dependencies
//   - subset: the current revision only adds to the ancestor
//   - not equal and not subset: something was dropped or changed
package compare
