// Package types defines the value types, host storage interfaces, plugin
// options, and standard error types shared by the contextref packages.
//
// A child document carries a Context (context_type, context_id) naming an
// arbitrary parent document. The parent keeps the ids of its children in a
// back-reference array field. Stores mutate that field only through
// Patcher.ConditionalPatch.
package types
