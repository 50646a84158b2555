// Package refsync keeps polymorphic context references consistent between
// child documents and the back-reference arrays of their parents.
//
// A child names its parent through (context_type, context_id). The parent
// lists its children in an array field named after the child model. There
// is no cross-document transaction: every parent mutation is a single
// ConditionalPatch, and a move is a strictly ordered remove-then-add.
//
// The package is split the same way the work is:
//
//   - TypeValidator decides which context types are legal.
//   - Capture and Refresh maintain the per-document cached context.
//   - Synchronizer issues one add or remove against one parent.
//   - Binder classifies lifecycle transitions and drives the move protocol.
package refsync
