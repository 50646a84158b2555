// Package contextref installs polymorphic parent references on a model.
//
// A child document carries context_type, the parent's model name, and
// context_id, the parent's id. Install declares both fields on the child's
// schema, validates context_type, and binds the child's lifecycle so every
// parent keeps an array of its children's ids in a field named after the
// child model: a Comment under a Post appears in the Post's "comments".
//
// Install also adds the conveniences built on the same two fields: shortcut
// accessors per listed parent type, a serializer that collapses the pair into
// one key, and a query helper that accepts that key.
package contextref
