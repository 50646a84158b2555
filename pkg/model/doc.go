// Package model is the document system the context plugin binds to.
//
// A Schema names a model and carries its declared fields, required fields,
// field validators, serializers, and an ordered list of hooks per lifecycle
// phase. Schemas are registered in an explicit Registry that is populated at
// startup and sealed before requests are served. A Repository loads, finds,
// saves and deletes Documents against a types.Store, running the phases in
// order and waiting on each hook.
package model
