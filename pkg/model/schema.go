package model

import (
	"context"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

// Phase is a point in a document's lifecycle where hooks run.
type Phase int

const (
	// BeforePersist runs after validation and before the store write. An
	// error aborts the save.
	BeforePersist Phase = iota
	// AfterPersist runs after a successful store write.
	AfterPersist
	// BeforeDelete runs before the store delete. An error aborts the delete.
	BeforeDelete
	// AfterLoad runs after a document is read from the store.
	AfterLoad

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case BeforePersist:
		return "before_persist"
	case AfterPersist:
		return "after_persist"
	case BeforeDelete:
		return "before_delete"
	case AfterLoad:
		return "after_load"
	default:
		return "unknown"
	}
}

// Hook is invoked for a document at a lifecycle phase.
type Hook func(ctx context.Context, doc *Document) error

// Validator checks one field value. It only runs for fields that hold a
// non-nil value.
type Validator func(ctx context.Context, value any, doc *Document) bool

// Check inspects a whole document before any hook runs. A non-nil error
// fails the save; return a *types.ValidationError for caller mistakes.
type Check func(ctx context.Context, doc *Document) error

// Serializer rewrites the JSON form of a document. It receives a copy of the
// fields and returns the fields to encode.
type Serializer func(doc *Document, out types.Fields) types.Fields

type namedHook struct {
	name string
	fn   Hook
}

type fieldValidator struct {
	field   string
	fn      Validator
	message string
}

// Schema describes one model.
type Schema struct {
	name        string
	fields      map[string]bool
	required    []string
	validators  []fieldValidator
	checks      []Check
	hooks       [phaseCount][]namedHook
	serializers []Serializer
}

// NewSchema returns a schema for model name declaring fields.
func NewSchema(name string, fields ...string) *Schema {
	s := &Schema{name: name, fields: make(map[string]bool)}
	s.Declare(fields...)
	return s
}

// Name returns the model name, which is also its collection name.
func (s *Schema) Name() string {
	return s.name
}

// Declare adds fields to the schema.
func (s *Schema) Declare(fields ...string) {
	for _, f := range fields {
		s.fields[f] = true
	}
}

// HasField reports whether field is declared.
func (s *Schema) HasField(field string) bool {
	return s.fields[field]
}

// Require marks fields as mandatory on save.
func (s *Schema) Require(fields ...string) {
	for _, f := range fields {
		if !slices.Contains(s.required, f) {
			s.required = append(s.required, f)
		}
	}
}

// Validate attaches a validator to field. A failing validator produces a
// *types.ValidationError carrying message.
func (s *Schema) Validate(field string, fn Validator, message string) {
	s.validators = append(s.validators, fieldValidator{field: field, fn: fn, message: message})
}

// Check appends a document-level check. Checks run after field validators,
// in registration order.
func (s *Schema) Check(fn Check) {
	s.checks = append(s.checks, fn)
}

// On appends a named hook to phase. Hooks run in registration order.
func (s *Schema) On(phase Phase, name string, fn Hook) {
	s.hooks[phase] = append(s.hooks[phase], namedHook{name: name, fn: fn})
}

// Hooks returns the hook names registered for phase, in order.
func (s *Schema) Hooks(phase Phase) []string {
	names := make([]string, 0, len(s.hooks[phase]))
	for _, h := range s.hooks[phase] {
		names = append(names, h.name)
	}
	return names
}

// AddSerializer appends a serializer. Serializers run in order, each seeing
// the previous one's output.
func (s *Schema) AddSerializer(fn Serializer) {
	s.serializers = append(s.serializers, fn)
}

// run invokes the hooks of phase in order and stops at the first error,
// which is returned unchanged.
func (s *Schema) run(ctx context.Context, phase Phase, doc *Document) error {
	for _, h := range s.hooks[phase] {
		if err := h.fn(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// check runs required-field, validator and document checks.
func (s *Schema) check(ctx context.Context, doc *Document) error {
	for _, f := range s.required {
		if isEmpty(doc.fields[f]) {
			return &types.ValidationError{
				Field:   f,
				Message: fmt.Sprintf("Path `%s` is required.", f),
			}
		}
	}
	for _, v := range s.validators {
		value, ok := doc.fields[v.field]
		if !ok || value == nil {
			continue
		}
		if !v.fn(ctx, value, doc) {
			return &types.ValidationError{Field: v.field, Message: v.message, Value: value}
		}
	}
	for _, c := range s.checks {
		if err := c(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	default:
		return false
	}
}
