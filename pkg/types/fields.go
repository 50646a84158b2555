package types

import (
	"fmt"
	"reflect"
)

// Fields is the JSON-compatible body of a stored document.
type Fields map[string]any

// Clone returns a copy of f. Array values are copied; other nested values
// are shared.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		switch arr := v.(type) {
		case []any:
			out[k] = append([]any(nil), arr...)
		case []string:
			out[k] = append([]string(nil), arr...)
		default:
			out[k] = v
		}
	}
	return out
}

// String returns the string value of key, or "" when absent or not a string.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Strings returns the string elements of the array at key. Non-string
// elements are skipped.
func (f Fields) Strings(key string) []string {
	var out []string
	switch arr := f[key].(type) {
	case []string:
		out = append(out, arr...)
	case []any:
		for _, v := range arr {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Matches reports whether every filter key is present in f with an equal
// value.
func (f Fields) Matches(filter Fields) bool {
	for k, want := range filter {
		got, ok := f[k]
		if !ok {
			return false
		}
		if !equalValue(got, want) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	return reflect.DeepEqual(a, b)
}

// ApplyPatch mutates f according to p. Push adds the value unless it is
// already present; Pull removes every occurrence. A missing field is created
// on Push and ignored on Pull. Returns ErrNotArray when the field holds a
// non-array value.
func (f Fields) ApplyPatch(p Patch) error {
	if p.Field == "" {
		return fmt.Errorf("%w: empty patch field", ErrInvalidData)
	}
	current, err := arrayValue(f[p.Field])
	if err != nil {
		return fmt.Errorf("%s: %w", p.Field, err)
	}

	switch p.Op {
	case PatchPush:
		for _, v := range current {
			if equalValue(v, p.Value) {
				return nil
			}
		}
		f[p.Field] = append(current, p.Value)
	case PatchPull:
		if _, ok := f[p.Field]; !ok {
			return nil
		}
		kept := make([]any, 0, len(current))
		for _, v := range current {
			if !equalValue(v, p.Value) {
				kept = append(kept, v)
			}
		}
		f[p.Field] = kept
	default:
		return fmt.Errorf("%w: unknown patch op %d", ErrInvalidData, p.Op)
	}
	return nil
}

// arrayValue copies an array field. Elements keep their stored type.
func arrayValue(v any) ([]any, error) {
	switch arr := v.(type) {
	case nil:
		return nil, nil
	case []string:
		out := make([]any, len(arr))
		for i, s := range arr {
			out[i] = s
		}
		return out, nil
	case []any:
		return append([]any(nil), arr...), nil
	default:
		return nil, ErrNotArray
	}
}
