package types

// PatchOp is the kind of array mutation a Patch performs.
type PatchOp int

const (
	// PatchPush adds a value to an array field.
	PatchPush PatchOp = iota + 1
	// PatchPull removes a value from an array field.
	PatchPull
)

func (o PatchOp) String() string {
	switch o {
	case PatchPush:
		return "push"
	case PatchPull:
		return "pull"
	default:
		return "unknown"
	}
}

// Patch describes one array mutation on one field of one document.
type Patch struct {
	Op    PatchOp
	Field string
	Value string
}

// Push returns a patch adding value to field.
func Push(field, value string) Patch {
	return Patch{Op: PatchPush, Field: field, Value: value}
}

// Pull returns a patch removing value from field.
func Pull(field, value string) Patch {
	return Patch{Op: PatchPull, Field: field, Value: value}
}
