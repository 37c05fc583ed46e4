// Package fields provides composable path and coercion descriptors for
// extracting typed data out of decoded value trees. A field is pure data:
// it holds no reference to any tree, never mutates the one it is applied to,
// and the same field can be reused concurrently across responses.
package fields

import (
	"fmt"
	"strings"

	"github.com/influx6/faunalink"
)

//==============================================================================

// Step defines a single descent step of a field path, either an object key
// or an array index.
type Step interface {
	fmt.Stringer
	descend(faunalink.Value) (faunalink.Value, bool)
}

// Key returns a step that descends into an object by the giving key.
func Key(k string) Step {
	return keyStep(k)
}

// Index returns a step that descends into an array by the giving index.
func Index(i int) Step {
	return indexStep(i)
}

type keyStep string

// String returns the key this step descends by.
func (k keyStep) String() string {
	return string(k)
}

// descend walks into an object field, failing on any other variant or on a
// missing key.
func (k keyStep) descend(v faunalink.Value) (faunalink.Value, bool) {
	obj, ok := v.(faunalink.ObjectV)
	if !ok {
		return nil, false
	}

	out, ok := obj.Fields[string(k)]
	return out, ok
}

type indexStep int

// String returns the index this step descends by.
func (i indexStep) String() string {
	return fmt.Sprintf("%d", int(i))
}

// descend walks into an array element, failing on any other variant or on an
// out of range index.
func (i indexStep) descend(v faunalink.Value) (faunalink.Value, bool) {
	arr, ok := v.(faunalink.ArrayV)
	if !ok || int(i) < 0 || int(i) >= len(arr) {
		return nil, false
	}

	return arr[int(i)], true
}

//==============================================================================

// FailKind classifies why an extraction stopped.
type FailKind int

const (
	// NotFound covers a missing key, an out of range index, and a descent
	// into the wrong variant; callers cannot tell these apart.
	NotFound FailKind = iota

	// TypeMismatch covers a terminal coercion rejecting the variant it was
	// handed.
	TypeMismatch
)

// Failure describes the exact step at which an extraction failed and why.
type Failure struct {
	Kind   FailKind
	Path   []Step
	Expect string
	Got    string
}

// Error renders the failure with its full path.
func (f *Failure) Error() string {
	if f.Kind == NotFound {
		return fmt.Sprintf("fields: value not found at [%s]", renderPath(f.Path))
	}

	return fmt.Sprintf("fields: type mismatch at [%s]: want %s, got %s", renderPath(f.Path), f.Expect, f.Got)
}

// renderPath joins the step names of a failure path.
func renderPath(steps []Step) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		parts = append(parts, s.String())
	}

	return strings.Join(parts, " ")
}

//==============================================================================

// Field describes a reusable extraction path over a value tree.
type Field struct {
	steps []Step
}

// Root is the no-op field returning the node it is applied to unchanged. It
// is the base every composition starts from.
var Root = Field{}

// At returns a new field descending through the giving steps after this
// field's own; At(a).At(b) is the same field as At(a, b).
func (f Field) At(steps ...Step) Field {
	out := make([]Step, 0, len(f.steps)+len(steps))
	out = append(out, f.steps...)
	out = append(out, steps...)

	return Field{steps: out}
}

// Extract walks the field's path over the giving tree, returning the node it
// lands on or a failure naming the step that stopped it.
func (f Field) Extract(root faunalink.Value) (faunalink.Value, *Failure) {
	return descend(root, nil, f.steps)
}

// descend walks the steps, reporting failures with the prefix prepended to
// the walked portion of the path.
func descend(root faunalink.Value, prefix []Step, steps []Step) (faunalink.Value, *Failure) {
	current := root

	for ind, step := range steps {
		next, ok := step.descend(current)
		if !ok {
			return nil, &Failure{Kind: NotFound, Path: joinPath(prefix, steps[:ind+1])}
		}

		current = next
	}

	return current, nil
}

// joinPath copies the two path fragments into a fresh slice.
func joinPath(prefix []Step, steps []Step) []Step {
	out := make([]Step, 0, len(prefix)+len(steps))
	out = append(out, prefix...)
	out = append(out, steps...)

	return out
}

//==============================================================================

// Coercion converts a terminal node into a typed result, naming the variant
// it expects for mismatch reports.
type Coercion[T any] struct {
	Expect string
	Fn     func(faunalink.Value) (T, bool)
}

// Typed pairs a field path with a terminal conversion, yielding a typed
// result or a structured failure.
type Typed[T any] struct {
	field Field
	run   func(v faunalink.Value, at []Step) (T, *Failure)
}

// To attaches the giving coercion to the end of a field path.
func To[T any](f Field, c Coercion[T]) Typed[T] {
	return Typed[T]{
		field: f,
		run: func(v faunalink.Value, at []Step) (T, *Failure) {
			out, ok := c.Fn(v)
			if !ok {
				var zero T
				return zero, &Failure{Kind: TypeMismatch, Path: at, Expect: c.Expect, Got: faunalink.Tag(v)}
			}

			return out, nil
		},
	}
}

// Extract applies the typed field to the giving tree.
func (t Typed[T]) Extract(root faunalink.Value) (T, *Failure) {
	return t.extractAt(root, nil)
}

// extractAt applies the typed field below a path prefix, used so nested
// compositions report full paths.
func (t Typed[T]) extractAt(root faunalink.Value, prefix []Step) (T, *Failure) {
	current, failure := descend(root, prefix, t.field.steps)
	if failure != nil {
		var zero T
		return zero, failure
	}

	return t.run(current, joinPath(prefix, t.field.steps))
}

//==============================================================================

// Collect maps the sub field over every element of the array the giving
// field lands on, preserving order and stopping at the first element that
// fails, with that element's index appended to the failure path.
func Collect[T any](f Field, sub Typed[T]) Typed[[]T] {
	return Typed[[]T]{
		field: f,
		run: func(v faunalink.Value, at []Step) ([]T, *Failure) {
			arr, ok := v.(faunalink.ArrayV)
			if !ok {
				return nil, &Failure{Kind: TypeMismatch, Path: at, Expect: "ArrayV", Got: faunalink.Tag(v)}
			}

			out := make([]T, 0, len(arr))

			for ind, item := range arr {
				got, failure := sub.extractAt(item, joinPath(at, []Step{Index(ind)}))
				if failure != nil {
					return nil, failure
				}

				out = append(out, got)
			}

			return out, nil
		},
	}
}

// Pairing holds the two results of a Both composition.
type Pairing[A, B any] struct {
	First  A
	Second B
}

// Both applies two typed fields to the same node, combining their results
// into a pairing and failing with whichever field fails first.
func Both[A, B any](a Typed[A], b Typed[B]) Typed[Pairing[A, B]] {
	return Typed[Pairing[A, B]]{
		run: func(v faunalink.Value, at []Step) (Pairing[A, B], *Failure) {
			var out Pairing[A, B]

			first, failure := a.extractAt(v, at)
			if failure != nil {
				return out, failure
			}

			second, failure := b.extractAt(v, at)
			if failure != nil {
				return out, failure
			}

			out.First = first
			out.Second = second
			return out, nil
		},
	}
}
