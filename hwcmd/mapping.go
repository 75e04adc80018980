package hwcmd

import (
	"errors"
	"fmt"
)

// Mapping engine errors.
var (
	// ErrNilParams is returned when Apply is called without a parameter record.
	ErrNilParams = errors.New("hwcmd: nil parameter record")

	// ErrNilTemplate is returned when Apply is called without a command template.
	ErrNilTemplate = errors.New("hwcmd: nil command template")

	// ErrUnresolvedHook is returned when a list still holding an extension
	// point is applied. Lists must go through Resolve first.
	ErrUnresolvedHook = errors.New("hwcmd: unresolved extension hook")
)

// Expr computes a field value from a parameter record. It also receives the
// template so far, so a step may read back a field written by an earlier step.
type Expr[P any] func(p *P, t *Template) uint32

// Step is one entry of a field list: either a field assignment or a named
// extension point.
type Step[P any] struct {
	field Field
	expr  Expr[P]
	hook  string
}

// Map returns a step assigning expr to field f.
func Map[P any](f Field, expr Expr[P]) Step[P] {
	return Step[P]{field: f, expr: expr}
}

// Hook returns an extension point named name. Resolve replaces it with the
// steps a generation registers under that name.
func Hook[P any](name string) Step[P] {
	return Step[P]{hook: name}
}

// Field returns the destination field of an assignment step.
func (s Step[P]) Field() Field { return s.field }

// HookName returns the extension point name, or "" for assignments.
func (s Step[P]) HookName() string { return s.hook }

// FieldList is an ordered list of steps. Order is significant: steps run in
// declaration order and later expressions may read fields set earlier.
type FieldList[P any] []Step[P]

// Extensions maps extension point names to the steps inserted there.
type Extensions[P any] map[string]FieldList[P]

// Resolve returns a flat copy of l with each hook replaced by ext[name].
// Hooks with no registered extension disappear. Extension lists are inserted
// as-is; hooks nested inside them are not expanded.
func (l FieldList[P]) Resolve(ext Extensions[P]) FieldList[P] {
	out := make(FieldList[P], 0, len(l))
	for _, s := range l {
		if s.hook == "" {
			out = append(out, s)
			continue
		}
		out = append(out, ext[s.hook]...)
	}
	return out
}

// Fields returns the destination fields of the assignment steps, in order.
func (l FieldList[P]) Fields() []Field {
	fields := make([]Field, 0, len(l))
	for _, s := range l {
		if s.hook == "" {
			fields = append(fields, s.field)
		}
	}
	return fields
}

// Apply evaluates every step against p and writes the results into t.
// The first failure stops the list.
func (l FieldList[P]) Apply(p *P, t *Template) error {
	if p == nil {
		return ErrNilParams
	}
	if t == nil {
		return ErrNilTemplate
	}
	for _, s := range l {
		if s.hook != "" {
			return fmt.Errorf("%w: %s in %s", ErrUnresolvedHook, s.hook, t.Name())
		}
		t.Set(s.field, s.expr(p, t))
	}
	return nil
}
