package element

import (
	"fmt"

	"github.com/dreamerjackson/browser/filter"
)

// Field is one declared binding of an item: how to compute a value and
// where to store it in the object.
type Field[T any] struct {
	Name string
	Set  func(s *Scope, obj *T) error
}

// Bind stores the result of a filter.
//
//	element.Bind("label", filter.CleanText(filter.Select("td.label")), func(a *Account, v string) { a.Label = v })
func Bind[T, V any](name string, f filter.Filter[V], assign func(obj *T, v V)) Field[T] {
	return Field[T]{
		Name: name,
		Set: func(s *Scope, obj *T) error {
			v, err := f.Filter(s)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			assign(obj, v)
			return nil
		},
	}
}

// BindFunc stores the result of a function of the scope and the object
// being built.
func BindFunc[T, V any](name string, fn func(s *Scope, obj *T) (V, error), assign func(obj *T, v V)) Field[T] {
	return Field[T]{
		Name: name,
		Set: func(s *Scope, obj *T) error {
			v, err := fn(s, obj)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			assign(obj, v)
			return nil
		},
	}
}

// BindValue stores a literal.
func BindValue[T, V any](name string, v V, assign func(obj *T, v V)) Field[T] {
	return Field[T]{
		Name: name,
		Set: func(_ *Scope, obj *T) error {
			assign(obj, v)
			return nil
		},
	}
}
