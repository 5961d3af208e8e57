package filter

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrIndex          = errors.New("no element matched")
	ErrColumnNotFound = errors.New("unable to find column")
	ErrEnvNotFound    = errors.New("env value not found")
	ErrInvalidNumber  = errors.New("invalid number")
)

// Scope is the extraction context a filter is evaluated against.
type Scope interface {
	// Selection returns the node the filter runs on.
	Selection() *goquery.Selection
	// Lookup reads a named value from the scope env.
	Lookup(name string) (interface{}, bool)
	// Column returns the index of a logical table column, if the scope
	// belongs to a table.
	Column(name string) (int, bool)
}

// Filter extracts one value from a scope. Filters are chained by giving
// a filter another filter as its input.
type Filter[T any] interface {
	Filter(s Scope) (T, error)
}

type Func[T any] func(s Scope) (T, error)

func (f Func[T]) Filter(s Scope) (T, error) {
	return f(s)
}

// Select queries nodes relative to the scope node.
func Select(query string) Filter[*goquery.Selection] {
	return Func[*goquery.Selection](func(s Scope) (*goquery.Selection, error) {
		return s.Selection().Find(query), nil
	})
}

// Self returns the scope node itself.
func Self() Filter[*goquery.Selection] {
	return Func[*goquery.Selection](func(s Scope) (*goquery.Selection, error) {
		return s.Selection(), nil
	})
}

// Const is a literal binding.
func Const[T any](v T) Filter[T] {
	return Func[T](func(Scope) (T, error) {
		return v, nil
	})
}

// Map applies fn on the output of in.
func Map[In, Out any](in Filter[In], fn func(In) (Out, error)) Filter[Out] {
	return Func[Out](func(s Scope) (Out, error) {
		v, err := in.Filter(s)
		if err != nil {
			var zero Out
			return zero, err
		}
		return fn(v)
	})
}

// Or returns the value of the first filter that does not fail.
func Or[T any](filters ...Filter[T]) Filter[T] {
	return Func[T](func(s Scope) (T, error) {
		var (
			zero T
			errs []error
		)
		for _, f := range filters {
			v, err := f.Filter(s)
			if err == nil {
				return v, nil
			}
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			return zero, ErrIndex
		}
		return zero, errors.Join(errs...)
	})
}

// Env reads a value stored in the scope env by a parse hook or taken
// from the page URL parameters.
func Env[T any](name string) Filter[T] {
	return Func[T](func(s Scope) (T, error) {
		var zero T
		v, ok := s.Lookup(name)
		if !ok {
			return zero, fmt.Errorf("%w: %s", ErrEnvNotFound, name)
		}
		if v == nil {
			return zero, nil
		}
		t, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("env %s: unexpected type %T", name, v)
		}
		return t, nil
	})
}
