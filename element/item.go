package element

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/browser/filter"
	"github.com/dreamerjackson/browser/spider"
	"go.uber.org/zap"
)

// Extractor builds objects out of a node, lazily.
type Extractor[T any] interface {
	Extract(parent *Scope, node *goquery.Selection) spider.Producer[*T]
}

type ExtractorFunc[T any] func(parent *Scope, node *goquery.Selection) spider.Producer[*T]

func (f ExtractorFunc[T]) Extract(parent *Scope, node *goquery.Selection) spider.Producer[*T] {
	return f(parent, node)
}

// Item builds one object from one node: the condition is checked, the
// object allocated, the parse hook run, then the fields are set in order.
// ErrSkipItem returned by any of them discards the object.
type Item[T any] struct {
	Condition filter.Filter[bool]
	New       func() *T
	Parse     func(s *Scope, obj *T) error
	Fields    []Field[T]
}

func (it *Item[T]) Extract(parent *Scope, node *goquery.Selection) spider.Producer[*T] {
	done := false
	return spider.ProducerFunc[*T](func() (spider.Step[*T], error) {
		if done {
			return spider.Done[*T](), nil
		}
		done = true

		s := parent.Child(node)
		step, err := it.build(s)
		if errors.Is(err, ErrSkipItem) {
			s.Logger().Debug("skip item", zap.Error(err))
			return spider.Skip[*T](), nil
		}
		return step, err
	})
}

func (it *Item[T]) build(s *Scope) (spider.Step[*T], error) {
	if it.Condition != nil {
		ok, err := it.Condition.Filter(s)
		if err != nil {
			return spider.Step[*T]{}, err
		}
		if !ok {
			return spider.Skip[*T](), nil
		}
	}

	var obj *T
	if it.New != nil {
		obj = it.New()
	} else {
		obj = new(T)
	}

	if it.Parse != nil {
		if err := it.Parse(s, obj); err != nil {
			return spider.Step[*T]{}, err
		}
	}

	for _, f := range it.Fields {
		if err := f.Set(s, obj); err != nil {
			return spider.Step[*T]{}, err
		}
	}

	return spider.Emit(obj), nil
}
