package spider

import "context"

type StepKind int

const (
	StepEmit StepKind = iota
	StepSkip
	StepDone
	StepContinue
)

func (k StepKind) String() string {
	switch k {
	case StepEmit:
		return "emit"
	case StepSkip:
		return "skip"
	case StepDone:
		return "done"
	case StepContinue:
		return "continue"
	}
	return "unknown"
}

// Step is one result of a Producer: an object, a skipped candidate, the
// end of the data, or the end of the data of this page with the request
// of the next one.
type Step[T any] struct {
	Kind StepKind
	Obj  T
	Next *Request
}

func Emit[T any](obj T) Step[T] {
	return Step[T]{Kind: StepEmit, Obj: obj}
}

func Skip[T any]() Step[T] {
	return Step[T]{Kind: StepSkip}
}

func Done[T any]() Step[T] {
	return Step[T]{Kind: StepDone}
}

func Continue[T any](next *Request) Step[T] {
	return Step[T]{Kind: StepContinue, Next: next}
}

// Producer yields steps lazily. Once it returned a Done or Continue step,
// or an error, it must not be called again.
type Producer[T any] interface {
	Next() (Step[T], error)
}

type ProducerFunc[T any] func() (Step[T], error)

func (f ProducerFunc[T]) Next() (Step[T], error) {
	return f()
}

// Objects returns a producer emitting objs in order.
func Objects[T any](objs ...T) Producer[T] {
	i := 0
	return ProducerFunc[T](func() (Step[T], error) {
		if i >= len(objs) {
			return Done[T](), nil
		}
		i++
		return Emit(objs[i-1]), nil
	})
}

// Pager drives a producer across pages. Each time the producer asks to
// continue, the browser moves to the next request and produce is called
// again to get the producer of the new page.
//
//	p := Pagination(ctx, b, func() (Producer[T], error) { ... })
//	for p.Next() {
//		use(p.Item())
//	}
//	if err := p.Err(); err != nil { ... }
type Pager[T any] struct {
	ctx     context.Context
	browser *Browser
	produce func() (Producer[T], error)

	cur  Producer[T]
	item T
	err  error
	done bool
}

func Pagination[T any](ctx context.Context, b *Browser, produce func() (Producer[T], error)) *Pager[T] {
	return &Pager[T]{
		ctx:     ctx,
		browser: b,
		produce: produce,
	}
}

// Next advances to the next object. It returns false at the end of the
// data or on the first error.
func (p *Pager[T]) Next() bool {
	if p.done {
		return false
	}

	for {
		if p.cur == nil {
			cur, err := p.produce()
			if err != nil {
				return p.fail(err)
			}
			p.cur = cur
		}

		step, err := p.cur.Next()
		if err != nil {
			return p.fail(err)
		}

		switch step.Kind {
		case StepEmit:
			p.item = step.Obj
			return true
		case StepSkip:
		case StepContinue:
			p.cur = nil
			if _, _, err := p.browser.Location(p.ctx, step.Next); err != nil {
				return p.fail(err)
			}
		default:
			p.done = true
			return false
		}
	}
}

func (p *Pager[T]) fail(err error) bool {
	p.err = err
	p.done = true

	return false
}

func (p *Pager[T]) Item() T {
	return p.item
}

func (p *Pager[T]) Err() error {
	return p.err
}

// All drains the pager.
func (p *Pager[T]) All() ([]T, error) {
	var items []T
	for p.Next() {
		items = append(items, p.Item())
	}

	return items, p.Err()
}
