package element

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/browser/filter"
	"github.com/dreamerjackson/browser/spider"
	"go.uber.org/zap"
)

// List runs its children on every node matched by ItemQuery (on the node
// itself when ItemQuery is empty), in document order.
//
// Objects are identified by ID; an empty id means no identity. In the
// default streaming mode objects are emitted as soon as they are built and
// a second object with a known id fails with ErrDuplicateID. With
// FlushAtEnd nothing is emitted before every node is scanned: a second
// object with a known id is dropped, the first one being kept for the
// parse hooks that merge into it (see Existing).
//
// Once the data are exhausted NextPage, when set, tells where the data go
// on. A nil request means there is no next page.
type List[T any] struct {
	ItemQuery  string
	FlushAtEnd bool
	Parse      func(s *Scope) error
	Children   []Extractor[T]
	ID         func(obj *T) string
	NextPage   func(s *Scope) (*spider.Request, error)
}

func (l *List[T]) Extract(parent *Scope, node *goquery.Selection) spider.Producer[*T] {
	return l.extract(parent, node, nil)
}

func (l *List[T]) extract(parent *Scope, node *goquery.Selection, columns map[string]int) spider.Producer[*T] {
	s := parent.Child(node)
	s.columns = columns

	p := &listProducer[T]{
		list:  l,
		scope: s,
		seen:  make(map[string]*T),
	}
	s.existing = func(id string) (interface{}, bool) {
		obj, ok := p.seen[id]
		return obj, ok
	}

	return p
}

type listState int

const (
	listStart listState = iota
	listScan
	listFlush
	listEnd
	listDone
)

type listProducer[T any] struct {
	list  *List[T]
	scope *Scope
	state listState

	candidates []*goquery.Selection
	ci, chi    int
	cur        spider.Producer[*T]

	seen     map[string]*T
	retained []*T
	fi       int
	next     *spider.Request
}

func (p *listProducer[T]) Next() (spider.Step[*T], error) {
	for {
		switch p.state {
		case listStart:
			if err := p.start(); err != nil {
				return p.fail(err)
			}
			p.state = listScan

		case listScan:
			step, ok, err := p.scan()
			if err != nil {
				return p.fail(err)
			}
			if ok {
				return step, nil
			}

		case listFlush:
			if p.fi < len(p.retained) {
				p.fi++
				return spider.Emit(p.retained[p.fi-1]), nil
			}
			p.state = listEnd

		case listEnd:
			p.state = listDone
			if p.next != nil {
				return spider.Continue[*T](p.next), nil
			}
			if p.list.NextPage == nil {
				return spider.Done[*T](), nil
			}
			req, err := p.list.NextPage(p.scope)
			if err != nil {
				return p.fail(fmt.Errorf("next page: %w", err))
			}
			if req == nil {
				return spider.Done[*T](), nil
			}
			return spider.Continue[*T](req), nil

		default:
			return spider.Done[*T](), nil
		}
	}
}

func (p *listProducer[T]) start() error {
	if p.list.Parse != nil {
		if err := p.list.Parse(p.scope); err != nil {
			return err
		}
	}

	node := p.scope.Selection()
	if p.list.ItemQuery == "" {
		p.candidates = []*goquery.Selection{node}
		return nil
	}

	node.Find(p.list.ItemQuery).Each(func(_ int, c *goquery.Selection) {
		p.candidates = append(p.candidates, c)
	})

	return nil
}

// scan pulls the next step of the children. ok is false when the caller
// should loop again, the state having possibly moved on.
func (p *listProducer[T]) scan() (spider.Step[*T], bool, error) {
	if p.cur == nil {
		if p.ci >= len(p.candidates) {
			p.endScan()
			return spider.Step[*T]{}, false, nil
		}

		if p.chi >= len(p.list.Children) {
			p.ci++
			p.chi = 0
			return spider.Step[*T]{}, false, nil
		}

		p.cur = p.list.Children[p.chi].Extract(p.scope, p.candidates[p.ci])
		p.chi++
	}

	step, err := p.cur.Next()
	if errors.Is(err, ErrSkipItem) {
		p.scope.Logger().Debug("skip node", zap.Error(err))
		p.cur = nil
		return spider.Step[*T]{}, false, nil
	}
	if err != nil {
		return step, false, err
	}

	switch step.Kind {
	case spider.StepEmit:
		return p.accept(step.Obj)
	case spider.StepContinue:
		p.cur = nil
		p.next = step.Next
		p.endScan()
	case spider.StepDone:
		p.cur = nil
	}

	return spider.Step[*T]{}, false, nil
}

func (p *listProducer[T]) endScan() {
	if p.list.FlushAtEnd {
		p.state = listFlush
		return
	}
	p.state = listEnd
}

func (p *listProducer[T]) accept(obj *T) (spider.Step[*T], bool, error) {
	var id string
	if p.list.ID != nil {
		id = p.list.ID(obj)
	}

	if id != "" {
		if _, ok := p.seen[id]; ok {
			if !p.list.FlushAtEnd {
				return spider.Step[*T]{}, false, fmt.Errorf("%w: %q", ErrDuplicateID, id)
			}
			p.scope.Logger().Debug("merged object", zap.String("id", id))
			return spider.Step[*T]{}, false, nil
		}
		p.seen[id] = obj
	}

	if p.list.FlushAtEnd {
		p.retained = append(p.retained, obj)
		return spider.Step[*T]{}, false, nil
	}

	return spider.Emit(obj), true, nil
}

func (p *listProducer[T]) fail(err error) (spider.Step[*T], error) {
	p.state = listDone
	return spider.Step[*T]{}, err
}

// NextPageLink builds a NextPage function following the link returned by
// f, resolved against the page URL. A filter.ErrIndex error or an empty
// link means there is no next page.
func NextPageLink(f filter.Filter[string]) func(s *Scope) (*spider.Request, error) {
	return func(s *Scope) (*spider.Request, error) {
		href, err := f.Filter(s)
		if errors.Is(err, filter.ErrIndex) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if href == "" {
			return nil, nil
		}

		u, err := s.Page().HTML().AbsURL(href)
		if err != nil {
			return nil, err
		}

		return spider.GET(u), nil
	}
}
