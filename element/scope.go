package element

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/browser/spider"
	"go.uber.org/zap"
)

// Scope is the context of one extractor invocation on one node. A child
// scope starts with a copy of its parent env.
type Scope struct {
	ctx    context.Context
	node   *goquery.Selection
	env    *Env
	page   spider.Page
	parent *Scope
	logger *zap.Logger

	// set on table scopes
	columns map[string]int
	// set on list scopes
	existing func(id string) (interface{}, bool)
}

// NewScope returns the root scope of a page: its document, with the URL
// parameters of the page in env.
func NewScope(ctx context.Context, page spider.Page) *Scope {
	h := page.HTML()

	env := NewEnv(nil)
	for k, v := range h.Params {
		env.Set(k, v)
	}

	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scope{
		ctx:    ctx,
		node:   h.Doc.Selection,
		env:    env,
		page:   page,
		logger: logger,
	}
}

func (s *Scope) Child(node *goquery.Selection) *Scope {
	return &Scope{
		ctx:    s.ctx,
		node:   node,
		env:    s.env.Clone(),
		page:   s.page,
		parent: s,
		logger: s.logger,
	}
}

func (s *Scope) Selection() *goquery.Selection {
	return s.node
}

func (s *Scope) Lookup(name string) (interface{}, bool) {
	return s.env.Get(name)
}

// Set writes into this scope env only.
func (s *Scope) Set(name string, value interface{}) {
	s.env.Set(name, value)
}

// Column resolves a logical column of the nearest enclosing table.
func (s *Scope) Column(name string) (int, bool) {
	for c := s; c != nil; c = c.parent {
		if c.columns != nil {
			i, ok := c.columns[name]
			return i, ok
		}
	}
	return 0, false
}

func (s *Scope) Context() context.Context {
	return s.ctx
}

func (s *Scope) Page() spider.Page {
	return s.page
}

func (s *Scope) Browser() *spider.Browser {
	return s.page.HTML().Browser
}

func (s *Scope) Logger() *zap.Logger {
	return s.logger
}

// Existing returns the object already produced with id by the nearest
// enclosing list. Parse hooks of flush-at-end lists merge into it.
func Existing[T any](s *Scope, id string) (*T, bool) {
	for c := s; c != nil; c = c.parent {
		if c.existing == nil {
			continue
		}

		v, ok := c.existing(id)
		if !ok {
			return nil, false
		}

		obj, ok := v.(*T)
		return obj, ok
	}

	return nil, false
}
