package element

import (
	"context"

	"github.com/dreamerjackson/browser/spider"
)

// Iter runs an extractor on the whole document of a page.
func Iter[T any](ctx context.Context, page spider.Page, ex Extractor[T]) spider.Producer[*T] {
	root := NewScope(ctx, page)
	return ex.Extract(root, root.Selection())
}

// Paginate runs an extractor on the current page of b, then on every page
// its continuations lead to.
func Paginate[T any](ctx context.Context, b *spider.Browser, ex Extractor[T]) *spider.Pager[*T] {
	return spider.Pagination(ctx, b, func() (spider.Producer[*T], error) {
		page := b.Page()
		if page == nil {
			return nil, ErrNoPage
		}
		return Iter(ctx, page, ex), nil
	})
}

// Collect drains the objects of one page. A continuation ends it like the
// end of the data.
func Collect[T any](p spider.Producer[*T]) ([]*T, error) {
	var objs []*T
	for {
		step, err := p.Next()
		if err != nil {
			return objs, err
		}

		switch step.Kind {
		case spider.StepEmit:
			objs = append(objs, step.Obj)
		case spider.StepSkip:
		default:
			return objs, nil
		}
	}
}
