package quotes

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/browser/element"
	"github.com/dreamerjackson/browser/filter"
	"github.com/dreamerjackson/browser/limiter"
	"github.com/dreamerjackson/browser/spider"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const BaseURL = "https://quotes.toscrape.com"

var QuotesTask = &spider.Task{
	Options: spider.Options{
		Name: "quotes",
		URL:  BaseURL,
		Limit: limiter.Multi(
			rate.NewLimiter(limiter.Per(1, time.Second), 1),
			rate.NewLimiter(limiter.Per(30, time.Minute), 30),
		),
		WaitTime: 1,
	},
	Rule: spider.RuleTree{
		Root: Router,
		Rules: []*spider.Rule{
			{
				Name:       "quotes",
				ItemFields: []string{"Text", "Author", "Tags", "Page"},
				ParseFunc:  ParseQuotes,
			},
			{
				Name:       "authors",
				ItemFields: []string{"Name", "Born", "Location", "Description"},
				ParseFunc:  ParseAuthors,
			},
		},
	},
}

func Router(base string) *spider.Router {
	r := spider.NewRouter(base)
	r.Register("quotes", newQuotesPage, `/(?:page/(?P<page>\d+)/)?`)
	r.Register("author", newAuthorPage, `/author/(?P<author>[^/]+)/?`)

	return r
}

type Quote struct {
	Text      string
	Author    string
	AuthorURL string `json:"-"`
	Tags      []string
	Page      string
}

type Author struct {
	Name        string
	Born        time.Time
	Location    string
	Description string
}

type QuotesPage struct {
	*spider.HTMLPage
}

func newQuotesPage(h *spider.HTMLPage) spider.Page {
	return &QuotesPage{HTMLPage: h}
}

func (p *QuotesPage) Logged() bool {
	return p.Doc.Find(`a[href="/logout"]`).Length() > 0
}

type AuthorPage struct {
	*spider.HTMLPage
}

func newAuthorPage(h *spider.HTMLPage) spider.Page {
	return &AuthorPage{HTMLPage: h}
}

var quoteList = &element.List[Quote]{
	ItemQuery: "div.quote",
	ID: func(q *Quote) string {
		return q.Author + ":" + q.Text
	},
	NextPage: element.NextPageLink(filter.Link(filter.Select("li.next a"))),
	Children: []element.Extractor[Quote]{
		&element.Item[Quote]{
			Fields: []element.Field[Quote]{
				// the site wraps every quote in typographic quotes
				element.Bind("text",
					filter.JS(filter.CleanText(filter.Select("span.text")),
						`value.replace(/^“|”$/g, "")`),
					func(q *Quote, v string) { q.Text = v }),
				element.Bind("author", filter.CleanText(filter.Select("small.author")),
					func(q *Quote, v string) { q.Author = v }),
				element.BindFunc("author_url", authorURL,
					func(q *Quote, v string) { q.AuthorURL = v }),
				element.BindFunc("tags", tags,
					func(q *Quote, v []string) { q.Tags = v }),
				element.Bind("page", filter.Map(filter.Env[string]("page"), firstPage),
					func(q *Quote, v string) { q.Page = v }),
			},
		},
	},
}

var authorItem = &element.Item[Author]{
	Condition: filter.Map(filter.Select("div.author-details"), func(sel *goquery.Selection) (bool, error) {
		return sel.Length() > 0, nil
	}),
	Fields: []element.Field[Author]{
		element.Bind("name", filter.CleanText(filter.Select("h3.author-title")),
			func(a *Author, v string) { a.Name = v }),
		element.Bind("born", filter.Date(filter.CleanText(filter.Select("span.author-born-date")), "January 2, 2006"),
			func(a *Author, v time.Time) { a.Born = v }),
		element.Bind("location", filter.Regexp(filter.CleanText(filter.Select("span.author-born-location")), `^in (.*)$`),
			func(a *Author, v string) { a.Location = v }),
		element.Bind("description", filter.CleanText(filter.Select("div.author-description")),
			func(a *Author, v string) { a.Description = v }),
	},
}

func firstPage(p string) (string, error) {
	if p == "" {
		return "1", nil
	}
	return p, nil
}

func authorURL(s *element.Scope, _ *Quote) (string, error) {
	href, err := filter.Link(filter.Select(`a[href^="/author/"]`)).Filter(s)
	if err != nil {
		return "", err
	}

	return s.Page().HTML().AbsURL(href)
}

func tags(s *element.Scope, _ *Quote) ([]string, error) {
	var out []string
	s.Selection().Find("a.tag").Each(func(_ int, sel *goquery.Selection) {
		if t := filter.CleanSelection(sel); t != "" {
			out = append(out, t)
		}
	})

	return out, nil
}

// IterQuotes browses the quote list from its first page.
func IterQuotes(ctx *spider.Context) (*spider.Pager[*Quote], error) {
	if _, _, err := ctx.Browser.Location(ctx.Context(), spider.GET("/")); err != nil {
		return nil, err
	}

	if !ctx.Browser.IsHere("quotes") {
		return nil, fmt.Errorf("unexpected page %s", ctx.Browser.URL())
	}

	return element.Paginate[Quote](ctx.Context(), ctx.Browser, quoteList), nil
}

func ParseQuotes(ctx *spider.Context) error {
	p, err := IterQuotes(ctx)
	if err != nil {
		return err
	}

	for p.Next() {
		if err := ctx.Output(p.Item()); err != nil {
			return err
		}
	}

	return p.Err()
}

// ParseAuthors visits the author page of every quoted author once.
func ParseAuthors(ctx *spider.Context) error {
	p, err := IterQuotes(ctx)
	if err != nil {
		return err
	}

	var urls []string
	seen := make(map[string]bool)
	for p.Next() {
		u := p.Item().AuthorURL
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	if err := p.Err(); err != nil {
		return err
	}

	for _, u := range urls {
		page, _, err := ctx.Browser.Location(ctx.Context(), spider.GET(u))
		if err != nil {
			return err
		}

		ap, ok := page.(*AuthorPage)
		if !ok {
			ctx.Browser.Logger().Warn("not an author page", zap.String("url", ctx.Browser.URL()))
			continue
		}

		authors, err := element.Collect(element.Iter[Author](ctx.Context(), ap, authorItem))
		if err != nil {
			return err
		}

		for _, a := range authors {
			if err := ctx.Output(a); err != nil {
				return err
			}
		}
	}

	return nil
}
