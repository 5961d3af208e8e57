package spider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrLoginRequired is returned by OnLoad hooks of pages showing that the
// session is not, or no longer, authenticated.
var ErrLoginRequired = errors.New("login required")

// Page is a routed document. Site pages embed *HTMLPage and override the
// hooks they need.
type Page interface {
	HTML() *HTMLPage
	// OnLoad runs once the page became the current one. An error aborts
	// the navigation.
	OnLoad(ctx context.Context) error
	// OnLeave runs before the browser moves to another location.
	OnLeave(ctx context.Context)
	Logged() bool
}

type PageFactory func(*HTMLPage) Page

// HTMLPage wraps one fetched and parsed document.
type HTMLPage struct {
	Browser  *Browser
	Response *Response
	URL      string
	Route    string
	Params   map[string]string
	Doc      *goquery.Document
	Logger   *zap.Logger
}

func newHTMLPage(b *Browser, resp *Response, route string, params map[string]string) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", resp.URL, err)
	}

	return &HTMLPage{
		Browser:  b,
		Response: resp,
		URL:      resp.URL,
		Route:    route,
		Params:   params,
		Doc:      doc,
		Logger:   b.logger.With(zap.String("page", route)),
	}, nil
}

func (p *HTMLPage) HTML() *HTMLPage {
	return p
}

func (p *HTMLPage) OnLoad(context.Context) error {
	return nil
}

func (p *HTMLPage) OnLeave(context.Context) {}

func (p *HTMLPage) Logged() bool {
	return false
}

// AbsURL resolves ref against the page URL.
func (p *HTMLPage) AbsURL(ref string) (string, error) {
	base, err := url.Parse(p.URL)
	if err != nil {
		return "", err
	}

	u, err := base.Parse(ref)
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

// Form returns the Nr-th form matched by q.Selector (every form by
// default) whose name attribute equals q.Name, when given.
func (p *HTMLPage) Form(q FormQuery) (*Form, error) {
	selector := q.Selector
	if selector == "" {
		selector = "form"
	}

	var (
		found *goquery.Selection
		i     int
	)

	p.Doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if q.Name != "" && s.AttrOr("name", "") != q.Name {
			return true
		}
		if i == q.Nr {
			found = s
			return false
		}
		i++
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("%w: %s name=%q nr=%d", ErrFormNotFound, selector, q.Name, q.Nr)
	}

	return newForm(p, found)
}
