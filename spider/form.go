package spider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrFormNotFound = errors.New("form not found")

// FormQuery selects a form of a page. Nr counts from 0 among the forms
// that pass the name check.
type FormQuery struct {
	Selector string
	Name     string
	Nr       int
}

// Form is the ordered field map of an HTML form, pre-filled with the
// values of its inputs.
type Form struct {
	Method string
	Action string

	page   *HTMLPage
	sel    *goquery.Selection
	names  []string
	values map[string]string
}

func newForm(p *HTMLPage, s *goquery.Selection) (*Form, error) {
	method := strings.ToUpper(strings.TrimSpace(s.AttrOr("method", "")))
	if method == "" {
		method = http.MethodGet
	}

	action := p.URL
	if a := strings.TrimSpace(s.AttrOr("action", "")); a != "" {
		var err error
		if action, err = p.AbsURL(a); err != nil {
			return nil, err
		}
	}

	f := &Form{
		Method: method,
		Action: action,
		page:   p,
		sel:    s,
		values: make(map[string]string),
	}

	s.Find("input[name]").Each(func(_ int, in *goquery.Selection) {
		f.Set(in.AttrOr("name", ""), in.AttrOr("value", ""))
	})

	return f, nil
}

// Selection returns the form element.
func (f *Form) Selection() *goquery.Selection {
	return f.sel
}

func (f *Form) Get(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Set updates a field, appending it when missing.
func (f *Form) Set(name, value string) {
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

func (f *Form) Del(name string) {
	if _, ok := f.values[name]; !ok {
		return
	}

	delete(f.values, name)
	for i, n := range f.names {
		if n == name {
			f.names = append(f.names[:i], f.names[i+1:]...)
			break
		}
	}
}

func (f *Form) Names() []string {
	return append([]string(nil), f.names...)
}

// Request builds the navigation request of the form, fields in order.
// For body-less methods the fields replace the query of the action.
func (f *Form) Request() *Request {
	data := make([]Field, 0, len(f.names))
	for _, n := range f.names {
		data = append(data, Field{Name: n, Value: f.values[n]})
	}

	req := NewRequest(f.Method, f.Action, data...)
	if !req.hasBody() {
		if u, err := url.Parse(f.Action); err == nil {
			u.RawQuery = ""
			u.Fragment = ""
			req.URL = u.String()
		}
	}

	return req
}

// Submit moves the browser of the page to the form request.
func (f *Form) Submit(ctx context.Context) (Page, *Response, error) {
	return f.page.Browser.Location(ctx, f.Request())
}
