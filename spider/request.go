package spider

import (
	"net/http"
	"net/url"
	"strings"
)

// Field is one name/value pair of a request body or query, kept in order.
type Field struct {
	Name  string
	Value string
}

// 单个请求
type Request struct {
	Method string
	URL    string
	Data   []Field
	Header http.Header
}

func NewRequest(method, rawURL string, data ...Field) *Request {
	return &Request{
		Method: method,
		URL:    rawURL,
		Data:   data,
	}
}

// GET returns a request without body for rawURL.
func GET(rawURL string) *Request {
	return NewRequest(http.MethodGet, rawURL)
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// Encode serializes Data in order, as an urlencoded string.
func (r *Request) Encode() string {
	var b strings.Builder
	for i, f := range r.Data {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

// Target returns the URL to hit: data of body-less methods are appended to
// the query string.
func (r *Request) Target() string {
	if len(r.Data) == 0 || r.hasBody() {
		return r.URL
	}
	sep := "?"
	if strings.Contains(r.URL, "?") {
		sep = "&"
	}
	return r.URL + sep + r.Encode()
}

func (r *Request) hasBody() bool {
	switch r.method() {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return false
	}
	return true
}

// Body returns the urlencoded body, or an empty string for body-less methods.
func (r *Request) Body() string {
	if !r.hasBody() {
		return ""
	}
	return r.Encode()
}

// Response is what a Fetcher returns. Body is already decoded to UTF-8.
type Response struct {
	URL      string
	Status   int
	Body     []byte
	Encoding string
	Header   http.Header
}
