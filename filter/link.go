package filter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link returns the href of the first node selected by in.
func Link(in Filter[*goquery.Selection]) Filter[string] {
	return Attr(in, "href")
}

// Attr returns the attribute name of the first node selected by in, or an
// empty string when that node lacks it. It fails with ErrIndex when in
// selects nothing.
func Attr(in Filter[*goquery.Selection], name string) Filter[string] {
	return Map(in, func(sel *goquery.Selection) (string, error) {
		if sel == nil || sel.Length() == 0 {
			return "", fmt.Errorf("%w: no node for attribute %s", ErrIndex, name)
		}
		return strings.TrimSpace(sel.First().AttrOr(name, "")), nil
	})
}
