package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var spaceRe = regexp.MustCompile(`[\s\p{Zs}]+`)

// Clean collapses every run of whitespace, tab or non-breaking space into
// one space and trims the result.
func Clean(txt string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(txt, " "))
}

// CleanNode returns the cleaned text of one node: its text fragments are
// trimmed and joined with a single space before cleaning.
func CleanNode(n *html.Node) string {
	var parts []string
	textFragments(n, &parts)
	return Clean(strings.Join(parts, " "))
}

func textFragments(n *html.Node, parts *[]string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		*parts = append(*parts, strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textFragments(c, parts)
	}
}

// CleanSelection joins the cleaned text of every node in sel.
func CleanSelection(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	texts := make([]string, 0, len(sel.Nodes))
	for _, n := range sel.Nodes {
		texts = append(texts, CleanNode(n))
	}
	return Clean(strings.Join(texts, " "))
}

// CleanText returns the cleaned text of the nodes selected by in.
func CleanText(in Filter[*goquery.Selection]) Filter[string] {
	return Map(in, func(sel *goquery.Selection) (string, error) {
		return CleanSelection(sel), nil
	})
}

// CleanString cleans the output of a string filter.
func CleanString(in Filter[string]) Filter[string] {
	return Map(in, func(s string) (string, error) {
		return Clean(s), nil
	})
}

// Regexp returns the first capture group of pattern matched on the
// value, or the whole match if pattern has no group.
func Regexp(in Filter[string], pattern string) Filter[string] {
	re := regexp.MustCompile(pattern)
	return Map(in, func(s string) (string, error) {
		m := re.FindStringSubmatch(s)
		if len(m) == 0 {
			return "", fmt.Errorf("%w: %q does not match %q", ErrIndex, pattern, s)
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil
	})
}
