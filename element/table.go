package element

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/browser/filter"
	"github.com/dreamerjackson/browser/spider"
)

// Table is a List whose rows are read by column. Columns maps a logical
// column name to the header labels it may have; the header cells matched
// by HeadQuery are resolved on every Extract, so each page gets its own
// column map. When several header cells match a column, the leftmost one
// is kept. filter.TableCell reads the cells.
type Table[T any] struct {
	List[T]
	HeadQuery string
	Columns   map[string][]string
}

func (t *Table[T]) Extract(parent *Scope, node *goquery.Selection) spider.Producer[*T] {
	return t.List.extract(parent, node, t.columns(node))
}

func (t *Table[T]) columns(node *goquery.Selection) map[string]int {
	cols := make(map[string]int, len(t.Columns))
	node.Find(t.HeadQuery).Each(func(i int, cell *goquery.Selection) {
		label := filter.CleanSelection(cell)
		for name, aliases := range t.Columns {
			if _, ok := cols[name]; ok {
				continue
			}
			for _, alias := range aliases {
				if alias == label {
					cols[name] = i
					break
				}
			}
		}
	})

	return cols
}
