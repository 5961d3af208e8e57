package filter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TableCell returns the cell of the current row for the first of names
// known by the enclosing table.
//
//	amount := CleanDecimal(TableCell("credit"))
//	label := CleanText(TableCell("label", "name"))
func TableCell(names ...string) Filter[*goquery.Selection] {
	return Func[*goquery.Selection](func(s Scope) (*goquery.Selection, error) {
		for _, name := range names {
			idx, ok := s.Column(name)
			if !ok {
				continue
			}
			return s.Selection().ChildrenFiltered("td").Eq(idx), nil
		}
		return nil, fmt.Errorf("%w %s", ErrColumnNotFound, strings.Join(names, " or "))
	})
}
