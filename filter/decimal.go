package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

var nonNumberRe = regexp.MustCompile(`[^\d\-.]`)

// ParseDecimal reads a number written the french way, where '.' groups
// thousands and ',' separates decimals ("1.234,56", "12,34 €").
//
// When the text has no comma, a single '.' is taken as the decimal point
// so that canonical values ("12.34") parse to themselves; several dots
// are thousands separators. "1.234 €" thus reads 1.234, not 1234.
func ParseDecimal(txt string) (decimal.Decimal, error) {
	text := Clean(txt)
	switch {
	case strings.Contains(text, ","):
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	case strings.Count(text, ".") > 1:
		text = strings.ReplaceAll(text, ".", "")
	}
	text = nonNumberRe.ReplaceAllString(text, "")

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, txt)
	}
	return d, nil
}

// CleanDecimal returns the decimal value of the cleaned text of the nodes
// selected by in.
func CleanDecimal(in Filter[*goquery.Selection]) Filter[decimal.Decimal] {
	return Map(CleanText(in), ParseDecimal)
}

// Decimal parses the output of a string filter.
func Decimal(in Filter[string]) Filter[decimal.Decimal] {
	return Map(in, ParseDecimal)
}
