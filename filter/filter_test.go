package filter

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scope struct {
	sel  *goquery.Selection
	env  map[string]interface{}
	cols map[string]int
}

func (s *scope) Selection() *goquery.Selection { return s.sel }

func (s *scope) Lookup(name string) (interface{}, bool) {
	v, ok := s.env[name]
	return v, ok
}

func (s *scope) Column(name string) (int, bool) {
	i, ok := s.cols[name]
	return i, ok
}

func newScope(t *testing.T, body string) *scope {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return &scope{sel: doc.Selection, env: map[string]interface{}{}}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces", in: "  foo   bar ", want: "foo bar"},
		{name: "tabs and newlines", in: "foo\t\n\tbar", want: "foo bar"},
		{name: "nbsp", in: "12\u00a0345,00\u00a0\u00a0€", want: "12 345,00 €"},
		{name: "empty", in: " \t ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestClean_WhitespaceInsensitive(t *testing.T) {
	inputs := []string{
		"Virement  SEPA recu",
		" Virement\tSEPA recu ",
		"Virement\n\n SEPA   recu\t",
	}
	for _, in := range inputs {
		assert.Equal(t, Clean(inputs[0]), Clean(in))
	}
}

func TestCleanText(t *testing.T) {
	s := newScope(t, `<div><p>blah: <span>229,90</span>
		</p><p> second
		para</p></div>`)

	got, err := CleanText(Select("p")).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "blah: 229,90 second para", got)

	got, err = CleanText(Select("p.missing")).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "french decimal", in: "12,34", want: "12.34"},
		{name: "thousands", in: "1.234.567,89 EUR", want: "1234567.89"},
		{name: "negative with spaces", in: " - 229,90 €", want: "-229.9"},
		{name: "canonical", in: "12.34", want: "12.34"},
		{name: "several dots without comma", in: "1.234.567", want: "1234567"},
		{name: "single dot is a decimal point", in: "1.234 €", want: "1.234"},
		{name: "integer", in: "42", want: "42"},
		{name: "empty", in: "", wantErr: true},
		{name: "text", in: "n/a", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNumber)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseDecimal_Idempotent(t *testing.T) {
	for _, in := range []string{"12,34", "1.234,5", "-0,01", "1000", "3.14159", "1.000.000,00"} {
		first, err := ParseDecimal(in)
		require.NoError(t, err)
		second, err := ParseDecimal(first.String())
		require.NoError(t, err)
		assert.True(t, first.Equal(second), "%s: %s != %s", in, first, second)
	}
}

func TestCleanDecimal(t *testing.T) {
	s := newScope(t, `<html><body><p>blah: <span>229,90</span></p></body></html>`)
	got, err := CleanDecimal(Select("span")).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "229.9", got.String())
}

func TestTableCell(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table><tr id="row"><td>01/01/2020</td><td></td><td>12,34</td></tr></table>`))
	require.NoError(t, err)
	s := &scope{
		sel:  doc.Find("tr#row"),
		cols: map[string]int{"date": 0, "debit": 1, "credit": 2},
	}

	amount, err := CleanDecimal(TableCell("credit")).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "12.34", amount.String())

	date, err := CleanText(TableCell("vdate", "date")).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "01/01/2020", date)

	_, err = TableCell("balance", "solde").Filter(s)
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Contains(t, err.Error(), "balance or solde")
}

func TestLink(t *testing.T) {
	s := newScope(t, `<div><span>no link here</span></div>`)
	_, err := Link(Select("a")).Filter(s)
	assert.ErrorIs(t, err, ErrIndex)

	s = newScope(t, `<div><a href="/a">first</a><a href="/b">second</a></div>`)
	got, err := Link(Select("a")).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "/a", got)

	cls, err := Attr(Select("a"), "class").Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "", cls)
}

func TestEnv(t *testing.T) {
	s := newScope(t, `<p></p>`)
	s.env["id"] = "123"
	s.env["coming"] = nil

	id, err := Env[string]("id").Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "123", id)

	coming, err := Env[*decimal.Decimal]("coming").Filter(s)
	require.NoError(t, err)
	assert.Nil(t, coming)

	_, err = Env[string]("balance").Filter(s)
	assert.ErrorIs(t, err, ErrEnvNotFound)

	_, err = Env[int]("id").Filter(s)
	assert.Error(t, err)
}

func TestOr(t *testing.T) {
	s := newScope(t, `<p><b>bold</b></p>`)
	got, err := Or(Link(Select("a")), CleanText(Select("b"))).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "bold", got)

	_, err = Or(Link(Select("a")), Attr(Select("i"), "id")).Filter(s)
	assert.ErrorIs(t, err, ErrIndex)
}

func TestRegexpAndMap(t *testing.T) {
	s := newScope(t, `<p>Page 2 / 5</p>`)
	cur, err := Regexp(CleanText(Select("p")), `(\d+) / \d+`).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "2", cur)

	_, err = Regexp(CleanText(Select("p")), `none`).Filter(s)
	assert.ErrorIs(t, err, ErrIndex)

	upper, err := Map(Const("abc"), func(v string) (string, error) {
		return strings.ToUpper(v), nil
	}).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "ABC", upper)
}

func TestDate(t *testing.T) {
	s := newScope(t, `<table><tr><td>24/12/2013</td></tr></table>`)
	d, err := Date(CleanText(Select("td")), "2006-01-02", "02/01/2006").Filter(s)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 12, 24, 0, 0, 0, 0, time.UTC), d)

	_, err = Date(Const("tomorrow"), "02/01/2006").Filter(s)
	assert.Error(t, err)
}

func TestJS(t *testing.T) {
	s := newScope(t, `<table><tr><td>0123 compte courant</td></tr></table>`)
	got, err := JS(CleanText(Select("td")), `value.replace(/^[ 0-9]+/, "").toUpperCase()`).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "COMPTE COURANT", got)

	got, err = JS(Const("“Hello”"), `value.replace(/^“|”$/g, "")`).Filter(s)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
	assert.True(t, utf8.ValidString(got))

	_, err = JS(Const("x"), `value.(`).Filter(s)
	assert.Error(t, err)
}
