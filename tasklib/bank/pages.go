package bank

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dreamerjackson/browser/element"
	"github.com/dreamerjackson/browser/filter"
	"github.com/dreamerjackson/browser/spider"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	TypeChecking = "checking"
	TypeSavings  = "savings"
	TypeMarket   = "market"
	TypeLoan     = "loan"
	TypeUnknown  = "unknown"
)

type Account struct {
	ID       string
	Label    string
	Type     string
	Balance  decimal.Decimal
	Coming   decimal.NullDecimal
	Currency string

	Link      string   `json:"-"`
	CardLinks []string `json:"-"`
}

type Transaction struct {
	Account string
	Date    time.Time
	VDate   time.Time
	Raw     string
	Amount  decimal.Decimal
	Coming  bool
}

type LoginPage struct {
	*spider.HTMLPage
}

type ChangePasswordPage struct {
	*spider.HTMLPage
}

func (p *ChangePasswordPage) OnLoad(context.Context) error {
	return fmt.Errorf("%w: the password has to be changed on the website", spider.ErrLoginRequired)
}

type VerifCodePage struct {
	*spider.HTMLPage
}

func (p *VerifCodePage) OnLoad(context.Context) error {
	return fmt.Errorf("%w: a security code is requested", spider.ErrLoginRequired)
}

type AccountsPage struct {
	*spider.HTMLPage
}

func (p *AccountsPage) Logged() bool { return true }

func (p *AccountsPage) IterAccounts(ctx context.Context) spider.Producer[*Account] {
	return element.Iter[Account](ctx, p, accountList)
}

type OperationsPage struct {
	*spider.HTMLPage
}

func (p *OperationsPage) Logged() bool { return true }

func (p *OperationsPage) IterHistory(ctx context.Context) spider.Producer[*Transaction] {
	return element.Iter[Transaction](ctx, p, operationsTable)
}

// ComingLink returns the address of the pending operations of the
// account, or an empty string.
func (p *OperationsPage) ComingLink() string {
	href, ok := p.Doc.Find(`a[href*="mvts_instance.cgi"]`).First().Attr("href")
	if !ok {
		return ""
	}

	u, err := p.AbsURL(href)
	if err != nil {
		return ""
	}

	return u
}

type ComingPage struct {
	*spider.HTMLPage
}

func (p *ComingPage) Logged() bool { return true }

func (p *ComingPage) IterHistory(ctx context.Context) spider.Producer[*Transaction] {
	return element.Iter[Transaction](ctx, p, comingList)
}

var accountTypes = []struct {
	prefix string
	typ    string
}{
	{"c/c", TypeChecking},
	{"compte", TypeChecking},
	{"livret", TypeSavings},
	{"ldd", TypeSavings},
	{"pel", TypeSavings},
	{"pea", TypeMarket},
	{"pret", TypeLoan},
	{"prêt", TypeLoan},
}

var (
	firstCell    = filter.Select("td:first-child a")
	balanceCells = filter.Select("td:nth-child(2), td:nth-child(3)")
)

var accountList = &element.List[Account]{
	ItemQuery:  "tr",
	FlushAtEnd: true,
	ID:         func(a *Account) string { return a.ID },
	Children: []element.Extractor[Account]{
		&element.Item[Account]{
			Condition: filter.Func[bool](isAccountRow),
			Parse:     parseAccount,
			Fields: []element.Field[Account]{
				element.Bind("id", filter.Env[string]("id"),
					func(a *Account, v string) { a.ID = v }),
				element.Bind("label", filter.Map(filter.CleanText(firstCell), accountLabel),
					func(a *Account, v string) { a.Label = v }),
				element.BindFunc("type", func(_ *element.Scope, a *Account) (string, error) {
					return accountType(a.Label), nil
				}, func(a *Account, v string) { a.Type = v }),
				element.Bind("balance", filter.Env[decimal.Decimal]("balance"),
					func(a *Account, v decimal.Decimal) { a.Balance = v }),
				element.Bind("coming", filter.Env[decimal.NullDecimal]("coming"),
					func(a *Account, v decimal.NullDecimal) { a.Coming = v }),
				element.Bind("currency", filter.Or(
					filter.Map(filter.Regexp(filter.CleanText(balanceCells), `(EUR|€|USD|\$)`), currency),
					filter.Const("EUR"),
				), func(a *Account, v string) { a.Currency = v }),
				element.Bind("link", filter.Env[string]("link"),
					func(a *Account, v string) { a.Link = v }),
			},
		},
	},
}

func isAccountRow(s filter.Scope) (bool, error) {
	tds := s.Selection().ChildrenFiltered("td")
	if tds.Length() < 2 {
		return false, nil
	}

	first := tds.First()
	class := first.AttrOr("class", "")

	return (class == "i g" || class == "p g") && first.Find("a").Length() > 0, nil
}

// parseAccount reads the account id from its link. A row repeating a known
// id is a deferred debit card: its balance goes to the coming amount of
// the account and the row is dropped.
func parseAccount(s *element.Scope, _ *Account) error {
	href, err := filter.Link(firstCell).Filter(s)
	if err != nil {
		return err
	}
	if strings.HasPrefix(href, "POR_SyntheseLst") {
		return fmt.Errorf("%w: synthesis row", element.ErrSkipItem)
	}

	link, err := s.Page().HTML().AbsURL(href)
	if err != nil {
		return err
	}
	u, err := url.Parse(link)
	if err != nil {
		return err
	}

	id := u.Query().Get("rib")
	if id == "" {
		return fmt.Errorf("%w: no rib in %s", element.ErrSkipItem, href)
	}

	balance, err := filter.CleanDecimal(balanceCells).Filter(s)
	if err != nil {
		return err
	}

	if acc, ok := element.Existing[Account](s, id); ok {
		acc.Coming = addNull(acc.Coming, balance)
		acc.CardLinks = append(acc.CardLinks, link)
		return fmt.Errorf("%w: card of %s", element.ErrSkipItem, id)
	}

	accounting, coming, err := amounts(s, link)
	if err != nil {
		return err
	}

	if accounting.Valid {
		if !accounting.Decimal.Add(coming.Decimal).Equal(balance) {
			s.Logger().Warn("balance does not match accounting and coming amounts",
				zap.String("account", id),
				zap.String("balance", balance.String()),
				zap.String("accounting", accounting.Decimal.String()),
				zap.String("coming", coming.Decimal.String()),
			)
		}
		balance = accounting.Decimal
	}

	s.Set("id", id)
	s.Set("link", link)
	s.Set("balance", balance)
	s.Set("coming", coming)

	return nil
}

// amounts opens the operations page of an account without leaving the
// account list, and reads the accounting balance and the coming total.
func amounts(s *element.Scope, link string) (decimal.NullDecimal, decimal.NullDecimal, error) {
	page, _, err := s.Browser().Open(s.Context(), spider.GET(link))
	if err != nil {
		return decimal.NullDecimal{}, decimal.NullDecimal{}, err
	}

	op, ok := page.(*OperationsPage)
	if !ok {
		return decimal.NullDecimal{}, decimal.NullDecimal{}, nil
	}

	accounting, err := findAmount(op.Doc, "Solde comptable")
	if err != nil {
		return decimal.NullDecimal{}, decimal.NullDecimal{}, err
	}

	coming, err := findAmount(op.Doc, "Opérations à venir")
	if err != nil {
		return decimal.NullDecimal{}, decimal.NullDecimal{}, err
	}

	return accounting, coming, nil
}

func findAmount(doc *goquery.Document, title string) (decimal.NullDecimal, error) {
	th := doc.Find(fmt.Sprintf("th:contains(%q)", title)).First()
	if th.Length() == 0 {
		return decimal.NullDecimal{}, nil
	}

	d, err := filter.ParseDecimal(filter.CleanSelection(th.Parent().ChildrenFiltered("td").First()))
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func addNull(n decimal.NullDecimal, d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: n.Decimal.Add(d), Valid: true}
}

func accountLabel(txt string) (string, error) {
	return cases.Title(language.French).String(strings.TrimLeft(txt, " 0123456789")), nil
}

func accountType(label string) string {
	l := strings.ToLower(label)
	for _, t := range accountTypes {
		if strings.HasPrefix(l, t.prefix) {
			return t.typ
		}
	}

	return TypeUnknown
}

func currency(sym string) (string, error) {
	switch sym {
	case "€":
		return "EUR", nil
	case "$":
		return "USD", nil
	}

	return sym, nil
}

var operationsTable = &element.Table[Transaction]{
	HeadQuery: "table.liste thead tr th",
	Columns: map[string][]string{
		"date":   {"Date", "Date opération"},
		"vdate":  {"Date valeur", "Valeur"},
		"raw":    {"Opération", "Libellé"},
		"debit":  {"Débit"},
		"credit": {"Crédit"},
	},
	List: element.List[Transaction]{
		ItemQuery: "table.liste tbody tr",
		NextPage:  nextPage,
		Children: []element.Extractor[Transaction]{
			&element.Item[Transaction]{
				Condition: minCells(4),
				Fields: []element.Field[Transaction]{
					element.Bind("date", date(filter.TableCell("date")),
						func(tr *Transaction, v time.Time) { tr.Date = v }),
					element.Bind("vdate", filter.Or(date(filter.TableCell("vdate")), date(filter.TableCell("date"))),
						func(tr *Transaction, v time.Time) { tr.VDate = v }),
					element.BindFunc("raw", rawLabel,
						func(tr *Transaction, v string) { tr.Raw = v }),
					element.BindFunc("amount", func(s *element.Scope, _ *Transaction) (decimal.Decimal, error) {
						credit, err := cellAmount(s, "credit")
						if err != nil {
							return decimal.Zero, err
						}
						debit, err := cellAmount(s, "debit")
						if err != nil {
							return decimal.Zero, err
						}
						return credit.Sub(debit), nil
					}, func(tr *Transaction, v decimal.Decimal) { tr.Amount = v }),
				},
			},
		},
	},
}

var comingList = &element.List[Transaction]{
	ItemQuery: "table.liste tbody tr",
	NextPage:  nextPage,
	Children: []element.Extractor[Transaction]{
		&element.Item[Transaction]{
			Condition: minCells(3),
			Fields: []element.Field[Transaction]{
				element.Bind("date", date(filter.Select("td:first-child")),
					func(tr *Transaction, v time.Time) { tr.Date, tr.VDate = v, v }),
				element.Bind("raw", filter.CleanText(filter.Select("td:nth-child(2)")),
					func(tr *Transaction, v string) { tr.Raw = v }),
				element.Bind("amount", filter.CleanDecimal(filter.Select("td:last-child")),
					func(tr *Transaction, v decimal.Decimal) { tr.Amount = v }),
				element.BindValue("coming", true,
					func(tr *Transaction, v bool) { tr.Coming = v }),
			},
		},
	},
}

func minCells(n int) filter.Filter[bool] {
	return filter.Func[bool](func(s filter.Scope) (bool, error) {
		return s.Selection().ChildrenFiltered("td").Length() >= n, nil
	})
}

func date(cell filter.Filter[*goquery.Selection]) filter.Filter[time.Time] {
	return filter.Date(filter.CleanText(cell), "02/01/2006", "02/01/06")
}

// rawLabel joins the lines of the label cell. Card payments put the
// merchant on the second line, it comes first.
func rawLabel(s *element.Scope, _ *Transaction) (string, error) {
	cell, err := filter.TableCell("raw").Filter(s)
	if err != nil {
		return "", err
	}

	var parts []string
	cell.Contents().Each(func(_ int, c *goquery.Selection) {
		if t := filter.CleanSelection(c); t != "" {
			parts = append(parts, t)
		}
	})

	if len(parts) > 1 && strings.HasPrefix(parts[0], "PAIEMENT CB") {
		parts[0], parts[len(parts)-1] = parts[len(parts)-1], parts[0]
	}

	return strings.Join(parts, " "), nil
}

func cellAmount(s *element.Scope, name string) (decimal.Decimal, error) {
	cell, err := filter.TableCell(name).Filter(s)
	if errors.Is(err, filter.ErrColumnNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	txt := filter.CleanSelection(cell)
	if txt == "" {
		return decimal.Zero, nil
	}

	return filter.ParseDecimal(txt)
}

var pageCountRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)

// nextPage submits the pagination form with the following page number,
// until the "current / last" counter shows the last page.
func nextPage(s *element.Scope) (*spider.Request, error) {
	form, err := s.Page().HTML().Form(spider.FormQuery{Selector: "form#paginationForm"})
	if errors.Is(err, spider.ErrFormNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m := pageCountRe.FindStringSubmatch(filter.CleanSelection(form.Selection()))
	if m == nil {
		return nil, nil
	}

	cur, _ := strconv.Atoi(m[1])
	last, _ := strconv.Atoi(m[2])
	if cur >= last {
		return nil, nil
	}

	form.Set("page", strconv.Itoa(cur+1))

	return form.Request(), nil
}
