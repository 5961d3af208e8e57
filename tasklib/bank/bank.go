package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dreamerjackson/browser/element"
	"github.com/dreamerjackson/browser/limiter"
	"github.com/dreamerjackson/browser/spider"
	"golang.org/x/time/rate"
)

const (
	BaseURL      = "https://www.creditmutuel.fr"
	accountsPath = "/fr/banque/situation_financiere.cgi"
)

var errUnexpectedPage = errors.New("unexpected page")

// BankTask reads the accounts and their history. The site requires a
// session: the cookie of a logged-in browser has to be configured.
var BankTask = &spider.Task{
	Options: spider.Options{
		Name: "bank",
		URL:  BaseURL,
		Limit: limiter.Multi(
			rate.NewLimiter(limiter.Per(1, 2*time.Second), 1),
		),
		WaitTime: 1,
	},
	Rule: spider.RuleTree{
		Root: Router,
		Rules: []*spider.Rule{
			{
				Name:       "accounts",
				ItemFields: []string{"ID", "Label", "Type", "Balance", "Coming", "Currency"},
				ParseFunc:  ParseAccounts,
			},
			{
				Name:       "history",
				ItemFields: []string{"Account", "Date", "VDate", "Raw", "Amount", "Coming"},
				ParseFunc:  ParseHistory,
			},
		},
	},
}

func Router(base string) *spider.Router {
	r := spider.NewRouter(base)
	r.Register("login", func(h *spider.HTMLPage) spider.Page { return &LoginPage{h} },
		`/fr/authentification\.html`, `/fr/identification/default\.cgi`)
	r.Register("change_password", func(h *spider.HTMLPage) spider.Page { return &ChangePasswordPage{h} },
		`/fr/validation/change_password\.cgi`)
	r.Register("verif_code", func(h *spider.HTMLPage) spider.Page { return &VerifCodePage{h} },
		`/fr/validation/verif_code\.cgi(?:\?.*)?`)
	r.Register("accounts", func(h *spider.HTMLPage) spider.Page { return &AccountsPage{h} },
		`/fr/banque/situation_financiere\.cgi`, `/fr/banque/comptes-et-contrats\.html`)
	r.Register("operations", func(h *spider.HTMLPage) spider.Page { return &OperationsPage{h} },
		`/fr/banque/mouvements\.cgi(?:\?.*)?`)
	r.Register("coming", func(h *spider.HTMLPage) spider.Page { return &ComingPage{h} },
		`/fr/banque/mvts_instance\.cgi(?:\?.*)?`)

	return r
}

// GetAccounts goes to the account list, unless already there, and reads
// every account of it.
func GetAccounts(ctx context.Context, b *spider.Browser) ([]*Account, error) {
	page, _, err := b.StayOrGo(ctx, "accounts", spider.GET(accountsPath))
	if err != nil {
		return nil, err
	}

	ap, ok := page.(*AccountsPage)
	if !ok {
		return nil, fmt.Errorf("%w: landed on %s", spider.ErrLoginRequired, b.URL())
	}

	return element.Collect(ap.IterAccounts(ctx))
}

// GetHistory returns the pending operations of an account followed by its
// past ones, across every page of both lists.
func GetHistory(ctx context.Context, b *spider.Browser, a *Account) ([]*Transaction, error) {
	if a.Link == "" {
		return nil, nil
	}

	if _, _, err := b.Location(ctx, spider.GET(a.Link)); err != nil {
		return nil, err
	}

	var coming string
	if op, ok := b.Page().(*OperationsPage); ok {
		coming = op.ComingLink()
	}

	trs, err := spider.Pagination(ctx, b, history(ctx, b)).All()
	if err != nil {
		return nil, err
	}

	if coming != "" {
		if _, _, err := b.Location(ctx, spider.GET(coming)); err != nil {
			return nil, err
		}

		pending, err := spider.Pagination(ctx, b, history(ctx, b)).All()
		if err != nil {
			return nil, err
		}
		trs = append(pending, trs...)
	}

	for _, tr := range trs {
		tr.Account = a.ID
	}

	return trs, nil
}

func history(ctx context.Context, b *spider.Browser) func() (spider.Producer[*Transaction], error) {
	return func() (spider.Producer[*Transaction], error) {
		switch p := b.Page().(type) {
		case *OperationsPage:
			return p.IterHistory(ctx), nil
		case *ComingPage:
			return p.IterHistory(ctx), nil
		}

		return nil, fmt.Errorf("%w: %s", errUnexpectedPage, b.URL())
	}
}

func ParseAccounts(ctx *spider.Context) error {
	accounts, err := GetAccounts(ctx.Context(), ctx.Browser)
	if err != nil {
		return err
	}

	for _, a := range accounts {
		if err := ctx.Output(a); err != nil {
			return err
		}
	}

	return nil
}

func ParseHistory(ctx *spider.Context) error {
	accounts, err := GetAccounts(ctx.Context(), ctx.Browser)
	if err != nil {
		return err
	}

	for _, a := range accounts {
		trs, err := GetHistory(ctx.Context(), ctx.Browser, a)
		if err != nil {
			return fmt.Errorf("account %s: %w", a.ID, err)
		}

		for _, tr := range trs {
			if err := ctx.Output(tr); err != nil {
				return err
			}
		}
	}

	return nil
}
