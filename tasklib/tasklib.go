package tasklib

import (
	"github.com/dreamerjackson/browser/spider"
	"github.com/dreamerjackson/browser/tasklib/bank"
	"github.com/dreamerjackson/browser/tasklib/quotes"
)

func init() {
	spider.TaskStore.Add(quotes.QuotesTask)
	spider.TaskStore.Add(bank.BankTask)
}
