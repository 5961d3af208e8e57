package spider

import (
	"context"
	"time"
)

// Context is handed to a rule: the browser of the task and the place
// where extracted data go.
type Context struct {
	ctx     context.Context
	Browser *Browser
	Task    *Task
	Rule    *Rule

	storage DataRepository
	count   int
}

func (c *Context) Context() context.Context {
	return c.ctx
}

// Output stores one extracted object.
func (c *Context) Output(data interface{}) error {
	res := &DataCell{
		Task: c.Task,
	}
	res.Data = make(map[string]interface{})
	res.Data["Task"] = c.Task.Name
	res.Data["Rule"] = c.Rule.Name
	res.Data["Data"] = data
	res.Data["URL"] = c.Browser.URL()
	res.Data["Time"] = time.Now().Format("2006-01-02 15:04:05")

	c.count++

	return c.storage.Save(res)
}
