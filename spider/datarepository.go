package spider

import "regexp"

var tableNameRe = regexp.MustCompile(`[^0-9A-Za-z_]+`)

type DataRepository interface {
	Save(datas ...*DataCell) error
}

type DataCell struct {
	Task *Task
	Data map[string]interface{}
}

// GetTableName returns <task>_<rule>, reduced to letters, digits and
// underscores.
func (d *DataCell) GetTableName() string {
	task, _ := d.Data["Task"].(string)
	rule, _ := d.Data["Rule"].(string)
	return tableNameRe.ReplaceAllString(task+"_"+rule, "_")
}

func (d *DataCell) GetTaskName() string {
	task, _ := d.Data["Task"].(string)
	return task
}

// Fields returns the item fields declared by the rule that produced the cell.
func (d *DataCell) Fields() []string {
	rule, _ := d.Data["Rule"].(string)
	if d.Task != nil {
		if r, ok := d.Task.Rule.Get(rule); ok {
			return r.ItemFields
		}
	}

	task, _ := d.Data["Task"].(string)

	return GetFields(task, rule)
}

type EmptyDataRepository struct{}

func (EmptyDataRepository) Save(datas ...*DataCell) error {
	return nil
}
