package spider

// TaskStore is a global instace
var (
	TaskStore = &taskStore{
		List: []*Task{},
		Hash: map[string]*Task{},
	}
)

type taskStore struct {
	List []*Task
	Hash map[string]*Task
}

func (c *taskStore) Add(task *Task) {
	if _, ok := c.Hash[task.Name]; !ok {
		c.List = append(c.List, task)
	}
	c.Hash[task.Name] = task
}

func GetFields(taskName string, ruleName string) []string {
	t, ok := TaskStore.Hash[taskName]
	if !ok {
		return nil
	}

	r, ok := t.Rule.Get(ruleName)
	if !ok {
		return nil
	}

	return r.ItemFields
}
