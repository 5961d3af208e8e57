package spider

// 采集规则树
type RuleTree struct {
	Root  func(baseURL string) *Router // 根节点：站点路由表
	Rules []*Rule                      // 按顺序执行的规则
}

// 采集规则节点
type Rule struct {
	Name       string
	ItemFields []string
	ParseFunc  func(*Context) error // 内容解析函数
}

func (t *RuleTree) Get(name string) (*Rule, bool) {
	for _, r := range t.Rules {
		if r.Name == name {
			return r, true
		}
	}

	return nil, false
}
