package element

// Env holds the named values of one scope.
type Env struct {
	data map[string]interface{}
}

func NewEnv(init map[string]interface{}) *Env {
	e := &Env{data: make(map[string]interface{}, len(init))}
	for k, v := range init {
		e.data[k] = v
	}
	return e
}

// Get returns the value stored under key in this scope.
func (e *Env) Get(key string) (interface{}, bool) {
	v, ok := e.data[key]
	return v, ok
}

func (e *Env) Set(key string, value interface{}) {
	e.data[key] = value
}

// Clone returns a shallow copy. Writes to the copy are not seen by e.
func (e *Env) Clone() *Env {
	return NewEnv(e.data)
}
