package filter

import (
	"fmt"

	"github.com/robertkrimen/otto"
)

// JS evaluates a javascript expression on the output of in. The value is
// exposed to the script as `value`, and the script result is converted
// to a string.
//
//	JS(CleanText(Select("td.label")), `value.replace(/^\d+ /, "")`)
func JS(in Filter[string], script string) Filter[string] {
	return Map(in, func(s string) (string, error) {
		vm := otto.New()
		if err := vm.Set("value", s); err != nil {
			return "", err
		}

		v, err := vm.Run(script)
		if err != nil {
			return "", fmt.Errorf("run script: %w", err)
		}

		if v.IsUndefined() || v.IsNull() {
			return "", nil
		}

		return v.ToString()
	})
}
