package extensions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomUA(t *testing.T) {
	for i := 0; i < 20; i++ {
		ua := GenerateRandomUA()
		assert.True(t, strings.HasPrefix(ua, "Mozilla/5.0 "), ua)
		assert.Contains(t, userAgents, ua)
	}
}
