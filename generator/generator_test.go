package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDbyIP(t *testing.T) {
	tests := []struct {
		ip   string
		id   uint32
		node int64
	}{
		{"10.0.0.1", 0x0a000001, 1},
		{"192.168.3.255", 0xc0a803ff, 1023},
		{"::1", 0, 0},
		{"not an ip", 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.id, IDbyIP(tt.ip), tt.ip)
		assert.Equal(t, tt.node, NodeID(tt.ip), tt.ip)
	}
}
