package generator

import (
	"bytes"
	"encoding/binary"
	"net"
)

// IDbyIP reads an IPv4 address as a big endian number, 0 when ip is not
// an IPv4 address.
func IDbyIP(ip string) uint32 {
	v4 := net.ParseIP(ip).To4()
	if v4 == nil {
		return 0
	}

	var id uint32
	if err := binary.Read(bytes.NewBuffer(v4), binary.BigEndian, &id); err != nil {
		return 0
	}

	return id
}

// NodeID derives a snowflake node number (10 bits) from the host address,
// so that two hosts writing the same tables do not generate equal keys.
func NodeID(ip string) int64 {
	return int64(IDbyIP(ip) & 0x3ff)
}
