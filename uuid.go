package att

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// bleBaseUUID is the Bluetooth Base UUID, big-endian byte order, used to
// expand a 16- or 32-bit UUID to its full 128-bit form for comparison.
//
// 00000000-0000-1000-8000-00805F9B34FB
var bleBaseUUID = [16]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0x80, 0x5F, 0x9B, 0x34, 0xFB,
}

// UUID is a Bluetooth attribute UUID: 16-bit, 32-bit or 128-bit. b holds the
// UUID in little-endian byte order, matching the wire encoding, so Len()
// alone distinguishes the width.
type UUID struct {
	b []byte
}

// UUID16 builds a UUID from a 16-bit shorthand, e.g. 0x2800.
func UUID16(n uint16) UUID {
	return UUID{b: []byte{byte(n), byte(n >> 8)}}
}

// UUID32 builds a UUID from a 32-bit shorthand.
func UUID32(n uint32) UUID {
	return UUID{b: []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}}
}

// MustParseUUID is like ParseUUID but panics on error. It exists for tests
// and package-level UUID tables where the literal is known-good.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// ParseUUID parses either a canonical 8-4-4-4-12 128-bit UUID string or a
// bare 4-hex-digit 16-bit shorthand.
func ParseUUID(s string) (UUID, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 4 {
		b, err := hex.DecodeString(s)
		if err != nil {
			return UUID{}, fmt.Errorf("att: invalid 16-bit uuid %q: %w", s, err)
		}
		return UUID{b: reverse(b)}, nil
	}

	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 32 {
		return UUID{}, fmt.Errorf("att: invalid uuid %q: want 4 or 32 hex digits", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return UUID{}, fmt.Errorf("att: invalid uuid %q: %w", s, err)
	}
	return UUID{b: reverse(b)}, nil
}

// Len reports the UUID's width in bytes: 2, 4 or 16.
func (u UUID) Len() int { return len(u.b) }

// Bytes returns the little-endian wire encoding of u, at its native width.
func (u UUID) Bytes() []byte { return u.b }

// full returns the 128-bit expansion of u, big-endian, for width-normalized
// comparison.
func (u UUID) full() [16]byte {
	switch len(u.b) {
	case 16:
		var out [16]byte
		copy(out[:], reverse(u.b))
		return out
	case 4:
		out := bleBaseUUID
		copy(out[0:4], reverse(u.b))
		return out
	case 2:
		out := bleBaseUUID
		copy(out[2:4], reverse(u.b))
		return out
	default:
		return [16]byte{}
	}
}

// Equal reports whether u and o denote the same attribute type, expanding
// 16- and 32-bit forms to the Bluetooth Base UUID before comparing.
func (u UUID) Equal(o UUID) bool {
	return u.full() == o.full()
}

// String renders u in canonical 8-4-4-4-12 lowercase hex, or as a bare
// 4-hex-digit shorthand for 16-bit UUIDs.
func (u UUID) String() string {
	b := reverse(u.b)
	if len(b) == 2 {
		return hex.EncodeToString(b)
	}
	full := u.full()
	h := hex.EncodeToString(full[:])
	return fmt.Sprintf("%s-%s-%s-%s-%s", h[0:8], h[8:12], h[12:16], h[16:20], h[20:32])
}

// reverse returns a copy of b with byte order reversed. It is used to
// convert between the wire's little-endian UUID encoding and canonical
// big-endian textual/comparison form.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
