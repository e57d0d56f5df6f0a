package att

import (
	"bytes"
	"testing"
)

func TestUUID16(t *testing.T) {
	if want, got := (UUID{[]byte{0x00, 0x18}}), UUID16(0x1800); !got.Equal(want) {
		t.Errorf("UUID16: got %x, want %x", got.Bytes(), want.Bytes())
	}
}

func TestUUID32(t *testing.T) {
	u := UUID32(0x12345678)
	if got, want := u.Bytes(), []byte{0x78, 0x56, 0x34, 0x12}; !bytes.Equal(got, want) {
		t.Errorf("UUID32: got %x want %x", got, want)
	}
}

func TestReverse(t *testing.T) {
	cases := []struct {
		fwd  []byte
		back []byte
	}{
		{fwd: []byte{0, 1}, back: []byte{1, 0}},
		{fwd: []byte{0, 1, 2}, back: []byte{2, 1, 0}},
		{fwd: []byte{0, 1, 2, 3}, back: []byte{3, 2, 1, 0}},
		{
			fwd:  []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			back: []byte{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
		},
	}

	for _, tt := range cases {
		got := reverse(tt.fwd)
		if !bytes.Equal(got, tt.back) {
			t.Errorf("reverse(%x): got %x want %x", tt.fwd, got, tt.back)
		}

		u := UUID{tt.fwd}
		got = reverse(u.b)
		if !bytes.Equal(got, tt.back) {
			t.Errorf("UUID.reverse(%x): got %x want %x", tt.fwd, got, tt.back)
		}
	}
}

func TestParseUUIDShorthand(t *testing.T) {
	u, err := ParseUUID("1800")
	if err != nil {
		t.Fatalf("ParseUUID: %v", err)
	}
	if !u.Equal(UUID16(0x1800)) {
		t.Errorf("ParseUUID(1800): got %s", u)
	}
	if u.Len() != 2 {
		t.Errorf("ParseUUID(1800): Len() = %d, want 2", u.Len())
	}
}

func TestParseUUIDCanonical(t *testing.T) {
	cases := []string{
		"0000180d-0000-1000-8000-00805f9b34fb",
		"0000180D-0000-1000-8000-00805F9B34FB",
		"0000180d000010008000" + "00805f9b34fb",
	}
	for _, s := range cases {
		u, err := ParseUUID(s)
		if err != nil {
			t.Fatalf("ParseUUID(%q): %v", s, err)
		}
		if !u.Equal(UUID16(0x180d)) {
			t.Errorf("ParseUUID(%q): got %s, want equal to 180d expansion", s, u)
		}
	}
}

func TestParseUUIDInvalid(t *testing.T) {
	cases := []string{"", "123", "not-hex-at-all-not-hex-at-all-x", "zzzz"}
	for _, s := range cases {
		if _, err := ParseUUID(s); err == nil {
			t.Errorf("ParseUUID(%q): expected error, got nil", s)
		}
	}
}

func TestUUIDEqualAcrossWidths(t *testing.T) {
	short := UUID16(0x2a00)
	long := MustParseUUID("00002a00-0000-1000-8000-00805f9b34fb")
	if !short.Equal(long) {
		t.Errorf("UUID16(0x2a00) should equal its 128-bit expansion, got short=%s long=%s", short, long)
	}

	other := MustParseUUID("12345678-1234-5678-1234-56789abcdef0")
	if short.Equal(other) {
		t.Errorf("unrelated 128-bit uuid should not equal 16-bit shorthand")
	}
}

func TestUUIDStringRoundTrip(t *testing.T) {
	u := MustParseUUID("12345678-1234-5678-1234-56789abcdef0")
	if got, want := u.String(), "12345678-1234-5678-1234-56789abcdef0"; got != want {
		t.Errorf("String(): got %s want %s", got, want)
	}

	u16 := UUID16(0x180d)
	if got, want := u16.String(), "180d"; got != want {
		t.Errorf("String() shorthand: got %s want %s", got, want)
	}
}

func BenchmarkReverseBytes16(b *testing.B) {
	u := UUID{make([]byte, 2)}
	for i := 0; i < b.N; i++ {
		reverse(u.b)
	}
}

func BenchmarkReverseBytes128(b *testing.B) {
	u := UUID{make([]byte, 16)}
	for i := 0; i < b.N; i++ {
		reverse(u.b)
	}
}
