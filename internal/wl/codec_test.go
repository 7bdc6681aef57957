//go:build linux

package wl

import (
	"errors"
	"testing"
)

func TestFixedConversions(t *testing.T) {
	if got := FixedFromInt(3).Float(); got != 3 {
		t.Fatalf("FixedFromInt(3).Float() = %v, want 3", got)
	}
	if got := FixedFromFloat(1.5); got != 384 {
		t.Fatalf("FixedFromFloat(1.5) = %d, want 384", got)
	}
	if got := FixedFromFloat(-2.25).Float(); got != -2.25 {
		t.Fatalf("round trip of -2.25 = %v", got)
	}
	if got := FixedFromFloat(-1.5).Int(); got != -1 {
		t.Fatalf("Int() of -1.5 = %d, want -1", got)
	}
}

func TestEncoderPadsStringsToWords(t *testing.T) {
	cases := []struct {
		s    string
		size int
	}{
		{"", 8},
		{"abc", 8},
		{"abcd", 12},
		{"wl_compositor", 20},
	}
	for _, tc := range cases {
		var e Encoder
		e.String(tc.s)
		if len(e.Bytes()) != tc.size {
			t.Fatalf("String(%q) encoded to %d bytes, want %d", tc.s, len(e.Bytes()), tc.size)
		}
		d := NewDecoder(e.Bytes(), nil)
		if got := d.String(); got != tc.s || d.Err() != nil {
			t.Fatalf("decoded %q (err %v), want %q", got, d.Err(), tc.s)
		}
	}
}

func TestHeaderCarriesSizeAndOpcode(t *testing.T) {
	var e Encoder
	e.Uint(7)
	e.Int(-1)
	msg := AppendMessage(nil, 42, 3, e.Bytes())
	sender, opcode, size, ok := ParseHeader(msg)
	if !ok {
		t.Fatal("ParseHeader reported a short header")
	}
	if sender != 42 || opcode != 3 || size != 16 {
		t.Fatalf("header = (%d, %d, %d), want (42, 3, 16)", sender, opcode, size)
	}
	if _, _, _, ok := ParseHeader(msg[:7]); ok {
		t.Fatal("ParseHeader accepted seven bytes")
	}
}

func TestDecoderReportsTruncatedArguments(t *testing.T) {
	var e Encoder
	e.Uint(100)
	d := NewDecoder(e.Bytes(), nil)
	if b := d.Array(); b != nil {
		t.Fatalf("Array() = %v, want nil", b)
	}
	if !errors.Is(d.Err(), errShortMessage) {
		t.Fatalf("Err() = %v, want errShortMessage", d.Err())
	}
	if d.Uint() != 0 {
		t.Fatal("decoder kept reading after an error")
	}
}

func TestDecoderFDWithoutSourceFails(t *testing.T) {
	d := NewDecoder(nil, nil)
	if fd := d.FD(); fd != -1 {
		t.Fatalf("FD() = %d, want -1", fd)
	}
	if d.Err() == nil {
		t.Fatal("expected an error for a missing descriptor")
	}
}

func TestUint32s(t *testing.T) {
	var e Encoder
	e.Uint(ToplevelStateMaximized)
	e.Uint(ToplevelStateActivated)
	got := Uint32s(e.Bytes())
	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Fatalf("Uint32s = %v, want [1 4]", got)
	}
}
