package evq

import "testing"

func TestFlags_EOFByteRoundTrip(t *testing.T) {
	var f Flags = FlagRead | FlagActive
	f = f.WithEOFByte(0x7f)
	if got := f.EOFByte(); got != 0x7f {
		t.Fatalf("EOFByte() = %#x, want 0x7f", got)
	}
	if !f.Has(FlagRead) || !f.Has(FlagActive) {
		t.Fatal("WithEOFByte clobbered unrelated bits")
	}
}

func TestFlags_Has(t *testing.T) {
	f := FlagRead | FlagWrite
	if !f.Has(FlagRead) {
		t.Fatal("Has(FlagRead) = false")
	}
	if f.Has(FlagTimer) {
		t.Fatal("Has(FlagTimer) = true, want false")
	}
	if !f.Has(FlagRead | FlagWrite) {
		t.Fatal("Has with combined mask = false")
	}
}
