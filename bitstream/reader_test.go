package bitstream

import (
	"bytes"
	"testing"
)

func TestReadBitLSBFirst(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01})) // 0b00000001
	bit, err := r.ReadBit()
	if err != nil {
		t.Fatal(err)
	}
	if !bit {
		t.Fatalf("expected the first bit read (LSB) to be set")
	}
	for i := 0; i < 7; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			t.Fatal(err)
		}
		if bit {
			t.Fatalf("expected remaining bits to be clear")
		}
	}
}

func TestReadUintAccumulatesLSBFirst(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0b00000101})) // bits: 1,0,1,0,...
	v, err := r.ReadUint(3)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0b101 {
		t.Fatalf("got %b, want %b", v, 0b101)
	}
}

func TestReadUintAcrossByteBoundary(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0x00}))
	v, err := r.ReadUint(12)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x0FF {
		t.Fatalf("got %x, want %x", v, 0x0FF)
	}
}

func TestReadBitOutOfBits(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	if _, err := r.ReadBit(); err == nil {
		t.Fatalf("expected an error reading past end of stream")
	}
}

func TestTotalBitsRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0xFF}))
	if _, err := r.ReadUint(10); err != nil {
		t.Fatal(err)
	}
	if r.TotalBitsRead() != 10 {
		t.Fatalf("got %d, want 10", r.TotalBitsRead())
	}
}
