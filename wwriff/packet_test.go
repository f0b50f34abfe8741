package wwriff

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestReadPacketHeaderModernSixByte(t *testing.T) {
	var buf bytes.Buffer
	var size [2]byte
	binary.LittleEndian.PutUint16(size[:], 42)
	buf.Write(size[:])
	var granule [4]byte
	binary.LittleEndian.PutUint32(granule[:], 9000)
	buf.Write(granule[:])
	buf.Write(make([]byte, 42))

	h, err := readPacketHeader(bytes.NewReader(buf.Bytes()), 0, LittleEndian, false)
	if err != nil {
		t.Fatal(err)
	}
	if h.HeaderSize != 6 {
		t.Fatalf("got header size %d, want 6", h.HeaderSize)
	}
	if h.Size != 42 || h.Granule != 9000 {
		t.Fatalf("got size=%d granule=%d", h.Size, h.Granule)
	}
	if h.PayloadOffset() != 6 {
		t.Fatalf("got payload offset %d, want 6", h.PayloadOffset())
	}
	if h.NextOffset() != 48 {
		t.Fatalf("got next offset %d, want 48", h.NextOffset())
	}
}

func TestReadPacketHeaderNoGranuleTwoByte(t *testing.T) {
	var buf bytes.Buffer
	var size [2]byte
	binary.LittleEndian.PutUint16(size[:], 7)
	buf.Write(size[:])
	buf.Write(make([]byte, 7))

	h, err := readPacketHeader(bytes.NewReader(buf.Bytes()), 0, LittleEndian, true)
	if err != nil {
		t.Fatal(err)
	}
	if h.HeaderSize != 2 {
		t.Fatalf("got header size %d, want 2", h.HeaderSize)
	}
	if h.Granule != 0 {
		t.Fatalf("no_granule packets should report granule 0, got %d", h.Granule)
	}
}

func TestReadPacketHeader8BigEndian(t *testing.T) {
	var buf bytes.Buffer
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], 5)
	buf.Write(size[:])
	var granule [4]byte
	binary.BigEndian.PutUint32(granule[:], 100)
	buf.Write(granule[:])
	buf.Write(make([]byte, 5))

	h, err := readPacketHeader8(bytes.NewReader(buf.Bytes()), 0, BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	if h.HeaderSize != 8 || h.Size != 5 || h.Granule != 100 {
		t.Fatalf("unexpected header %+v", h)
	}
}

func TestDescriptorReadPacketHeaderDispatch(t *testing.T) {
	var buf bytes.Buffer
	var size [2]byte
	binary.LittleEndian.PutUint16(size[:], 3)
	buf.Write(size[:])
	var granule [4]byte
	binary.LittleEndian.PutUint32(granule[:], 1)
	buf.Write(granule[:])
	buf.Write(make([]byte, 3))

	d := &Descriptor{Endian: LittleEndian}
	h, err := d.ReadPacketHeader(bytes.NewReader(buf.Bytes()), 0)
	if err != nil {
		t.Fatal(err)
	}
	if h.HeaderSize != 6 {
		t.Fatalf("expected standard 6-byte dispatch, got header size %d", h.HeaderSize)
	}
}
