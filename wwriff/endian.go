package wwriff

import (
	"encoding/binary"
	"io"
)

// Endian distinguishes the RIFF ("RIFF", little-endian) and RIFX ("RIFX",
// big-endian) container variants; every multi-byte integer in the file
// follows whichever endianness the four-byte form tag selected.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endian) readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return e.order().Uint16(b[:]), nil
}

func (e Endian) readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return e.order().Uint32(b[:]), nil
}
