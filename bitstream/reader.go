package bitstream

import (
	"io"

	"github.com/pkg/errors"
)

// ErrOutOfBits is returned when a bit read reaches past the end of the
// underlying byte source.
var ErrOutOfBits = errors.New("bitstream: out of bits")

// Reader pulls individual bits, LSB-first within each byte, off an
// io.Reader. A fresh Reader should be created for each packet that needs
// bit-level access; it is not safe to reuse across byte-aligned boundaries
// that matter to the caller.
type Reader struct {
	r io.Reader

	buf          byte
	bitsLeft     uint
	totalBitsRead uint64
}

// NewReader returns a Reader pulling bits from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadBit returns the next bit off the stream.
func (b *Reader) ReadBit() (bool, error) {
	if b.bitsLeft == 0 {
		var c [1]byte
		if _, err := io.ReadFull(b.r, c[:]); err != nil {
			return false, errors.Wrap(ErrOutOfBits, err.Error())
		}
		b.buf = c[0]
		b.bitsLeft = 8
	}
	b.totalBitsRead++
	b.bitsLeft--
	bit := b.buf&(0x80>>b.bitsLeft) != 0
	return bit, nil
}

// ReadUint reads n bits (n <= 32) and assembles them LSB-first into a
// uint32: the i-th bit read occupies 1<<i.
func (b *Reader) ReadUint(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		bit, err := b.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// TotalBitsRead returns the running count of bits consumed so far.
func (b *Reader) TotalBitsRead() uint64 {
	return b.totalBitsRead
}
