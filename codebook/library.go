package codebook

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Library is an immutable, randomly-addressable packed codebook library as
// described by a packed_codebooks.bin file: a sequence of concatenated
// codebook blobs followed by a little-endian u32 offset table, terminated
// by a u32 pointer to that table's own start.
type Library struct {
	data    []byte
	offsets []uint32 // len(offsets) == count+1; offsets[count] is the data end sentinel
}

// LoadLibrary reads a packed codebook library file in full.
func LoadLibrary(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "codebook: opening library %q", path)
	}
	defer f.Close()

	return ReadLibrary(f)
}

// ReadLibrary parses a packed codebook library from a seekable reader.
func ReadLibrary(r io.ReadSeeker) (*Library, error) {
	fileSize, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "codebook: seeking to end of library")
	}

	if fileSize < 4 {
		return nil, errors.New("codebook: library file too small")
	}

	if _, err := r.Seek(fileSize-4, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "codebook: seeking to offset-table pointer")
	}
	offsetIndexStart, err := readUint32LE(r)
	if err != nil {
		return nil, errors.Wrap(err, "codebook: reading offset-table pointer")
	}

	count := (uint32(fileSize) - offsetIndexStart) / 4

	data := make([]byte, offsetIndexStart)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "codebook: seeking to library start")
	}
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrap(err, "codebook: reading library data")
	}

	offsets := make([]uint32, count)
	for i := range offsets {
		v, err := readUint32LE(r)
		if err != nil {
			return nil, errors.Wrap(err, "codebook: reading offset table")
		}
		offsets[i] = v
	}

	return &Library{data: data, offsets: offsets}, nil
}

func readUint32LE(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// count returns the number of addressable codebooks (offsets has one extra
// sentinel entry holding the data end).
func (l *Library) count() int {
	if len(l.offsets) == 0 {
		return 0
	}
	return len(l.offsets) - 1
}

// entry returns the raw bytes of codebook i, or an error if i is out of range.
func (l *Library) entry(i int) ([]byte, error) {
	if i < 0 || i >= l.count() {
		return nil, &InvalidIDError{ID: i}
	}
	return l.data[l.offsets[i]:l.offsets[i+1]], nil
}
