package codebook

import (
	"bytes"

	"github.com/hcs64/ww2ogg2/bitstream"
	"github.com/pkg/errors"
)

// vorbisCodebookSync is the 24-bit "BCV" identifier (ASCII "vorbis" codebook
// sync, little-endian) that begins every standard Vorbis codebook.
const vorbisCodebookSync = 0x564342

// RebuildFromLibrary expands the external packed codebook identified by id
// into a standard Vorbis codebook, writing it to pw.
func (l *Library) RebuildFromLibrary(id int, pw *bitstream.PageWriter) error {
	entry, err := l.entry(id)
	if err != nil {
		return err
	}
	br := bitstream.NewReader(bytes.NewReader(entry))
	return Rebuild(br, uint64(len(entry)), pw)
}

// Copy verifies and re-emits an inline, already-standard Vorbis codebook
// (used for the --full-setup path and for header-triad setup packets).
func Copy(br *bitstream.Reader, pw *bitstream.PageWriter) error {
	id, err := br.ReadUint(24)
	if err != nil {
		return err
	}
	if id != vorbisCodebookSync {
		return errors.New("codebook: invalid codebook identifier")
	}

	dimensions, err := br.ReadUint(16)
	if err != nil {
		return err
	}
	entries, err := br.ReadUint(24)
	if err != nil {
		return err
	}

	if err := pw.PutUint(id, 24); err != nil {
		return err
	}
	if err := pw.PutUint(dimensions, 16); err != nil {
		return err
	}
	if err := pw.PutUint(entries, 24); err != nil {
		return err
	}

	ordered, err := br.ReadUint(1)
	if err != nil {
		return err
	}
	if err := pw.PutUint(ordered, 1); err != nil {
		return err
	}

	if ordered != 0 {
		if err := copyOrderedLengths(br, pw, entries); err != nil {
			return err
		}
	} else {
		sparse, err := br.ReadUint(1)
		if err != nil {
			return err
		}
		if err := pw.PutUint(sparse, 1); err != nil {
			return err
		}

		for i := uint32(0); i < entries; i++ {
			present := true
			if sparse != 0 {
				p, err := br.ReadUint(1)
				if err != nil {
					return err
				}
				if err := pw.PutUint(p, 1); err != nil {
					return err
				}
				present = p != 0
			}
			if present {
				length, err := br.ReadUint(5)
				if err != nil {
					return err
				}
				if err := pw.PutUint(length, 5); err != nil {
					return err
				}
			}
		}
	}

	return copyLookupTable(br, pw, entries, dimensions)
}

// Rebuild expands a stripped Wwise-packed codebook into a standard Vorbis
// codebook. cbSize is the number of bytes the packed source is expected to
// occupy; pass 0 to disable the post-rebuild length check (used for inline
// bitstreams where the size is not separately known).
func Rebuild(br *bitstream.Reader, cbSize uint64, pw *bitstream.PageWriter) error {
	dimensions, err := br.ReadUint(4)
	if err != nil {
		return err
	}
	entries, err := br.ReadUint(14)
	if err != nil {
		return err
	}

	if err := pw.PutUint(vorbisCodebookSync, 24); err != nil {
		return err
	}
	if err := pw.PutUint(dimensions, 16); err != nil {
		return err
	}
	if err := pw.PutUint(entries, 24); err != nil {
		return err
	}

	ordered, err := br.ReadUint(1)
	if err != nil {
		return err
	}
	if err := pw.PutUint(ordered, 1); err != nil {
		return err
	}

	if ordered != 0 {
		if err := copyOrderedLengths(br, pw, entries); err != nil {
			return err
		}
	} else {
		codewordLengthLength, err := br.ReadUint(3)
		if err != nil {
			return err
		}
		sparse, err := br.ReadUint(1)
		if err != nil {
			return err
		}

		if codewordLengthLength == 0 || codewordLengthLength > 5 {
			return errors.New("codebook: nonsense codeword length")
		}

		if err := pw.PutUint(sparse, 1); err != nil {
			return err
		}

		for i := uint32(0); i < entries; i++ {
			present := true
			if sparse != 0 {
				p, err := br.ReadUint(1)
				if err != nil {
					return err
				}
				if err := pw.PutUint(p, 1); err != nil {
					return err
				}
				present = p != 0
			}
			if present {
				length, err := br.ReadUint(int(codewordLengthLength))
				if err != nil {
					return err
				}
				if err := pw.PutUint(length, 5); err != nil {
					return err
				}
			}
		}
	}

	lookupType, err := br.ReadUint(1)
	if err != nil {
		return err
	}
	if err := pw.PutUint(lookupType, 4); err != nil {
		return err
	}
	if err := writeLookupTableTail(br, pw, lookupType, entries, dimensions); err != nil {
		return err
	}

	if cbSize != 0 {
		read := br.TotalBitsRead()/8 + 1
		if read != cbSize {
			return &SizeMismatchError{Expected: cbSize, Actual: read}
		}
	}

	return nil
}

// copyOrderedLengths streams an ordered codeword-length run-length schema
// straight through: a 5-bit initial length, then repeated
// ilog(entries-current)-bit run counts until all entries are accounted for.
func copyOrderedLengths(br *bitstream.Reader, pw *bitstream.PageWriter, entries uint32) error {
	initialLength, err := br.ReadUint(5)
	if err != nil {
		return err
	}
	if err := pw.PutUint(initialLength, 5); err != nil {
		return err
	}

	var current uint32
	for current < entries {
		bits := Ilog(entries - current)
		number, err := br.ReadUint(bits)
		if err != nil {
			return err
		}
		if err := pw.PutUint(number, bits); err != nil {
			return err
		}
		current += number
	}
	if current > entries {
		return errors.New("codebook: current_entry out of range")
	}
	return nil
}

// copyLookupTable reads a standard-schema 4-bit lookup type plus its
// payload and re-emits both verbatim. Used by Copy; the payload is handled
// by writeLookupTableTail, which Rebuild shares after reading its own
// 1-bit lookup type.
func copyLookupTable(br *bitstream.Reader, pw *bitstream.PageWriter, entries, dimensions uint32) error {
	lookupType, err := br.ReadUint(4)
	if err != nil {
		return err
	}
	if err := pw.PutUint(lookupType, 4); err != nil {
		return err
	}
	return writeLookupTableTail(br, pw, lookupType, entries, dimensions)
}

// writeLookupTableTail handles the lookup type 0/1 payload common to both
// the copy and rebuild schemas, given that the lookup type itself (0 or 1)
// has already been read and written by the caller.
func writeLookupTableTail(br *bitstream.Reader, pw *bitstream.PageWriter, lookupType, entries, dimensions uint32) error {
	switch lookupType {
	case 0:
		return nil
	case 1:
		minVal, err := br.ReadUint(32)
		if err != nil {
			return err
		}
		maxVal, err := br.ReadUint(32)
		if err != nil {
			return err
		}
		valueLength, err := br.ReadUint(4)
		if err != nil {
			return err
		}
		sequenceFlag, err := br.ReadUint(1)
		if err != nil {
			return err
		}

		if err := pw.PutUint(minVal, 32); err != nil {
			return err
		}
		if err := pw.PutUint(maxVal, 32); err != nil {
			return err
		}
		if err := pw.PutUint(valueLength, 4); err != nil {
			return err
		}
		if err := pw.PutUint(sequenceFlag, 1); err != nil {
			return err
		}

		quantvals := Quantvals(entries, dimensions)
		for i := uint32(0); i < quantvals; i++ {
			val, err := br.ReadUint(int(valueLength) + 1)
			if err != nil {
				return err
			}
			if err := pw.PutUint(val, int(valueLength)+1); err != nil {
				return err
			}
		}
		return nil
	case 2:
		return errors.New("codebook: didn't expect lookup type 2")
	default:
		return errors.New("codebook: invalid lookup type")
	}
}
