package bitstream

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	headerBytes  = 27
	maxSegments  = 255
	segmentSize  = 255
	oggMagic     = "OggS"
	streamSerial = 1

	// noGranule is the Vorbis/Ogg "no granule position recorded" sentinel.
	noGranule = 0xFFFFFFFF
)

// pageFlag bits for the Ogg page header's header_type_flag byte.
const (
	pageFlagContinued = 0x01
	pageFlagFirst     = 0x02
	pageFlagLast      = 0x04
)

// ErrPageOverflow is returned if a single Ogg packet would need more than
// 255 lacing segments (65025 bytes) without an intervening flush.
var ErrPageOverflow = errors.New("bitstream: ran out of space in an Ogg packet")

// PageWriter accumulates bits into a payload buffer and segments it into
// Ogg pages (header, lacing values, CRC-32) written to an io.Writer sink.
// It owns a single, fixed-size page buffer for the lifetime of the writer.
type PageWriter struct {
	w io.Writer

	bitBuf      byte
	bitsStored  uint

	payload       []byte
	payloadBytes  int
	first         bool
	continued     bool
	granule       uint32
	seqno         uint32
}

// NewPageWriter returns a PageWriter emitting pages to w.
func NewPageWriter(w io.Writer) *PageWriter {
	return &PageWriter{
		w:       w,
		payload: make([]byte, 0, maxSegments*segmentSize),
		first:   true,
	}
}

// PutBit appends a single bit (LSB-first) to the pending payload byte.
func (p *PageWriter) PutBit(bit bool) error {
	if bit {
		p.bitBuf |= 1 << p.bitsStored
	}
	p.bitsStored++
	if p.bitsStored == 8 {
		return p.FlushBits()
	}
	return nil
}

// PutUint emits the low n bits of v, LSB-first.
func (p *PageWriter) PutUint(v uint32, n int) error {
	for i := 0; i < n; i++ {
		if err := p.PutBit(v&(1<<uint(i)) != 0); err != nil {
			return err
		}
	}
	return nil
}

// FlushBits pads the current partial byte with zero bits and appends it to
// the payload buffer. It is a no-op if no bits are pending.
func (p *PageWriter) FlushBits() error {
	if p.bitsStored == 0 {
		return nil
	}
	if p.payloadBytes == segmentSize*maxSegments {
		return ErrPageOverflow
	}
	p.payload = append(p.payload, p.bitBuf)
	p.payloadBytes++
	p.bitBuf = 0
	p.bitsStored = 0
	return nil
}

// SetGranule sets the granule position that will be stamped on the next
// page flushed. It must be called before the FlushPage call that is meant
// to carry it.
func (p *PageWriter) SetGranule(g uint32) {
	p.granule = g
}

// FlushPage finishes the pending payload into a complete Ogg page and
// writes it to the sink. next_continued marks whether the subsequent page
// begins with the continuation of a packet split across this boundary;
// last marks the final page of the logical stream. It is a no-op (beyond
// bit-padding) if no payload is pending.
func (p *PageWriter) FlushPage(nextContinued, last bool) error {
	if err := p.FlushBits(); err != nil {
		return err
	}
	if p.payloadBytes == 0 {
		return nil
	}

	segments := (p.payloadBytes + segmentSize) / segmentSize // one per full 255 bytes, plus a terminating one
	if segments == maxSegments+1 {
		segments = maxSegments // at the max, eschew the final zero segment
	}

	page := make([]byte, headerBytes+segments+p.payloadBytes)

	copy(page[0:4], oggMagic)
	page[4] = 0 // stream_structure_version
	var flags byte
	if p.continued {
		flags |= pageFlagContinued
	}
	if p.first {
		flags |= pageFlagFirst
	}
	if last {
		flags |= pageFlagLast
	}
	page[5] = flags

	binary.LittleEndian.PutUint32(page[6:10], p.granule)
	if p.granule == noGranule {
		binary.LittleEndian.PutUint32(page[10:14], noGranule)
	} else {
		binary.LittleEndian.PutUint32(page[10:14], 0)
	}

	binary.LittleEndian.PutUint32(page[14:18], streamSerial)
	binary.LittleEndian.PutUint32(page[18:22], p.seqno)
	// page[22:26] (CRC) left zero until computed below.
	page[26] = byte(segments)

	bytesLeft := p.payloadBytes
	for i := 0; i < segments; i++ {
		if bytesLeft >= segmentSize {
			page[27+i] = segmentSize
			bytesLeft -= segmentSize
		} else {
			page[27+i] = byte(bytesLeft)
		}
	}

	copy(page[headerBytes+segments:], p.payload[:p.payloadBytes])

	binary.LittleEndian.PutUint32(page[22:26], Checksum(page))

	if _, err := p.w.Write(page); err != nil {
		return errors.Wrap(err, "bitstream: writing ogg page")
	}

	p.seqno++
	p.first = false
	p.continued = nextContinued
	p.payload = p.payload[:0]
	p.payloadBytes = 0
	return nil
}

// Finish flushes any pending page, marking it the final page of the
// stream if it carries a non-empty payload. Callers should prefer this
// over relying on garbage collection, since the final flush can fail.
func (p *PageWriter) Finish() error {
	if p.payloadBytes == 0 && p.bitsStored == 0 {
		return nil
	}
	return p.FlushPage(false, true)
}
