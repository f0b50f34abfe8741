package wwriff

import (
	"io"

	"github.com/pkg/errors"
)

// PacketHeader describes one Wwise audio packet's framing: where its
// payload begins, how large the payload is, and the granule position
// (sample count) carried for this packet, if any.
type PacketHeader struct {
	Offset     int64 // absolute file offset of the header itself
	HeaderSize int64 // 2, 6, or 8 bytes depending on descriptor variant flags
	Size       uint32
	Granule    uint32
}

// PayloadOffset is the absolute file offset at which the packet's payload
// bytes begin.
func (p PacketHeader) PayloadOffset() int64 {
	return p.Offset + p.HeaderSize
}

// NextOffset is the absolute file offset of the following packet's header.
func (p PacketHeader) NextOffset() int64 {
	return p.Offset + p.HeaderSize + int64(p.Size)
}

// readPacketHeader reads a modern 2- or 6-byte packet header (old_packet_headers
// == false): a u16 size, and, unless no_granule, a u32 granule.
func readPacketHeader(r io.ReadSeeker, offset int64, endian Endian, noGranule bool) (PacketHeader, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return PacketHeader{}, errors.Wrap(err, "wwriff: seeking to packet header")
	}

	size, err := endian.readUint16(r)
	if err != nil {
		return PacketHeader{}, errors.Wrap(err, "wwriff: reading packet size")
	}

	var granule uint32
	headerSize := int64(2)
	if !noGranule {
		granule, err = endian.readUint32(r)
		if err != nil {
			return PacketHeader{}, errors.Wrap(err, "wwriff: reading packet granule")
		}
		headerSize = 6
	}

	return PacketHeader{Offset: offset, HeaderSize: headerSize, Size: uint32(size), Granule: granule}, nil
}

// readPacketHeader8 reads an old-style 8-byte packet header (u32 size, u32
// granule). The granule is returned whole; like every packet granule here
// it is 32 bits wide, and the page writer stamps it into the low half of
// the 64-bit Ogg granule position.
func readPacketHeader8(r io.ReadSeeker, offset int64, endian Endian) (PacketHeader, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return PacketHeader{}, errors.Wrap(err, "wwriff: seeking to packet header")
	}

	size, err := endian.readUint32(r)
	if err != nil {
		return PacketHeader{}, errors.Wrap(err, "wwriff: reading packet size")
	}
	granule, err := endian.readUint32(r)
	if err != nil {
		return PacketHeader{}, errors.Wrap(err, "wwriff: reading packet granule")
	}

	return PacketHeader{Offset: offset, HeaderSize: 8, Size: size, Granule: granule}, nil
}

// ReadPacketHeader reads the packet header at offset using the layout the
// descriptor's variant flags select (8-byte old-style, 2-byte no-granule,
// or 6-byte standard).
func (d *Descriptor) ReadPacketHeader(r io.ReadSeeker, offset int64) (PacketHeader, error) {
	if d.OldPacketHeaders {
		return readPacketHeader8(r, offset, d.Endian)
	}
	return readPacketHeader(r, offset, d.Endian, d.NoGranule)
}

// ReadPacketHeader8 reads a standalone old-style 8-byte packet header
// (size, granule), independent of any descriptor's variant flags. Used by
// the header-triad path, where identification/comment/setup packets always
// use this framing regardless of how audio packets are framed.
func (d *Descriptor) ReadPacketHeader8(r io.ReadSeeker, offset int64) (PacketHeader, error) {
	return readPacketHeader8(r, offset, d.Endian)
}
