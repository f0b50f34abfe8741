package vorbis

import (
	"io"

	"github.com/pkg/errors"

	"github.com/hcs64/ww2ogg2/bitstream"
	"github.com/hcs64/ww2ogg2/wwriff"
)

// noGranuleSentinel is the Ogg/Vorbis 32-bit "no granule position" marker
// some Wwise streams stamp on every packet; the original converter maps it
// to granule 1 rather than propagating the sentinel onto the audio pages.
const noGranuleSentinel = 0xFFFFFFFF

// RewriteAudioPackets walks every audio packet in the container's data
// chunk and re-emits it as Ogg pages. When the setup header was stripped,
// header is non-nil and mod_packets rewriting (reinstating the packet-type
// and window-type bits Wwise removed) is applied as needed.
func RewriteAudioPackets(src Source, header *HeaderResult, pw *bitstream.PageWriter) error {
	d := src.Descriptor
	r := src.File

	var prevBlockflag bool
	offset := d.DataOffset + int64(d.FirstAudioPacketOffset)
	end := d.DataOffset + d.DataSize

	for offset < end {
		packetHeader, err := d.ReadPacketHeader(r, offset)
		if err != nil {
			return err
		}
		if offset+packetHeader.HeaderSize > end {
			return errors.New("vorbis: packet header truncated")
		}

		payloadOffset := packetHeader.PayloadOffset()
		if _, err := r.Seek(payloadOffset, io.SeekStart); err != nil {
			return errors.Wrap(err, "vorbis: seeking to packet payload")
		}

		if packetHeader.Granule == noGranuleSentinel {
			pw.SetGranule(1)
		} else {
			pw.SetGranule(packetHeader.Granule)
		}

		if d.ModPackets {
			next, err := writeModPacketsFirstByte(d, r, pw, header, packetHeader, prevBlockflag, end)
			if err != nil {
				return err
			}
			prevBlockflag = next
		} else {
			b, err := readByte(r)
			if err != nil {
				return err
			}
			if err := pw.PutUint(uint32(b), 8); err != nil {
				return err
			}
		}

		for i := uint32(1); i < packetHeader.Size; i++ {
			b, err := readByte(r)
			if err != nil {
				return err
			}
			if err := pw.PutUint(uint32(b), 8); err != nil {
				return err
			}
		}

		offset = packetHeader.NextOffset()
		if err := pw.FlushPage(false, offset == end); err != nil {
			return err
		}
	}

	if offset > end {
		return errors.New("vorbis: page truncated")
	}
	return nil
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(err, "vorbis: file truncated")
	}
	return b[0], nil
}

// writeModPacketsFirstByte reinstates the packet-type bit and, for
// long-window packets, the previous/next window-type bits that Wwise's
// mod_packets encoding stripped from the first byte of every audio
// packet. It returns the block-size flag of the packet just written, to
// become the next call's prev_blockflag.
func writeModPacketsFirstByte(d *wwriff.Descriptor, r io.ReadSeeker, pw *bitstream.PageWriter, header *HeaderResult, packetHeader wwriff.PacketHeader, prevBlockflag bool, end int64) (bool, error) {
	if header == nil {
		return false, errors.New("vorbis: mod_packets set but no mode table available")
	}

	if err := pw.PutUint(0, 1); err != nil { // packet type 0 == audio
		return false, err
	}

	br := bitstream.NewReader(r)
	modeNumber, err := br.ReadUint(header.ModeBits)
	if err != nil {
		return false, err
	}
	if err := pw.PutUint(modeNumber, header.ModeBits); err != nil {
		return false, err
	}
	remainder, err := br.ReadUint(8 - header.ModeBits)
	if err != nil {
		return false, err
	}

	if int(modeNumber) >= len(header.ModeBlockflag) {
		return false, errors.New("vorbis: mode number out of range")
	}
	blockflag := header.ModeBlockflag[modeNumber]

	if blockflag {
		nextBlockflag, err := peekNextModeBlockflag(d, r, header, packetHeader.NextOffset(), end)
		if err != nil {
			return false, err
		}

		if err := pw.PutUint(boolToUint(prevBlockflag), 1); err != nil {
			return false, err
		}
		if err := pw.PutUint(boolToUint(nextBlockflag), 1); err != nil {
			return false, err
		}

		// Resume reading the rest of this packet's bytes from right after
		// the first byte; the peek above moved the file cursor.
		if _, err := r.Seek(packetHeader.PayloadOffset()+1, io.SeekStart); err != nil {
			return false, errors.Wrap(err, "vorbis: restoring packet cursor")
		}
	}

	if err := pw.PutUint(remainder, 8-header.ModeBits); err != nil {
		return false, err
	}

	return blockflag, nil
}

func peekNextModeBlockflag(d *wwriff.Descriptor, r io.ReadSeeker, header *HeaderResult, nextOffset int64, end int64) (bool, error) {
	nextHeader, err := d.ReadPacketHeader(r, nextOffset)
	if err != nil {
		return false, err
	}
	if nextOffset+nextHeader.HeaderSize > end || nextHeader.Size == 0 {
		return false, nil
	}

	if _, err := r.Seek(nextHeader.PayloadOffset(), io.SeekStart); err != nil {
		return false, errors.Wrap(err, "vorbis: seeking to next packet")
	}
	br := bitstream.NewReader(r)
	nextModeNumber, err := br.ReadUint(header.ModeBits)
	if err != nil {
		return false, err
	}
	if int(nextModeNumber) >= len(header.ModeBlockflag) {
		return false, errors.New("vorbis: mode number out of range")
	}
	return header.ModeBlockflag[nextModeNumber], nil
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
