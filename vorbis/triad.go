package vorbis

import (
	"io"

	"github.com/pkg/errors"

	"github.com/hcs64/ww2ogg2/bitstream"
	"github.com/hcs64/ww2ogg2/codebook"
	"github.com/hcs64/ww2ogg2/wwriff"
)

// writeHeaderTriad copies a complete, already-standard Vorbis header triad
// (identification, comment, setup) through verbatim, each on its own page.
// Used when the container's vorb layout indicates the triad survived
// Wwise's encode step untouched (old 8-byte packet headers, vorb size
// 0x28/0x2C).
func writeHeaderTriad(src Source, pw *bitstream.PageWriter) error {
	d := src.Descriptor
	offset := d.DataOffset + int64(d.SetupPacketOffset)

	offset, err := copyTriadPacket(d, src.File, pw, offset, 1)
	if err != nil {
		return errors.Wrap(err, "vorbis: copying identification packet")
	}
	if err := pw.FlushPage(false, false); err != nil {
		return err
	}

	offset, err = copyTriadPacket(d, src.File, pw, offset, 3)
	if err != nil {
		return errors.Wrap(err, "vorbis: copying comment packet")
	}
	if err := pw.FlushPage(false, false); err != nil {
		return err
	}

	header, err := d.ReadPacketHeader(src.File, offset)
	if err != nil {
		return err
	}
	if header.Granule != 0 {
		return errors.New("vorbis: setup packet granule != 0")
	}
	if _, err := src.File.Seek(header.PayloadOffset(), io.SeekStart); err != nil {
		return errors.Wrap(err, "vorbis: seeking to setup packet")
	}

	br := bitstream.NewReader(src.File)
	packetType, err := br.ReadUint(8)
	if err != nil {
		return err
	}
	if packetType != 5 {
		return errors.New("vorbis: wrong type for setup packet")
	}
	if err := pw.PutUint(packetType, 8); err != nil {
		return err
	}
	for i := 0; i < 6; i++ {
		c, err := br.ReadUint(8)
		if err != nil {
			return err
		}
		if err := pw.PutUint(c, 8); err != nil {
			return err
		}
	}

	codebookCountLess1, err := br.ReadUint(8)
	if err != nil {
		return err
	}
	codebookCount := codebookCountLess1 + 1
	if err := pw.PutUint(codebookCountLess1, 8); err != nil {
		return err
	}

	for i := uint32(0); i < codebookCount; i++ {
		if err := codebook.Copy(br, pw); err != nil {
			return err
		}
	}

	totalBits := header.Size * 8
	for br.TotalBitsRead() < uint64(totalBits) {
		bit, err := br.ReadUint(1)
		if err != nil {
			return err
		}
		if err := pw.PutUint(bit, 1); err != nil {
			return err
		}
	}

	if err := pw.FlushPage(false, false); err != nil {
		return err
	}

	if header.NextOffset() != d.DataOffset+int64(d.FirstAudioPacketOffset) {
		return errors.New("vorbis: first audio packet doesn't follow setup packet")
	}

	return nil
}

// copyTriadPacket copies one 8-byte-headed packet (identification or
// comment) verbatim and returns the offset of the packet that follows it.
func copyTriadPacket(d *wwriff.Descriptor, r io.ReadSeeker, pw *bitstream.PageWriter, offset int64, wantType uint32) (int64, error) {
	header, err := d.ReadPacketHeader8(r, offset)
	if err != nil {
		return 0, err
	}
	if header.Granule != 0 {
		return 0, errors.New("vorbis: packet granule != 0")
	}

	if _, err := r.Seek(header.PayloadOffset(), io.SeekStart); err != nil {
		return 0, errors.Wrap(err, "vorbis: seeking to packet payload")
	}
	br := bitstream.NewReader(r)

	packetType, err := br.ReadUint(8)
	if err != nil {
		return 0, err
	}
	if packetType != wantType {
		return 0, errors.New("vorbis: wrong packet type in header triad")
	}
	if err := pw.PutUint(packetType, 8); err != nil {
		return 0, err
	}

	for i := uint32(1); i < header.Size; i++ {
		c, err := br.ReadUint(8)
		if err != nil {
			return 0, err
		}
		if err := pw.PutUint(c, 8); err != nil {
			return 0, err
		}
	}

	return header.NextOffset(), nil
}
