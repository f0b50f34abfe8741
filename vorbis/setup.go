// Package vorbis reconstructs the three Vorbis header packets (identification,
// comment, setup) and rewrites audio packets from a Wwise-packed bitstream
// into the form a standard Vorbis decoder expects.
package vorbis

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/hcs64/ww2ogg2/bitstream"
	"github.com/hcs64/ww2ogg2/codebook"
	"github.com/hcs64/ww2ogg2/wwriff"
)

// Vendor is the comment-packet vendor string stamped on every converted
// stream.
const Vendor = "converted from Audiokinetic Wwise by ww2ogg2"

// Source is the minimal view of a parsed container WriteHeaders needs: the
// raw file, its variant flags, and an external codebook library (nil when
// codebooks are read inline).
type Source struct {
	File       io.ReadSeeker
	Descriptor *wwriff.Descriptor
	Codebooks  *codebook.Library
}

// HeaderResult carries the information the audio-packet rewriter needs that
// only emerges while walking the setup packet: each mode's block-size flag
// and the bit width of the mode-number field.
type HeaderResult struct {
	ModeBlockflag []bool
	ModeBits      int
}

// WriteHeaders emits the identification, comment, and setup packets to pw,
// dispatching on the descriptor's variant flags: a full header triad is
// copied verbatim, otherwise the setup packet is reconstructed field by
// field (with codebooks either copied or rebuilt from a packed form).
func WriteHeaders(src Source, pw *bitstream.PageWriter) (*HeaderResult, error) {
	d := src.Descriptor

	if d.HeaderTriadPresent {
		return nil, writeHeaderTriad(src, pw)
	}
	return writeReconstructedHeaders(src, pw)
}

func writeVorbisPacketHeader(pw *bitstream.PageWriter, packetType uint32) error {
	if err := pw.PutUint(packetType, 8); err != nil {
		return err
	}
	for _, c := range []byte("vorbis") {
		if err := pw.PutUint(uint32(c), 8); err != nil {
			return err
		}
	}
	return nil
}

func writeReconstructedHeaders(src Source, pw *bitstream.PageWriter) (*HeaderResult, error) {
	d := src.Descriptor

	// identification packet
	if err := writeVorbisPacketHeader(pw, 1); err != nil {
		return nil, err
	}
	if err := pw.PutUint(0, 32); err != nil { // version
		return nil, err
	}
	if err := pw.PutUint(uint32(d.Channels), 8); err != nil {
		return nil, err
	}
	if err := pw.PutUint(d.SampleRate, 32); err != nil {
		return nil, err
	}
	if err := pw.PutUint(0, 32); err != nil { // bitrate_maximum
		return nil, err
	}
	if err := pw.PutUint(d.AvgBytesPerSec*8, 32); err != nil { // bitrate_nominal
		return nil, err
	}
	if err := pw.PutUint(0, 32); err != nil { // bitrate_minimum
		return nil, err
	}
	if err := pw.PutUint(uint32(d.BlockSize0Pow), 4); err != nil {
		return nil, err
	}
	if err := pw.PutUint(uint32(d.BlockSize1Pow), 4); err != nil {
		return nil, err
	}
	if err := pw.PutUint(1, 1); err != nil { // framing
		return nil, err
	}
	if err := pw.FlushPage(false, false); err != nil {
		return nil, err
	}

	// comment packet
	if err := writeVorbisPacketHeader(pw, 3); err != nil {
		return nil, err
	}
	if err := writeCommentBody(pw, d); err != nil {
		return nil, err
	}
	if err := pw.PutUint(1, 1); err != nil { // framing
		return nil, err
	}
	if err := pw.FlushPage(false, false); err != nil {
		return nil, err
	}

	// setup packet
	result, err := writeSetupPacket(src, pw)
	if err != nil {
		return nil, err
	}
	if err := pw.FlushPage(false, false); err != nil {
		return nil, err
	}

	return result, nil
}

func writeCommentBody(pw *bitstream.PageWriter, d *wwriff.Descriptor) error {
	if err := pw.PutUint(uint32(len(Vendor)), 32); err != nil {
		return err
	}
	for _, c := range []byte(Vendor) {
		if err := pw.PutUint(uint32(c), 8); err != nil {
			return err
		}
	}

	if !d.HasLoop() {
		return pw.PutUint(0, 32)
	}

	if err := pw.PutUint(2, 32); err != nil {
		return err
	}
	loopStart := fmt.Sprintf("LoopStart=%d", d.LoopStart)
	loopEnd := fmt.Sprintf("LoopEnd=%d", d.LoopEnd)
	for _, s := range []string{loopStart, loopEnd} {
		if err := pw.PutUint(uint32(len(s)), 32); err != nil {
			return err
		}
		for _, c := range []byte(s) {
			if err := pw.PutUint(uint32(c), 8); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSetupPacket(src Source, pw *bitstream.PageWriter) (*HeaderResult, error) {
	d := src.Descriptor

	if err := writeVorbisPacketHeader(pw, 5); err != nil {
		return nil, err
	}

	header, err := d.ReadPacketHeader(src.File, d.DataOffset+int64(d.SetupPacketOffset))
	if err != nil {
		return nil, err
	}
	if header.Granule != 0 {
		return nil, errors.New("vorbis: setup packet granule != 0")
	}
	if _, err := src.File.Seek(header.PayloadOffset(), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "vorbis: seeking to setup packet")
	}

	br := bitstream.NewReader(src.File)

	codebookCountLess1, err := br.ReadUint(8)
	if err != nil {
		return nil, err
	}
	codebookCount := codebookCountLess1 + 1
	if err := pw.PutUint(codebookCountLess1, 8); err != nil {
		return nil, err
	}

	if err := writeCodebooks(src, br, pw, int(codebookCount)); err != nil {
		return nil, err
	}

	// time-domain transform placeholder (unused, always the same value)
	if err := pw.PutUint(0, 6); err != nil { // time_count_less1
		return nil, err
	}
	if err := pw.PutUint(0, 16); err != nil { // dummy time value
		return nil, err
	}

	var result *HeaderResult
	if d.FullSetup {
		totalBits := header.Size * 8
		for br.TotalBitsRead() < uint64(totalBits) {
			bit, err := br.ReadUint(1)
			if err != nil {
				return nil, err
			}
			if err := pw.PutUint(bit, 1); err != nil {
				return nil, err
			}
		}
	} else {
		result, err = writeStrippedSetupBody(br, pw, d, int(codebookCount))
		if err != nil {
			return nil, err
		}
	}

	if (br.TotalBitsRead()+7)/8 != uint64(header.Size) {
		return nil, errors.New("vorbis: didn't read exactly setup packet")
	}
	if header.NextOffset() != d.DataOffset+int64(d.FirstAudioPacketOffset) {
		return nil, errors.New("vorbis: first audio packet doesn't follow setup packet")
	}

	return result, nil
}

func writeCodebooks(src Source, br *bitstream.Reader, pw *bitstream.PageWriter, count int) error {
	d := src.Descriptor

	if d.InlineCodebooks {
		for i := 0; i < count; i++ {
			var err error
			if d.FullSetup {
				err = codebook.Copy(br, pw)
			} else {
				err = codebook.Rebuild(br, 0, pw)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	if src.Codebooks == nil {
		return errors.New("vorbis: external codebook library required but not loaded")
	}

	for i := 0; i < count; i++ {
		id, err := br.ReadUint(10)
		if err != nil {
			return err
		}
		if err := src.Codebooks.RebuildFromLibrary(int(id), pw); err != nil {
			var invalid *codebook.InvalidIDError
			if errors.As(err, &invalid) && id == 0x342 {
				// "BCV" straddles a codebook-id boundary when the setup
				// packet actually carries full standard codebooks.
				identifier, idErr := br.ReadUint(14)
				if idErr == nil && identifier == 0x1590 {
					return errors.New("vorbis: invalid codebook id 0x342, try full-setup mode")
				}
			}
			return err
		}
	}
	return nil
}
