package wwriff

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var fmtExtensionSignature = []byte{
	1, 0, 0, 0, 0, 0, 0x10, 0, 0x80, 0, 0, 0xAA, 0, 0x38, 0x9b, 0x71,
}

type chunkSpan struct {
	offset int64
	size   int64
}

func (c chunkSpan) present() bool { return c.size != -1 }

// Parse walks a RIFF/RIFX WAVE container holding Wwise-packed Vorbis audio
// and returns the container's chunk layout, format, loop, and variant
// metadata. r must support Seek; Parse reads only the chunks it needs and
// leaves the audio data itself untouched.
func Parse(r io.ReadSeeker, opts ParseOptions) (*Descriptor, error) {
	fileSize, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: seeking to end")
	}

	d := &Descriptor{
		InlineCodebooks: opts.InlineCodebooks,
		FullSetup:       opts.FullSetup,
	}

	var head [4]byte
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "wwriff: seeking to start")
	}
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, errors.Wrap(err, "wwriff: reading RIFF header")
	}

	switch {
	case bytes.Equal(head[:], []byte("RIFX")):
		d.Endian = BigEndian
	case bytes.Equal(head[:], []byte("RIFF")):
		d.Endian = LittleEndian
	default:
		return nil, errParse("missing RIFF")
	}

	riffSizeField, err := d.Endian.readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: reading RIFF size")
	}
	riffSize := int64(riffSizeField) + 8
	if riffSize > fileSize {
		return nil, errParse("RIFF truncated")
	}

	var wave [4]byte
	if _, err := io.ReadFull(r, wave[:]); err != nil {
		return nil, errors.Wrap(err, "wwriff: reading WAVE tag")
	}
	if !bytes.Equal(wave[:], []byte("WAVE")) {
		return nil, errParse("missing WAVE")
	}

	fmtSpan := chunkSpan{size: -1}
	cueSpan := chunkSpan{size: -1}
	listSpan := chunkSpan{size: -1}
	smplSpan := chunkSpan{size: -1}
	vorbSpan := chunkSpan{size: -1}
	dataSpan := chunkSpan{size: -1}

	chunkOffset := int64(12)
	for chunkOffset < riffSize {
		if chunkOffset+8 > riffSize {
			return nil, errParse("chunk header truncated")
		}
		if _, err := r.Seek(chunkOffset, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to chunk header")
		}

		var chunkType [4]byte
		if _, err := io.ReadFull(r, chunkType[:]); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading chunk type")
		}
		chunkSize, err := d.Endian.readUint32(r)
		if err != nil {
			return nil, errors.Wrap(err, "wwriff: reading chunk size")
		}

		span := chunkSpan{offset: chunkOffset + 8, size: int64(chunkSize)}
		switch string(chunkType[:]) {
		case "fmt ":
			fmtSpan = span
		case "cue ":
			cueSpan = span
		case "LIST":
			listSpan = span
		case "smpl":
			smplSpan = span
		case "vorb":
			vorbSpan = span
		case "data":
			dataSpan = span
		}

		chunkOffset = chunkOffset + 8 + int64(chunkSize)
	}
	_ = listSpan
	if chunkOffset > riffSize {
		return nil, errParse("chunk truncated")
	}

	if !fmtSpan.present() || !dataSpan.present() {
		return nil, errParse("expected fmt, data chunks")
	}

	if !vorbSpan.present() && fmtSpan.size != 0x42 {
		return nil, errParse("expected 0x42 fmt if vorb missing")
	}
	if vorbSpan.present() && fmtSpan.size != 0x28 && fmtSpan.size != 0x18 && fmtSpan.size != 0x12 {
		return nil, errParse("bad fmt size")
	}
	if !vorbSpan.present() && fmtSpan.size == 0x42 {
		vorbSpan = chunkSpan{offset: fmtSpan.offset + 0x18, size: 0x42 - 0x18}
	}

	if _, err := r.Seek(fmtSpan.offset, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "wwriff: seeking to fmt chunk")
	}
	codecID, err := d.Endian.readUint16(r)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: reading codec id")
	}
	if codecID != 0xFFFF {
		return nil, errParse("bad codec id")
	}
	if d.Channels, err = d.Endian.readUint16(r); err != nil {
		return nil, errors.Wrap(err, "wwriff: reading channel count")
	}
	if d.SampleRate, err = d.Endian.readUint32(r); err != nil {
		return nil, errors.Wrap(err, "wwriff: reading sample rate")
	}
	if d.AvgBytesPerSec, err = d.Endian.readUint32(r); err != nil {
		return nil, errors.Wrap(err, "wwriff: reading average bytes per second")
	}
	blockAlign, err := d.Endian.readUint16(r)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: reading block align")
	}
	if blockAlign != 0 {
		return nil, errParse("bad block align")
	}
	bps, err := d.Endian.readUint16(r)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: reading bits per sample")
	}
	if bps != 0 {
		return nil, errParse("expected 0 bps")
	}
	extraFmtLen, err := d.Endian.readUint16(r)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: reading extra fmt length")
	}
	if int64(extraFmtLen) != fmtSpan.size-0x12 {
		return nil, errParse("bad extra fmt length")
	}

	if fmtSpan.size-0x12 >= 2 {
		if d.ExtUnk, err = d.Endian.readUint16(r); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading fmt extension")
		}
		if fmtSpan.size-0x12 >= 6 {
			if d.Subtype, err = d.Endian.readUint32(r); err != nil {
				return nil, errors.Wrap(err, "wwriff: reading fmt subtype")
			}
		}
	}

	if fmtSpan.size == 0x28 {
		var sig [16]byte
		if _, err := io.ReadFull(r, sig[:]); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading fmt extension signature")
		}
		if !bytes.Equal(sig[:], fmtExtensionSignature) {
			return nil, errParse("expected signature in extra fmt?")
		}
	}

	if cueSpan.present() {
		if _, err := r.Seek(cueSpan.offset, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to cue chunk")
		}
		if d.CueCount, err = d.Endian.readUint32(r); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading cue count")
		}
	}

	if smplSpan.present() {
		if _, err := r.Seek(smplSpan.offset+0x1C, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to smpl loop count")
		}
		if d.LoopCount, err = d.Endian.readUint32(r); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading loop count")
		}
		if d.LoopCount != 1 {
			return nil, errParse("expected one loop")
		}

		if _, err := r.Seek(smplSpan.offset+0x2c, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to smpl loop points")
		}
		if d.LoopStart, err = d.Endian.readUint32(r); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading loop start")
		}
		if d.LoopEnd, err = d.Endian.readUint32(r); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading loop end")
		}
	}

	switch vorbSpan.size {
	case -1, 0x28, 0x2A, 0x2C, 0x32, 0x34:
		if _, err := r.Seek(vorbSpan.offset, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to vorb chunk")
		}
	default:
		return nil, errParse("bad vorb size")
	}

	if d.SampleCount, err = d.Endian.readUint32(r); err != nil {
		return nil, errors.Wrap(err, "wwriff: reading sample count")
	}

	switch vorbSpan.size {
	case -1, 0x2A:
		d.NoGranule = true

		if _, err := r.Seek(vorbSpan.offset+0x4, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to mod signal")
		}
		modSignal, err := d.Endian.readUint32(r)
		if err != nil {
			return nil, errors.Wrap(err, "wwriff: reading mod signal")
		}

		// Seen unset at 0x4A, 0x4B, 0x69, 0x70; set at 0xD9, 0xCB, 0xBC,
		// 0xB2. 0xA7 is an observed anomaly neither list accounts for.
		if modSignal != 0x4A && modSignal != 0x4B && modSignal != 0x69 && modSignal != 0x70 {
			d.ModPackets = true
		}

		if _, err := r.Seek(vorbSpan.offset+0x10, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking past mod signal")
		}

	default:
		if _, err := r.Seek(vorbSpan.offset+0x18, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to packet offsets")
		}
	}

	switch opts.ForcePacketFormat {
	case ForceNoModPackets:
		d.ModPackets = false
	case ForceModPackets:
		d.ModPackets = true
	}

	setupPacketOffset, err := d.Endian.readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: reading setup packet offset")
	}
	d.SetupPacketOffset = setupPacketOffset
	firstAudioPacketOffset, err := d.Endian.readUint32(r)
	if err != nil {
		return nil, errors.Wrap(err, "wwriff: reading first audio packet offset")
	}
	d.FirstAudioPacketOffset = firstAudioPacketOffset

	switch vorbSpan.size {
	case -1, 0x2A:
		if _, err := r.Seek(vorbSpan.offset+0x24, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to uid/blocksize fields")
		}
	case 0x32, 0x34:
		if _, err := r.Seek(vorbSpan.offset+0x2C, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "wwriff: seeking to uid/blocksize fields")
		}
	}

	switch vorbSpan.size {
	case 0x28, 0x2C:
		d.HeaderTriadPresent = true
		d.OldPacketHeaders = true

	case -1, 0x2A, 0x32, 0x34:
		if d.UID, err = d.Endian.readUint32(r); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading uid")
		}
		var bs [2]byte
		if _, err := io.ReadFull(r, bs[:]); err != nil {
			return nil, errors.Wrap(err, "wwriff: reading blocksize exponents")
		}
		d.BlockSize0Pow = bs[0]
		d.BlockSize1Pow = bs[1]
	}

	if d.LoopCount != 0 {
		if d.LoopEnd == 0 {
			d.LoopEnd = d.SampleCount
		} else {
			d.LoopEnd = d.LoopEnd + 1
		}

		if d.LoopStart >= d.SampleCount || d.LoopEnd > d.SampleCount || d.LoopStart > d.LoopEnd {
			return nil, errParse("loops out of range")
		}
	}

	// The subtype/channel-layout check is deliberately informational only;
	// an unrecognized value never fails parsing. See KnownChannelLayout.

	d.DataOffset = dataSpan.offset
	d.DataSize = dataSpan.size

	return d, nil
}
