package wwriff

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// riffBuilder assembles a minimal RIFF/WAVE file with the chunks the
// parser understands, for tests. All multi-byte fields are little-endian
// ("RIFF"); a BE variant is built by constructing then swapping the byte
// order function per test.
type riffBuilder struct {
	chunks []chunk
}

type chunk struct {
	id   string
	data []byte
}

func (b *riffBuilder) add(id string, data []byte) {
	b.chunks = append(b.chunks, chunk{id: id, data: data})
}

func (b *riffBuilder) build(bigEndian bool) []byte {
	order := binary.ByteOrder(binary.LittleEndian)
	if bigEndian {
		order = binary.BigEndian
	}

	var body bytes.Buffer
	for _, c := range b.chunks {
		body.WriteString(c.id)
		var sz [4]byte
		order.PutUint32(sz[:], uint32(len(c.data)))
		body.Write(sz[:])
		body.Write(c.data)
	}

	var out bytes.Buffer
	if bigEndian {
		out.WriteString("RIFX")
	} else {
		out.WriteString("RIFF")
	}
	var riffSize [4]byte
	order.PutUint32(riffSize[:], uint32(4+body.Len())) // "WAVE" + chunks
	out.Write(riffSize[:])
	out.WriteString("WAVE")
	out.Write(body.Bytes())
	return out.Bytes()
}

func u16(order binary.ByteOrder, v uint16) []byte {
	b := make([]byte, 2)
	order.PutUint16(b, v)
	return b
}

func u32(order binary.ByteOrder, v uint32) []byte {
	b := make([]byte, 4)
	order.PutUint32(b, v)
	return b
}

// buildModernFmtVorb builds a 0x12-byte fmt chunk (no extra fields) and a
// vorb chunk in the -1/0x2A (no-granule, mod-signal) layout.
func buildModernFmtVorb(order binary.ByteOrder, channels uint16, sampleRate, avgBytes uint32, modSignal uint32, setupOff, firstAudioOff uint32) ([]byte, []byte) {
	var fmtb bytes.Buffer
	fmtb.Write(u16(order, 0xFFFF))
	fmtb.Write(u16(order, channels))
	fmtb.Write(u32(order, sampleRate))
	fmtb.Write(u32(order, avgBytes))
	fmtb.Write(u16(order, 0)) // block align
	fmtb.Write(u16(order, 0)) // bps
	fmtb.Write(u16(order, 0)) // extra fmt length == fmt_size - 0x12 == 0

	var vorb bytes.Buffer
	vorb.Write(u32(order, 123456))         // sample count
	vorb.Write(u32(order, modSignal))      // mod signal @ 0x4
	vorb.Write(make([]byte, 0x10-0x8))     // padding to 0x10
	vorb.Write(u32(order, setupOff))       // @0x10
	vorb.Write(u32(order, firstAudioOff))  // @0x14
	vorb.Write(make([]byte, 0x24-0x18))    // padding to 0x24
	vorb.Write(u32(order, 0xCAFEF00D))     // uid @0x24
	vorb.WriteByte(6)                      // blocksize_0_pow
	vorb.WriteByte(8)                      // blocksize_1_pow

	return fmtb.Bytes(), vorb.Bytes()
}

func TestParseModernLayout(t *testing.T) {
	order := binary.LittleEndian
	fmtb, vorb := buildModernFmtVorb(order, 2, 44100, 44100*2, 0x4A, 0, 100)

	var b riffBuilder
	b.add("fmt ", fmtb)
	b.add("vorb", vorb)
	b.add("data", make([]byte, 200))

	data := b.build(false)

	d, err := Parse(bytes.NewReader(data), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if d.Endian != LittleEndian {
		t.Fatalf("expected little endian")
	}
	if d.Channels != 2 {
		t.Fatalf("got channels %d, want 2", d.Channels)
	}
	if d.SampleRate != 44100 {
		t.Fatalf("got sample rate %d, want 44100", d.SampleRate)
	}
	if !d.NoGranule {
		t.Fatalf("expected no_granule for vorb_size -1 layout")
	}
	if d.ModPackets {
		t.Fatalf("mod signal 0x4A should not set mod_packets")
	}
	if d.UID != 0xCAFEF00D {
		t.Fatalf("got uid %x, want cafef00d", d.UID)
	}
	if d.BlockSize0Pow != 6 || d.BlockSize1Pow != 8 {
		t.Fatalf("got blocksizes %d/%d, want 6/8", d.BlockSize0Pow, d.BlockSize1Pow)
	}
	if d.DataSize != 200 {
		t.Fatalf("got data size %d, want 200", d.DataSize)
	}
}

func TestParseModSignalSetsModPackets(t *testing.T) {
	order := binary.LittleEndian
	fmtb, vorb := buildModernFmtVorb(order, 1, 22050, 22050, 0xD9, 0, 0)

	var b riffBuilder
	b.add("fmt ", fmtb)
	b.add("vorb", vorb)
	b.add("data", make([]byte, 10))

	d, err := Parse(bytes.NewReader(b.build(false)), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !d.ModPackets {
		t.Fatalf("mod signal 0xD9 should set mod_packets")
	}
}

func TestParseForceNoModPackets(t *testing.T) {
	order := binary.LittleEndian
	fmtb, vorb := buildModernFmtVorb(order, 1, 22050, 22050, 0xD9, 0, 0)

	var b riffBuilder
	b.add("fmt ", fmtb)
	b.add("vorb", vorb)
	b.add("data", make([]byte, 10))

	d, err := Parse(bytes.NewReader(b.build(false)), ParseOptions{ForcePacketFormat: ForceNoModPackets})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.ModPackets {
		t.Fatalf("ForceNoModPackets should override the mod signal heuristic")
	}
}

func TestParseMissingRIFF(t *testing.T) {
	if _, err := Parse(bytes.NewReader([]byte("JUNKxxxxWAVE")), ParseOptions{}); err == nil {
		t.Fatalf("expected an error for a missing RIFF tag")
	}
}

func TestParseBadCodecID(t *testing.T) {
	order := binary.LittleEndian
	var fmtb bytes.Buffer
	fmtb.Write(u16(order, 1)) // wrong codec id
	fmtb.Write(u16(order, 2))
	fmtb.Write(u32(order, 44100))
	fmtb.Write(u32(order, 88200))
	fmtb.Write(u16(order, 0))
	fmtb.Write(u16(order, 0))
	fmtb.Write(u16(order, 0))
	// A valid vorb chunk, so parsing gets as far as the codec id check.
	_, vorb := buildModernFmtVorb(order, 2, 44100, 88200, 0x4A, 0, 0)

	var b riffBuilder
	b.add("fmt ", fmtb.Bytes())
	b.add("vorb", vorb)
	b.add("data", make([]byte, 10))

	if _, err := Parse(bytes.NewReader(b.build(false)), ParseOptions{}); err == nil {
		t.Fatalf("expected an error for a bad codec id")
	}
}

func TestParseRIFXBigEndian(t *testing.T) {
	order := binary.BigEndian
	fmtb, vorb := buildModernFmtVorb(order, 2, 48000, 96000, 0x69, 0, 0)

	var b riffBuilder
	b.add("fmt ", fmtb)
	b.add("vorb", vorb)
	b.add("data", make([]byte, 10))

	d, err := Parse(bytes.NewReader(b.build(true)), ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Endian != BigEndian {
		t.Fatalf("expected big endian")
	}
	if d.SampleRate != 48000 {
		t.Fatalf("got sample rate %d, want 48000", d.SampleRate)
	}
}
