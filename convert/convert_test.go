package convert_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcs64/ww2ogg2/convert"
	"github.com/hcs64/ww2ogg2/wwriff"
)

// bitPacker packs bits LSB-first into bytes, mirroring the Ogg page
// writer's own bit order, so a fixture's raw content matches what a real
// encoder would have produced.
type bitPacker struct {
	buf        bytes.Buffer
	cur        byte
	bitsStored uint
}

func (w *bitPacker) putUint(v uint32, n int) {
	for i := 0; i < n; i++ {
		if v&(1<<uint(i)) != 0 {
			w.cur |= 1 << w.bitsStored
		}
		w.bitsStored++
		if w.bitsStored == 8 {
			w.buf.WriteByte(w.cur)
			w.cur = 0
			w.bitsStored = 0
		}
	}
}

func (w *bitPacker) bytes(totalBytes int) []byte {
	b := w.buf.Bytes()
	if w.bitsStored > 0 {
		b = append(b, w.cur)
	}
	for len(b) < totalBytes {
		b = append(b, 0)
	}
	return b
}

func u16le(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func u32le(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }

func riffChunk(id string, data []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	b.Write(u32le(uint32(len(data))))
	b.Write(data)
	return b.Bytes()
}

// buildSingleCodebookFullSetupFixture builds a minimal but structurally
// valid Wwise RIFF container using the full-setup, inline-codebook, modern
// (no old packet headers) variant: a one-codebook setup packet followed by
// one short audio packet.
func buildSingleCodebookFullSetupFixture(t *testing.T) []byte {
	t.Helper()

	var setup bitPacker
	setup.putUint(0, 8)          // codebook_count_less1 == 0 -> 1 codebook
	setup.putUint(0x564342, 24)  // codebook sync "BCV"
	setup.putUint(1, 16)         // dimensions
	setup.putUint(1, 24)         // entries
	setup.putUint(0, 1)          // ordered = false
	setup.putUint(0, 1)          // sparse = false
	setup.putUint(3, 5)          // entry 0 length
	setup.putUint(0, 4)          // lookup type 0

	setupBytes := setup.bytes(11) // pad to a whole number of bytes

	// vorb_size 0x2A forces the no_granule, 2-byte packet header variant:
	// every packet header here is just a u16 size, no granule field.
	var data bytes.Buffer
	data.Write(u16le(uint16(len(setupBytes)))) // setup packet size
	data.Write(setupBytes)

	audioPayload := []byte{0x01, 0x02, 0x03, 0x04}
	firstAudioOffset := uint32(data.Len())
	data.Write(u16le(uint16(len(audioPayload))))
	data.Write(audioPayload)

	var vorb bytes.Buffer
	vorb.Write(u32le(48000))           // sample count
	vorb.Write(u32le(0x4A))            // mod signal: unset
	vorb.Write(make([]byte, 0x10-0x8)) // pad to 0x10
	vorb.Write(u32le(0))               // setup packet offset
	vorb.Write(u32le(firstAudioOffset))
	vorb.Write(make([]byte, 0x24-0x18)) // pad to 0x24
	vorb.Write(u32le(0x1234))           // uid
	vorb.WriteByte(8)                   // blocksize_0_pow
	vorb.WriteByte(11)                  // blocksize_1_pow

	var fmtb bytes.Buffer
	fmtb.Write(u16le(0xFFFF)) // codec id
	fmtb.Write(u16le(1))      // channels
	fmtb.Write(u32le(48000))  // sample rate
	fmtb.Write(u32le(48000))  // avg bytes per second
	fmtb.Write(u16le(0))      // block align
	fmtb.Write(u16le(0))      // bits per sample
	fmtb.Write(u16le(0))      // extra fmt length

	var body bytes.Buffer
	body.WriteString("WAVE")
	body.Write(riffChunk("fmt ", fmtb.Bytes()))
	body.Write(riffChunk("vorb", vorb.Bytes()))
	body.Write(riffChunk("data", data.Bytes()))

	var out bytes.Buffer
	out.WriteString("RIFF")
	out.Write(u32le(uint32(body.Len())))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestConvertFullSetupInlineCodebooks(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.ogg")

	require.NoError(t, os.WriteFile(inPath, buildSingleCodebookFullSetupFixture(t), 0o644))

	err := convert.Convert(inPath, outPath, convert.Options{
		FullSetup:       true,
		InlineCodebooks: true,
	})
	require.NoError(t, err)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("OggS")), "output should begin with an Ogg page")
	assert.GreaterOrEqual(t, bytes.Count(out, []byte("OggS")), 4, "expect id, comment, setup, and audio pages")
}

func TestConvertRequiresExternalCodebooksWhenNotInline(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	require.NoError(t, os.WriteFile(inPath, buildSingleCodebookFullSetupFixture(t), 0o644))

	_, err := convert.New(inPath, convert.Options{
		FullSetup:       true,
		InlineCodebooks: false,
		CodebooksPath:   filepath.Join(dir, "does-not-exist.bin"),
	})
	require.Error(t, err)
}

func TestConverterSummaryReportsVariant(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	require.NoError(t, os.WriteFile(inPath, buildSingleCodebookFullSetupFixture(t), 0o644))

	c, err := convert.New(inPath, convert.Options{FullSetup: true, InlineCodebooks: true})
	require.NoError(t, err)
	defer c.Finish()

	summary := c.Summary()
	assert.Contains(t, summary, "RIFF WAVE")
	assert.Contains(t, summary, "1 channel")
	assert.Contains(t, summary, "full setup header")
	assert.Contains(t, summary, "inline codebooks")

	d := c.Descriptor()
	assert.Equal(t, wwriff.LittleEndian, d.Endian)
	assert.False(t, d.ModPackets)
}
