package wwriff

// ForcePacketFormat overrides the mod_packets auto-detection (§4.6).
type ForcePacketFormat int

const (
	NoForcePacketFormat ForcePacketFormat = iota
	ForceModPackets
	ForceNoModPackets
)

// ParseOptions are the caller-supplied (configuration, not file-derived)
// variant flags: whether an external codebook library should be consulted,
// whether the setup packet is already a complete standard Vorbis setup, and
// any forced override of the mod_packets heuristic.
type ParseOptions struct {
	InlineCodebooks   bool
	FullSetup         bool
	ForcePacketFormat ForcePacketFormat
}

// Descriptor is the immutable result of parsing a Wwise RIFF/RIFX container:
// chunk offsets, format fields, loop metadata, and the derived variant flags
// that select how the setup header and audio packets must be reconstructed.
type Descriptor struct {
	Endian Endian

	DataOffset int64
	DataSize   int64

	Channels        uint16
	SampleRate      uint32
	AvgBytesPerSec  uint32
	ExtUnk          uint16
	Subtype         uint32

	CueCount uint32

	LoopCount uint32
	LoopStart uint32
	LoopEnd   uint32

	SampleCount             uint32
	SetupPacketOffset       uint32
	FirstAudioPacketOffset  uint32
	UID                     uint32
	BlockSize0Pow           uint8
	BlockSize1Pow           uint8

	InlineCodebooks bool
	FullSetup       bool

	HeaderTriadPresent bool
	OldPacketHeaders   bool
	NoGranule          bool
	ModPackets         bool
}

// subtypeChannelLayouts are the fmt extension subtype values the original
// converter recognizes as documented channel layouts. The check is
// deliberately a no-op (recorded, never rejected): see Open Questions.
var subtypeChannelLayouts = map[uint32]string{
	4:    "1 channel, no seek table",
	3:    "2 channels",
	0x33: "4 channels",
	0x37: "5 channels, seek table or not",
	0x3b: "5 channels, no seek table",
	0x3f: "6 channels, no seek table",
}

// KnownChannelLayout reports whether Subtype matches one of the documented
// Wwise channel-layout values. It never causes parsing to fail; the original
// converter's equivalent check is dead code kept only for documentation.
func (d *Descriptor) KnownChannelLayout() (string, bool) {
	name, ok := subtypeChannelLayouts[d.Subtype]
	return name, ok
}

// HasLoop reports whether smpl loop metadata was present.
func (d *Descriptor) HasLoop() bool {
	return d.LoopCount != 0
}
