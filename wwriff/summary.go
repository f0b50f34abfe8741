package wwriff

import (
	"fmt"
	"strings"
)

// Summary renders the same human-readable description of a parsed
// container that the original command-line converter printed before
// writing output.
func (d *Descriptor) Summary(codebooksPath string) string {
	var b strings.Builder

	if d.Endian == LittleEndian {
		fmt.Fprint(&b, "RIFF WAVE")
	} else {
		fmt.Fprint(&b, "RIFX WAVE")
	}
	fmt.Fprintf(&b, " %d channel", d.Channels)
	if d.Channels != 1 {
		fmt.Fprint(&b, "s")
	}
	fmt.Fprintf(&b, " %d Hz %d bps\n", d.SampleRate, d.AvgBytesPerSec*8)
	fmt.Fprintf(&b, "%d samples\n", d.SampleCount)

	if d.LoopCount != 0 {
		fmt.Fprintf(&b, "loop from %d to %d\n", d.LoopStart, d.LoopEnd)
	}

	switch {
	case d.OldPacketHeaders:
		fmt.Fprintln(&b, "- 8 byte (old) packet headers")
	case d.NoGranule:
		fmt.Fprintln(&b, "- 2 byte packet headers, no granule")
	default:
		fmt.Fprintln(&b, "- 6 byte packet headers")
	}

	if d.HeaderTriadPresent {
		fmt.Fprintln(&b, "- Vorbis header triad present")
	}

	if d.FullSetup || d.HeaderTriadPresent {
		fmt.Fprintln(&b, "- full setup header")
	} else {
		fmt.Fprintln(&b, "- stripped setup header")
	}

	if d.InlineCodebooks || d.HeaderTriadPresent {
		fmt.Fprintln(&b, "- inline codebooks")
	} else {
		fmt.Fprintf(&b, "- external codebooks (%s)\n", codebooksPath)
	}

	if d.ModPackets {
		fmt.Fprintln(&b, "- modified Vorbis packets")
	} else {
		fmt.Fprintln(&b, "- standard Vorbis packets")
	}

	if d.CueCount != 0 {
		fmt.Fprintf(&b, "%d cue point", d.CueCount)
		if d.CueCount != 1 {
			fmt.Fprint(&b, "s")
		}
		fmt.Fprintln(&b)
	}

	if name, ok := d.KnownChannelLayout(); ok {
		fmt.Fprintf(&b, "- channel layout: %s\n", name)
	}

	return b.String()
}
