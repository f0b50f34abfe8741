// Package convert orchestrates the full conversion from a Wwise-packed
// RIFF/RIFX Vorbis stream to a standard Ogg Vorbis stream: parsing the
// container, loading an external codebook library if needed, reconstructing
// the header packets, and rewriting the audio packets.
package convert

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/hcs64/ww2ogg2/bitstream"
	"github.com/hcs64/ww2ogg2/codebook"
	"github.com/hcs64/ww2ogg2/vorbis"
	"github.com/hcs64/ww2ogg2/wwriff"
)

// Options configures a conversion the way the command-line flags do.
type Options struct {
	InlineCodebooks   bool
	FullSetup         bool
	ForcePacketFormat wwriff.ForcePacketFormat
	CodebooksPath     string
}

// DefaultCodebooksPath is used when Options.CodebooksPath is empty and
// external codebooks are required.
const DefaultCodebooksPath = "packed_codebooks.bin"

// Converter holds a parsed input and is ready to produce Ogg output. One
// Converter corresponds to one input file; call Finish to release it.
type Converter struct {
	file       *os.File
	descriptor *wwriff.Descriptor
	codebooks  *codebook.Library
	opts       Options
}

// New opens and parses path as a Wwise RIFF/RIFX Vorbis container. If the
// descriptor turns out to need external codebooks, opts.CodebooksPath (or
// DefaultCodebooksPath) is loaded as well.
func New(path string, opts Options) (*Converter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "convert: opening %q", path)
	}

	parseOpts := wwriff.ParseOptions{
		InlineCodebooks:   opts.InlineCodebooks,
		FullSetup:         opts.FullSetup,
		ForcePacketFormat: opts.ForcePacketFormat,
	}
	d, err := wwriff.Parse(f, parseOpts)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "convert: parsing %q", path)
	}

	c := &Converter{file: f, descriptor: d, opts: opts}

	if !d.HeaderTriadPresent && !opts.InlineCodebooks {
		path := opts.CodebooksPath
		if path == "" {
			path = DefaultCodebooksPath
		}
		lib, err := codebook.LoadLibrary(path)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "convert: loading codebook library")
		}
		c.codebooks = lib
	}

	return c, nil
}

// Descriptor returns the parsed container metadata.
func (c *Converter) Descriptor() *wwriff.Descriptor {
	return c.descriptor
}

// Summary renders the same informational text the original command-line
// tool printed before converting.
func (c *Converter) Summary() string {
	path := c.opts.CodebooksPath
	if path == "" {
		path = DefaultCodebooksPath
	}
	return c.descriptor.Summary(path)
}

// WriteOgg converts the input and writes a complete Ogg Vorbis stream to w.
func (c *Converter) WriteOgg(w io.Writer) error {
	pw := bitstream.NewPageWriter(w)

	src := vorbis.Source{
		File:       c.file,
		Descriptor: c.descriptor,
		Codebooks:  c.codebooks,
	}

	header, err := vorbis.WriteHeaders(src, pw)
	if err != nil {
		return errors.Wrap(err, "convert: writing header packets")
	}

	if err := vorbis.RewriteAudioPackets(src, header, pw); err != nil {
		return errors.Wrap(err, "convert: rewriting audio packets")
	}

	return pw.Finish()
}

// Finish releases the underlying file. The Converter must not be used
// afterward.
func (c *Converter) Finish() error {
	return c.file.Close()
}

// Convert is a convenience wrapper running New, WriteOgg, and Finish in
// sequence against file paths.
func Convert(inPath, outPath string, opts Options) error {
	c, err := New(inPath, opts)
	if err != nil {
		return err
	}
	defer c.Finish()

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "convert: creating %q", outPath)
	}
	defer out.Close()

	return c.WriteOgg(out)
}
