package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hcs64/ww2ogg2/convert"
	"github.com/hcs64/ww2ogg2/wwriff"
)

type options struct {
	inPath     string
	outPath    string
	toStdout   bool
	quiet      bool
	verify     bool
	convertOpt convert.Options
}

func parseOptions(args []string) (*options, error) {
	fs := pflag.NewFlagSet("ww2ogg", pflag.ContinueOnError)

	outPath := fs.StringP("output", "o", "", "output file name (defaults to <input>.ogg, or <input>_conv.ogg if that collides)")
	inlineCodebooks := fs.Bool("inline-codebooks", false, "read codebooks from the input file itself rather than an external library")
	fullSetup := fs.Bool("full-setup", false, "setup packet is already a complete, standard Vorbis setup header; implies --inline-codebooks")
	modPackets := fs.Bool("mod-packets", false, "force modified-Vorbis-packet audio framing")
	noModPackets := fs.Bool("no-mod-packets", false, "force standard Vorbis packet audio framing")
	codebooksPath := fs.String("pcb", convert.DefaultCodebooksPath, "external codebook library path")
	quiet := fs.BoolP("quiet", "q", false, "suppress informational output")
	verify := fs.Bool("verify", false, "read back the written file's header packets and report them")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *modPackets && *noModPackets {
		return nil, fmt.Errorf("only one of --mod-packets or --no-mod-packets is allowed")
	}

	if fs.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one input file, got %d", fs.NArg())
	}
	inPath := fs.Arg(0)

	resolvedOut := *outPath
	if resolvedOut == "" {
		ext := filepath.Ext(inPath)
		resolvedOut = strings.TrimSuffix(inPath, ext) + ".ogg"
		if resolvedOut == inPath {
			resolvedOut = strings.TrimSuffix(inPath, ext) + "_conv.ogg"
		}
	}

	forceFormat := wwriff.NoForcePacketFormat
	switch {
	case *modPackets:
		forceFormat = wwriff.ForceModPackets
	case *noModPackets:
		forceFormat = wwriff.ForceNoModPackets
	}

	return &options{
		inPath:   inPath,
		outPath:  resolvedOut,
		toStdout: resolvedOut == "-",
		quiet:    *quiet,
		verify:   *verify,
		convertOpt: convert.Options{
			InlineCodebooks:   *inlineCodebooks || *fullSetup,
			FullSetup:         *fullSetup,
			ForcePacketFormat: forceFormat,
			CodebooksPath:     *codebooksPath,
		},
	}, nil
}
