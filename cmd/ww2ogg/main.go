// Command ww2ogg converts Wwise-packed RIFF/RIFX Vorbis audio into
// standard Ogg Vorbis.
package main

import (
	"os"
	"strings"

	"github.com/zerodha/logf"
	"golang.org/x/term"

	"github.com/hcs64/ww2ogg2/convert"
	"github.com/hcs64/ww2ogg2/oggcheck"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log := logf.New(logf.Opts{EnableColor: term.IsTerminal(int(os.Stderr.Fd()))})

	opt, err := parseOptions(args)
	if err != nil {
		log.Error("invalid arguments", "error", err)
		return 1
	}

	if !opt.quiet {
		log.Info("converting", "input", opt.inPath, "output", opt.outPath)
	}

	c, err := convert.New(opt.inPath, opt.convertOpt)
	if err != nil {
		log.Error("could not open input", "error", err)
		return 1
	}
	defer c.Finish()

	if !opt.quiet {
		for _, line := range splitLines(c.Summary()) {
			log.Info(line)
		}
	}

	out := os.Stdout
	if !opt.toStdout {
		f, err := os.Create(opt.outPath)
		if err != nil {
			log.Error("could not create output", "error", err)
			return 1
		}
		defer f.Close()
		out = f
	} else if term.IsTerminal(int(os.Stdout.Fd())) {
		log.Error("refusing to write binary Ogg data to a terminal; redirect stdout")
		return 1
	}

	if err := c.WriteOgg(out); err != nil {
		log.Error("conversion failed", "error", err)
		return 1
	}

	if opt.verify {
		if opt.toStdout {
			log.Error("--verify requires a seekable output file, not stdout")
			return 1
		}
		if _, err := out.Seek(0, 0); err != nil {
			log.Error("could not seek output for verification", "error", err)
			return 1
		}
		summary, err := oggcheck.Read(out)
		if err != nil {
			log.Error("verification failed", "error", err)
			return 1
		}
		log.Info("verified",
			"channels", summary.Channels,
			"sample_rate", summary.SampleRate,
			"vendor", summary.Vendor,
			"comments", strings.Join(summary.Comments, "; "),
		)
	}

	if !opt.quiet {
		log.Info("done")
	}
	return 0
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
