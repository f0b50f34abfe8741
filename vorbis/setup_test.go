package vorbis

import (
	"bytes"
	"testing"

	"github.com/hcs64/ww2ogg2/bitstream"
	"github.com/hcs64/ww2ogg2/wwriff"
)

func TestWriteCommentBodyNoLoop(t *testing.T) {
	var out bytes.Buffer
	pw := bitstream.NewPageWriter(&out)
	d := &wwriff.Descriptor{}

	if err := writeCommentBody(pw, d); err != nil {
		t.Fatalf("writeCommentBody: %v", err)
	}
	if err := pw.FlushPage(false, true); err != nil {
		t.Fatal(err)
	}

	br := bitstream.NewReader(bytes.NewReader(out.Bytes()[27+1:])) // skip ogg header + 1 lacing byte
	vendorLen, err := br.ReadUint(32)
	if err != nil {
		t.Fatal(err)
	}
	if int(vendorLen) != len(Vendor) {
		t.Fatalf("got vendor length %d, want %d", vendorLen, len(Vendor))
	}
	for i := 0; i < int(vendorLen); i++ {
		c, err := br.ReadUint(8)
		if err != nil {
			t.Fatal(err)
		}
		if byte(c) != Vendor[i] {
			t.Fatalf("vendor byte %d mismatch: got %q want %q", i, c, Vendor[i])
		}
	}
	commentCount, err := br.ReadUint(32)
	if err != nil {
		t.Fatal(err)
	}
	if commentCount != 0 {
		t.Fatalf("got comment count %d, want 0 with no loop", commentCount)
	}
}

func TestWriteCommentBodyWithLoop(t *testing.T) {
	var out bytes.Buffer
	pw := bitstream.NewPageWriter(&out)
	d := &wwriff.Descriptor{LoopCount: 1, LoopStart: 10, LoopEnd: 20}

	if err := writeCommentBody(pw, d); err != nil {
		t.Fatalf("writeCommentBody: %v", err)
	}
	if err := pw.FlushPage(false, true); err != nil {
		t.Fatal(err)
	}

	br := bitstream.NewReader(bytes.NewReader(out.Bytes()[27+1:]))
	vendorLen, err := br.ReadUint(32)
	if err != nil {
		t.Fatal(err)
	}
	for i := uint32(0); i < vendorLen; i++ {
		if _, err := br.ReadUint(8); err != nil {
			t.Fatal(err)
		}
	}
	commentCount, err := br.ReadUint(32)
	if err != nil {
		t.Fatal(err)
	}
	if commentCount != 2 {
		t.Fatalf("got comment count %d, want 2 with a loop set", commentCount)
	}

	loopStartLen, err := br.ReadUint(32)
	if err != nil {
		t.Fatal(err)
	}
	loopStartBytes := make([]byte, loopStartLen)
	for i := range loopStartBytes {
		c, err := br.ReadUint(8)
		if err != nil {
			t.Fatal(err)
		}
		loopStartBytes[i] = byte(c)
	}
	if string(loopStartBytes) != "LoopStart=10" {
		t.Fatalf("got %q, want LoopStart=10", loopStartBytes)
	}
}
