// Package oggcheck reads back the identification and comment headers of a
// freshly written Ogg Vorbis stream, so a converted file can be sanity
// checked without a full decoder.
package oggcheck

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	idPacketType      = 1
	commentPacketType = 3
)

// Summary is what Read reports back about a converted stream.
type Summary struct {
	Channels   uint8
	SampleRate uint32
	Vendor     string
	Comments   []string
}

// Read walks the identification and comment packets at the start of an
// Ogg Vorbis stream and returns their contents. It does not validate
// audio pages beyond what is needed to locate the comment packet.
func Read(r io.ReadSeeker) (*Summary, error) {
	if err := expectCapture(r); err != nil {
		return nil, err
	}

	// Skip the rest of the first page's header up to the segment count
	// (bytes 4..25 inclusive of the 27-byte header, already past "OggS").
	if _, err := r.Seek(22, io.SeekCurrent); err != nil {
		return nil, errors.Wrap(err, "oggcheck: seeking past page header")
	}

	segCount, err := readByte(r)
	if err != nil {
		return nil, err
	}
	segments := make([]byte, segCount)
	if _, err := io.ReadFull(r, segments); err != nil {
		return nil, errors.Wrap(err, "oggcheck: reading segment table")
	}
	pageEnd, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "oggcheck: locating page payload")
	}
	for _, s := range segments {
		pageEnd += int64(s)
	}

	packetType, err := readByte(r)
	if err != nil {
		return nil, err
	}
	if packetType != idPacketType {
		return nil, errors.Errorf("oggcheck: expected identification packet (type %d), got %d", idPacketType, packetType)
	}

	// Skip 6 bytes "vorbis" + 4 bytes version; 1 byte channels and 4 bytes
	// rate follow.
	if _, err := r.Seek(6+4, io.SeekCurrent); err != nil {
		return nil, errors.Wrap(err, "oggcheck: seeking into identification packet")
	}
	channels, err := readByte(r)
	if err != nil {
		return nil, err
	}
	var rateBuf [4]byte
	if _, err := io.ReadFull(r, rateBuf[:]); err != nil {
		return nil, errors.Wrap(err, "oggcheck: reading sample rate")
	}
	sampleRate := binary.LittleEndian.Uint32(rateBuf[:])

	if _, err := r.Seek(pageEnd, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "oggcheck: seeking past identification page")
	}

	packets, err := readPackets(r)
	if err != nil {
		return nil, err
	}
	pr := bytes.NewReader(packets)

	packetType, err = readByte(pr)
	if err != nil {
		return nil, err
	}
	if packetType != commentPacketType {
		return nil, errors.Errorf("oggcheck: expected comment packet (type %d), got %d", commentPacketType, packetType)
	}
	if _, err := pr.Seek(6, io.SeekCurrent); err != nil { // "vorbis"
		return nil, errors.Wrap(err, "oggcheck: seeking past comment header tag")
	}

	vendor, err := readLengthPrefixedString(pr)
	if err != nil {
		return nil, err
	}

	var commentCountBuf [4]byte
	if _, err := io.ReadFull(pr, commentCountBuf[:]); err != nil {
		return nil, errors.Wrap(err, "oggcheck: reading comment count")
	}
	commentCount := binary.LittleEndian.Uint32(commentCountBuf[:])

	comments := make([]string, 0, commentCount)
	for i := uint32(0); i < commentCount; i++ {
		c, err := readLengthPrefixedString(pr)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return &Summary{
		Channels:   channels,
		SampleRate: sampleRate,
		Vendor:     vendor,
		Comments:   comments,
	}, nil
}

func expectCapture(r io.Reader) error {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return errors.Wrap(err, "oggcheck: reading capture pattern")
	}
	if string(magic[:]) != "OggS" {
		return errors.New("oggcheck: expected 'OggS'")
	}
	return nil
}

func readByte(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(err, "oggcheck: reading byte")
	}
	return b[0], nil
}

func readLengthPrefixedString(r io.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", errors.Wrap(err, "oggcheck: reading string length")
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", errors.Wrap(err, "oggcheck: reading string body")
	}
	return string(b), nil
}

// readPackets reads the contiguous run of Ogg pages making up one or more
// logical packets, stopping (and rewinding) at the first page that begins
// a new packet rather than continuing one, or at the end of the stream.
func readPackets(r io.ReadSeeker) ([]byte, error) {
	var buf bytes.Buffer
	first := true

	for {
		if err := expectCapture(r); err != nil {
			if !first && errors.Cause(err) == io.EOF {
				break
			}
			return nil, err
		}

		var head [22]byte
		if _, err := io.ReadFull(r, head[:]); err != nil {
			return nil, errors.Wrap(err, "oggcheck: reading page header")
		}
		headerTypeFlag := head[1]
		continuation := headerTypeFlag&0x1 != 0

		if !first && !continuation {
			if _, err := r.Seek(-26, io.SeekCurrent); err != nil {
				return nil, errors.Wrap(err, "oggcheck: rewinding to page start")
			}
			break
		}
		first = false

		segCount, err := readByte(r)
		if err != nil {
			return nil, err
		}
		segments := make([]byte, segCount)
		if _, err := io.ReadFull(r, segments); err != nil {
			return nil, errors.Wrap(err, "oggcheck: reading segment table")
		}

		pageSize := 0
		for _, s := range segments {
			pageSize += int(s)
		}
		if _, err := io.CopyN(&buf, r, int64(pageSize)); err != nil {
			return nil, errors.Wrap(err, "oggcheck: reading packet payload")
		}
	}

	return buf.Bytes(), nil
}
