// Package objfile encodes and decodes the segmented object file format
// compatible with the lc3tools tool set, plus the legacy big-endian
// format older LC-3 tools emit.
package objfile

import (
	"encoding/binary"
	"fmt"

	"github.com/lc3toolchain/lc3/assembler"
)

var magic = [5]byte{0x1C, 0x30, 0x15, 0xC0, 0x01}
var version = [2]byte{0x01, 0x01}

// Entry is one record in the segmented format: either an origin marker
// (IsOrig true, Source empty) or a code word, optionally carrying the
// assembler source line it came from.
type Entry struct {
	Value  uint16
	IsOrig bool
	Source []byte
}

// Segment adapts assembler.Segment so objfile never has to import the VM
// package just to satisfy vm.Segment.
type Segment struct {
	origin uint16
	words  []uint16
}

func (s Segment) Origin() uint16   { return s.origin }
func (s Segment) Words() []uint16  { return s.words }
func NewSegment(origin uint16, words []uint16) Segment {
	return Segment{origin: origin, words: words}
}

// Encode writes the segmented lc3tools-compatible format: the magic and
// version header, then one origin entry followed by one entry per code
// word for each segment in order. sourceLines, if non-nil, maps a
// segment index and word index to the source text for that word's
// entry; callers that don't need source preservation can pass nil.
func Encode(segments []assembler.Segment, sourceLines func(segIdx, wordIdx int) string) []byte {
	buf := make([]byte, 0, 7+len(segments)*8)
	buf = append(buf, magic[:]...)
	buf = append(buf, version[:]...)

	for si, seg := range segments {
		buf = appendEntry(buf, seg.Origin, true, nil)
		for wi, word := range seg.Code {
			var src []byte
			if sourceLines != nil {
				if line := sourceLines(si, wi); line != "" {
					src = []byte(line)
				}
			}
			buf = appendEntry(buf, word, false, src)
		}
	}
	return buf
}

func appendEntry(buf []byte, value uint16, isOrig bool, source []byte) []byte {
	var valBytes [2]byte
	binary.LittleEndian.PutUint16(valBytes[:], value)
	buf = append(buf, valBytes[:]...)
	if isOrig {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(source)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, source...)
	return buf
}

// IsLC3ToolsFormat reports whether data begins with the segmented
// format's magic header.
func IsLC3ToolsFormat(data []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i, b := range magic {
		if data[i] != b {
			return false
		}
	}
	return true
}

// Decode parses object file bytes, dispatching on the magic header
// between the segmented lc3tools format and the legacy big-endian
// format.
func Decode(data []byte) ([]Segment, error) {
	if IsLC3ToolsFormat(data) {
		entries, err := DecodeEntries(data)
		if err != nil {
			return nil, err
		}
		return EntriesToSegments(entries), nil
	}
	return decodeLegacy(data)
}

// DecodeEntries parses the raw entry list from the segmented format,
// accepting any version byte pair.
func DecodeEntries(data []byte) ([]Entry, error) {
	if !IsLC3ToolsFormat(data) {
		return nil, fmt.Errorf("objfile: unrecognized magic")
	}
	pos := len(magic) + len(version)
	var entries []Entry
	for pos < len(data) {
		if pos+7 > len(data) {
			return nil, fmt.Errorf("objfile: truncated entry header at offset %d", pos)
		}
		value := binary.LittleEndian.Uint16(data[pos : pos+2])
		isOrig := data[pos+2] != 0
		length := binary.LittleEndian.Uint32(data[pos+3 : pos+7])
		pos += 7
		if pos+int(length) > len(data) {
			return nil, fmt.Errorf("objfile: truncated source bytes at offset %d", pos)
		}
		var source []byte
		if length > 0 {
			source = append(source, data[pos:pos+int(length)]...)
		}
		pos += int(length)
		entries = append(entries, Entry{Value: value, IsOrig: isOrig, Source: source})
	}
	return entries, nil
}

// EntriesToSegments groups a flat entry list back into segments: each
// IsOrig entry starts a new segment whose origin is its value, and
// subsequent non-origin entries append code words until the next origin
// entry (or the end of input).
func EntriesToSegments(entries []Entry) []Segment {
	var segments []Segment
	var cur *Segment
	for _, e := range entries {
		if e.IsOrig {
			if cur != nil {
				segments = append(segments, *cur)
			}
			cur = &Segment{origin: e.Value}
			continue
		}
		if cur == nil {
			cur = &Segment{origin: 0}
		}
		cur.words = append(cur.words, e.Value)
	}
	if cur != nil {
		segments = append(segments, *cur)
	}
	return segments
}

// decodeLegacy parses the pre-lc3tools format: a big-endian u16 origin
// followed by big-endian u16 code words, with no magic and exactly one
// implicit segment.
func decodeLegacy(data []byte) ([]Segment, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("objfile: legacy object file too short")
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("objfile: legacy object file has odd length")
	}
	origin := binary.BigEndian.Uint16(data[0:2])
	words := make([]uint16, 0, (len(data)-2)/2)
	for pos := 2; pos < len(data); pos += 2 {
		words = append(words, binary.BigEndian.Uint16(data[pos:pos+2]))
	}
	return []Segment{{origin: origin, words: words}}, nil
}
