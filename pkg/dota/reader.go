package dota

import "encoding/binary"

// byteReader walks a byte slice with a sticky error. Once a read runs past
// the end every later read returns zero values, so decode sequences can be
// written straight-line and checked once at the end.
type byteReader struct {
	data []byte
	pos  int
	err  error
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

func (r *byteReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	// Negative counts come from length fields smaller than the fixed
	// prefix already consumed.
	if n < 0 || r.pos+n > len(r.data) {
		r.err = newTruncatedDataError("unexpected end of data", r.pos)
		return false
	}
	return true
}

func (r *byteReader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *byteReader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

func (r *byteReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *byteReader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *byteReader) skip(n int) {
	if r.need(n) {
		r.pos += n
	}
}

// cstring reads a null-terminated string and consumes the terminator.
func (r *byteReader) cstring() string {
	if r.err != nil {
		return ""
	}
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != 0 {
		r.pos++
	}
	if r.pos >= len(r.data) {
		r.err = newTruncatedDataError("unterminated string", start)
		return ""
	}
	s := string(r.data[start:r.pos])
	r.pos++
	return s
}

func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *byteReader) done() bool {
	return r.err != nil || r.pos >= len(r.data)
}

// peek returns the next byte without consuming it, or 0 at end of data.
func (r *byteReader) peek() uint8 {
	if r.err != nil || r.pos >= len(r.data) {
		return 0
	}
	return r.data[r.pos]
}
