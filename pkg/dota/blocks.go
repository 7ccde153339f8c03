package dota

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// decompressBlocks inflates every data block and concatenates the results
// into one contiguous stream.
//
// Each block carries an 8-byte descriptor:
//
//	offset | size | field
//	0x0000 |    2 | compressed size (descriptor excluded)
//	0x0002 |    2 | decompressed size (usually 8192)
//	0x0004 |    4 | checksum (not verified)
//
// Most recorders emit standard zlib payloads. Some third-party recorders
// write a malformed framing instead: the payload inflates as raw deflate
// after dropping the 2-byte prefix and 4-byte suffix and bumping the first
// remaining byte by one. Blocks failing both forms are unrecoverable, and
// because the stream is sequential the whole decode aborts.
func decompressBlocks(data []byte, blockCount uint32) ([]byte, error) {
	r := newByteReader(data)
	var out bytes.Buffer

	for i := uint32(0); i < blockCount; i++ {
		if r.remaining() == 0 {
			// Recorder wrote fewer blocks than the header declares.
			break
		}
		cSize := r.u16()
		r.u16() // decompressed size, unused
		r.u32() // checksum, not verified
		payload := r.bytes(int(cSize))
		if r.err != nil {
			return nil, r.err
		}

		inflated, err := inflateZlib(payload)
		if err != nil {
			var patchedErr error
			inflated, patchedErr = inflatePatched(payload)
			if patchedErr != nil {
				return nil, newCorruptBlockError(i, r.pos-len(payload), err)
			}
		}
		out.Write(inflated)
	}
	return out.Bytes(), nil
}

// inflateZlib inflates a standard zlib payload. Recorders often truncate
// the adler trailer, so a short read after data has been produced is
// accepted.
func inflateZlib(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil {
		if out.Len() == 0 || !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, err
		}
	}
	return out.Bytes(), nil
}

// inflatePatched applies the malformed-recorder correction and inflates
// the result as raw deflate.
func inflatePatched(data []byte) ([]byte, error) {
	if len(data) < 7 {
		return nil, fmt.Errorf("payload too short for patched inflate: %d bytes", len(data))
	}
	patched := make([]byte, len(data)-6)
	copy(patched, data[2:len(data)-4])
	patched[0]++

	fr := flate.NewReader(bytes.NewReader(patched))
	defer fr.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, fr); err != nil {
		if out.Len() == 0 || !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, err
		}
	}
	return out.Bytes(), nil
}
