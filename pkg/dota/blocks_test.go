package dota

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"testing"
)

func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func buildBlock(t *testing.T, payload []byte, uSize uint16) []byte {
	t.Helper()
	b := appendU16(nil, uint16(len(payload)))
	b = appendU16(b, uSize)
	b = appendU32(b, 0) // checksum, not verified
	return append(b, payload...)
}

func TestDecompressBlocksZlib(t *testing.T) {
	first := []byte("first block contents")
	second := []byte("second block contents")
	data := append(buildBlock(t, zlibCompress(t, first), uint16(len(first))),
		buildBlock(t, zlibCompress(t, second), uint16(len(second)))...)

	out, err := decompressBlocks(data, 2)
	if err != nil {
		t.Fatalf("decompressBlocks: %v", err)
	}
	want := append(append([]byte{}, first...), second...)
	if !bytes.Equal(out, want) {
		t.Errorf("stream = %q, want %q", out, want)
	}
}

func TestDecompressBlocksPatchedFraming(t *testing.T) {
	content := []byte("raw deflate with the broken recorder framing")
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	// Invert the correction the decompressor applies: two junk prefix
	// bytes, first deflate byte decremented, four junk suffix bytes. The
	// 0xFF prefix also guarantees the zlib attempt fails first.
	deflated := buf.Bytes()
	payload := []byte{0xFF, 0xFF}
	payload = append(payload, deflated[0]-1)
	payload = append(payload, deflated[1:]...)
	payload = append(payload, 0xAA, 0xBB, 0xCC, 0xDD)

	out, err := decompressBlocks(buildBlock(t, payload, uint16(len(content))), 1)
	if err != nil {
		t.Fatalf("decompressBlocks: %v", err)
	}
	if !bytes.Equal(out, content) {
		t.Errorf("stream = %q, want %q", out, content)
	}
}

func TestDecompressBlocksCorrupt(t *testing.T) {
	payload := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	_, err := decompressBlocks(buildBlock(t, payload, 8192), 1)
	var cerr *CorruptBlockError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want CorruptBlockError", err)
	}
	if cerr.Index != 0 {
		t.Errorf("Index = %d, want 0", cerr.Index)
	}
}

func TestDecompressBlocksFewerThanDeclared(t *testing.T) {
	content := []byte("only one block present")
	data := buildBlock(t, zlibCompress(t, content), uint16(len(content)))

	out, err := decompressBlocks(data, 5)
	if err != nil {
		t.Fatalf("decompressBlocks: %v", err)
	}
	if !bytes.Equal(out, content) {
		t.Errorf("stream = %q, want %q", out, content)
	}
}
