package dota

import (
	"encoding/binary"
	"errors"
	"testing"
)

func baseHeader(headerVersion uint32) []byte {
	b := make([]byte, 0, 68)
	b = append(b, introString...)
	b = appendU32(b, 68)            // header size
	b = appendU32(b, 1000)          // compressed size
	b = appendU32(b, headerVersion) // header version
	b = appendU32(b, 8192)          // decompressed size
	b = appendU32(b, 1)             // block count
	return b
}

func appendU16(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

func appendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func TestParseHeaderV1(t *testing.T) {
	b := baseHeader(1)
	b = append(b, "PX3W"...) // ident, reversed
	b = appendU32(b, 26)     // major
	b = appendU16(b, 6059)   // build
	b = appendU16(b, 0x8000) // flags
	b = appendU32(b, 1800000)
	b = appendU32(b, 0xDEADBEEF)

	h, err := parseHeader(b)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.Ident != "W3XP" {
		t.Errorf("Ident = %q, want W3XP", h.Ident)
	}
	if !h.IsExpansion() {
		t.Error("IsExpansion = false, want true")
	}
	if h.MajorVersion != 26 || h.BuildVersion != 6059 {
		t.Errorf("version = %d build %d, want 26 build 6059", h.MajorVersion, h.BuildVersion)
	}
	if h.LengthMs != 1800000 {
		t.Errorf("LengthMs = %d, want 1800000", h.LengthMs)
	}
	if got := h.VersionString(); got != "1.26.0" {
		t.Errorf("VersionString = %q, want 1.26.0", got)
	}
}

func TestParseHeaderV0(t *testing.T) {
	b := baseHeader(0)
	b = appendU16(b, 2)  // minor
	b = appendU16(b, 6)  // major
	b = appendU16(b, 4226)
	b = appendU16(b, 0)
	b = appendU32(b, 600000)
	b = appendU32(b, 0)
	b = append(b, 0, 0, 0, 0) // pad to declared size

	h, err := parseHeader(b)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.Ident != "WAR3" {
		t.Errorf("Ident = %q, want WAR3", h.Ident)
	}
	if h.MajorVersion != 6 || h.MinorVersion != 2 {
		t.Errorf("version = %d.%d, want 6.2", h.MajorVersion, h.MinorVersion)
	}
}

func TestParseHeaderUnsupportedVersion(t *testing.T) {
	b := baseHeader(2)
	b = append(b, make([]byte, 20)...)

	_, err := parseHeader(b)
	var verr *UnsupportedHeaderVersionError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want UnsupportedHeaderVersionError", err)
	}
	if verr.HeaderVersion != 2 {
		t.Errorf("HeaderVersion = %d, want 2", verr.HeaderVersion)
	}
}

func TestParseHeaderNotAReplay(t *testing.T) {
	_, err := parseHeader([]byte("definitely not a replay file, much too short"))
	var herr *InvalidHeaderError
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want InvalidHeaderError", err)
	}
}

func TestParseHeaderTruncated(t *testing.T) {
	b := baseHeader(1)
	b = append(b, "PX3W"...)
	if _, err := parseHeader(b); err == nil {
		t.Fatal("expected error for truncated sub-header")
	}
}
