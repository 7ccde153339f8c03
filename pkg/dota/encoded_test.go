package dota

import (
	"bytes"
	"testing"
)

// encodeString is the inverse of decodeEncodedString, used to build test
// input: odd bytes are stored as-is with their mask bit set, even bytes
// incremented with the bit clear, so the stream never contains a null.
func encodeString(decoded []byte) []byte {
	var out []byte
	for start := 0; start < len(decoded); start += 7 {
		chunk := decoded[start:]
		if len(chunk) > 7 {
			chunk = chunk[:7]
		}
		mask := uint8(1)
		for k, b := range chunk {
			if b%2 == 1 {
				mask |= 1 << (k + 1)
			}
		}
		out = append(out, mask)
		for _, b := range chunk {
			if b%2 == 1 {
				out = append(out, b)
			} else {
				out = append(out, b+1)
			}
		}
	}
	return append(out, 0)
}

func TestDecodeEncodedString(t *testing.T) {
	decoded := []byte{0x00, 0x48, 0x01, 0xFF, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	r := newByteReader(encodeString(decoded))
	got := decodeEncodedString(r)
	if !bytes.Equal(got, decoded) {
		t.Errorf("decoded = % X, want % X", got, decoded)
	}
	if r.err != nil {
		t.Errorf("reader error: %v", r.err)
	}
}

func TestDecodeEncodedStringConsumesTerminator(t *testing.T) {
	stream := append(encodeString([]byte{0x01, 0x02}), 0xEE)
	r := newByteReader(stream)
	decodeEncodedString(r)
	if got := r.u8(); got != 0xEE {
		t.Errorf("next byte = 0x%02X, want 0xEE", got)
	}
}

func TestParseGameSettings(t *testing.T) {
	decoded := make([]byte, 13)
	decoded[0] = 0x02 // fast
	decoded[1] = 0x08 | 0x10 | 0x20 | 0x40
	decoded[2] = 0x01
	decoded[3] = 0x02 | 0x04
	decoded = append(decoded, "Maps\\Download\\DotA Allstars v6.70c.w3x\x00host\x00"...)

	s, mapPath, creator := parseGameSettings(decoded)
	if s.Speed != SpeedFast {
		t.Errorf("Speed = %v, want Fast", s.Speed)
	}
	if s.Visibility != VisibilityDefault {
		t.Errorf("Visibility = %v, want Default", s.Visibility)
	}
	if s.Observers != ObserversFull {
		t.Errorf("Observers = %v, want Full", s.Observers)
	}
	if !s.TeamsTogether || !s.LockTeams {
		t.Error("TeamsTogether/LockTeams not set")
	}
	if s.FullSharedControl {
		t.Error("FullSharedControl set")
	}
	if !s.RandomHero || !s.RandomRaces {
		t.Error("RandomHero/RandomRaces not set")
	}
	if mapPath != "Maps\\Download\\DotA Allstars v6.70c.w3x" {
		t.Errorf("mapPath = %q", mapPath)
	}
	if creator != "host" {
		t.Errorf("creator = %q, want host", creator)
	}
}

func TestParseGameSettingsReferees(t *testing.T) {
	decoded := []byte{0x01, 0x08, 0x00, 0x40}
	s, _, _ := parseGameSettings(decoded)
	if s.Observers != ObserversReferees {
		t.Errorf("Observers = %v, want Referees", s.Observers)
	}
}

func TestMapBaseName(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"Maps\\Download\\DotA Allstars v6.70c.w3x", "DotA Allstars v6.70c"},
		{"DotA Allstars v6.59d.w3x", "DotA Allstars v6.59d"},
		{"noextension", "noextension"},
	}
	for _, tt := range tests {
		if got := mapBaseName(tt.path); got != tt.want {
			t.Errorf("mapBaseName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
