package dota

import "strings"

// decodeEncodedString decodes the escaped settings string. The producer
// avoided embedded nulls by storing data in runs of eight: every run
// starts with a mask byte whose bits record, per following byte, whether
// it was stored as-is (bit set) or incremented by one (bit clear, used
// for even bytes). The terminating null lives in the encoded stream.
func decodeEncodedString(r *byteReader) []byte {
	var out []byte
	var mask uint8
	for i := 0; ; i++ {
		b := r.u8()
		if r.err != nil {
			return out
		}
		if b == 0 {
			return out
		}
		if i%8 == 0 {
			mask = b
			continue
		}
		if mask&(1<<(i%8)) != 0 {
			out = append(out, b)
		} else {
			out = append(out, b-1)
		}
	}
}

// parseGameSettings interprets the decoded settings string: four setting
// bytes, reserved space through offset 13, then the map path and the
// creator name as null-separated strings.
func parseGameSettings(decoded []byte) (*GameSettings, string, string) {
	s := &GameSettings{}
	if len(decoded) < 4 {
		return s, "", ""
	}

	s.Speed = GameSpeed(decoded[0])

	b := decoded[1]
	switch {
	case b&0x01 != 0:
		s.Visibility = VisibilityHideTerrain
	case b&0x02 != 0:
		s.Visibility = VisibilityMapExplored
	case b&0x04 != 0:
		s.Visibility = VisibilityAlwaysVisible
	case b&0x08 != 0:
		s.Visibility = VisibilityDefault
	}
	obs := 0
	if b&0x10 != 0 {
		obs++
	}
	if b&0x20 != 0 {
		obs += 2
	}
	switch obs {
	case 2:
		s.Observers = ObserversOnDefeat
	case 3:
		s.Observers = ObserversFull
	default:
		s.Observers = ObserversNone
	}
	s.TeamsTogether = b&0x40 != 0

	s.LockTeams = decoded[2] != 0

	b = decoded[3]
	s.FullSharedControl = b&0x01 != 0
	s.RandomHero = b&0x02 != 0
	s.RandomRaces = b&0x04 != 0
	if b&0x40 != 0 {
		s.Observers = ObserversReferees
	}

	mapPath, creator := "", ""
	if len(decoded) > 13 {
		parts := strings.Split(string(decoded[13:]), "\x00")
		if len(parts) > 0 {
			mapPath = parts[0]
		}
		if len(parts) > 1 {
			creator = parts[1]
		}
	}
	return s, mapPath, creator
}
