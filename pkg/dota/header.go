package dota

const introString = "Warcraft III recorded game\x1A\x00"

// parseHeader decodes the 48-byte base header and the sub-header selected
// by the header version discriminant.
//
// Version 0 sub-header (16 bytes, pre-1.07):
//
//	offset | size | field
//	0x0000 |    2 | minor version
//	0x0002 |    2 | major version
//	0x0004 |    2 | build number
//	0x0006 |    2 | flags
//	0x0008 |    4 | replay length in ms
//	0x000C |    4 | header CRC32
//
// Version 1 sub-header (20 bytes, 1.07+):
//
//	offset | size | field
//	0x0000 |    4 | game ident, stored reversed ("PX3W" / "3RAW")
//	0x0004 |    4 | major version
//	0x0008 |    2 | build number
//	0x000A |    2 | flags
//	0x000C |    4 | replay length in ms
//	0x0010 |    4 | header CRC32
func parseHeader(data []byte) (*Header, error) {
	r := newByteReader(data)

	intro := r.bytes(len(introString))
	if r.err != nil || string(intro) != introString {
		return nil, newInvalidHeaderError("not a Warcraft III replay file")
	}

	h := &Header{
		HeaderSize:       r.u32(),
		CompressedSize:   r.u32(),
		HeaderVersion:    r.u32(),
		DecompressedSize: r.u32(),
		BlockCount:       r.u32(),
	}
	if r.err != nil {
		return nil, r.err
	}

	switch h.HeaderVersion {
	case 0:
		h.Ident = "WAR3"
		h.MinorVersion = r.u16()
		h.MajorVersion = uint32(r.u16())
		h.BuildVersion = r.u16()
		h.Flags = r.u16()
		h.LengthMs = r.u32()
		h.Checksum = r.u32()
	case 1:
		ident := r.bytes(4)
		if r.err == nil {
			h.Ident = string([]byte{ident[3], ident[2], ident[1], ident[0]})
		}
		h.MajorVersion = r.u32()
		h.BuildVersion = r.u16()
		h.Flags = r.u16()
		h.LengthMs = r.u32()
		h.Checksum = r.u32()
	default:
		return nil, newUnsupportedHeaderVersionError(h.HeaderVersion)
	}
	if r.err != nil {
		return nil, r.err
	}
	return h, nil
}
