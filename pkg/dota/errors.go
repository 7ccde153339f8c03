package dota

import "fmt"

// ParseError is the base error type for decode errors. Offset, when set,
// is the byte position inside the decompressed stream (or the file for
// header errors); TimeMs is the running replay clock at the failure point.
type ParseError struct {
	Message string
	Offset  *int
	TimeMs  *uint32
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Offset != nil {
		msg = fmt.Sprintf("%s at offset 0x%X", msg, *e.Offset)
	}
	if e.TimeMs != nil {
		msg = fmt.Sprintf("%s (replay time %dms)", msg, *e.TimeMs)
	}
	return msg
}

// InvalidHeaderError indicates the file does not start with a valid
// replay container header.
type InvalidHeaderError struct {
	ParseError
}

// UnsupportedHeaderVersionError indicates an unknown header version
// discriminant (anything other than 0 or 1).
type UnsupportedHeaderVersionError struct {
	ParseError
	HeaderVersion uint32
}

// UnsupportedModVersionError indicates the detected mod version is below
// the minimum supported floor and no data file exists for it.
type UnsupportedModVersionError struct {
	ParseError
	Version string
}

// CorruptBlockError indicates both decompression strategies failed for a
// data block. The stream is sequential; a missing chunk desyncs
// everything after it, so this aborts the whole decode.
type CorruptBlockError struct {
	ParseError
	Index uint32
}

// UnknownBlockError indicates an unrecognized sync-block opcode.
// Resynchronization is not defined for the outer stream, so this is
// fatal unless relaxed mode is enabled.
type UnknownBlockError struct {
	ParseError
	Opcode     uint8
	PrevOpcode uint8
}

// UnknownActionError indicates an unrecognized action opcode inside a
// player's command slice. Fatal unless relaxed mode is enabled.
type UnknownActionError struct {
	ParseError
	Opcode     uint8
	PrevOpcode uint8
}

// TruncatedDataError indicates the stream ended in the middle of a record.
type TruncatedDataError struct {
	ParseError
}

func newInvalidHeaderError(msg string) *InvalidHeaderError {
	return &InvalidHeaderError{ParseError{Message: msg}}
}

func newUnsupportedHeaderVersionError(version uint32) *UnsupportedHeaderVersionError {
	return &UnsupportedHeaderVersionError{
		ParseError:    ParseError{Message: fmt.Sprintf("unsupported header version %d", version)},
		HeaderVersion: version,
	}
}

// NewUnsupportedModVersionError is exported for catalog implementations,
// which detect the version floor during Resolve.
func NewUnsupportedModVersionError(version string) *UnsupportedModVersionError {
	return &UnsupportedModVersionError{
		ParseError: ParseError{Message: fmt.Sprintf("unsupported mod version %s", version)},
		Version:    version,
	}
}

func newCorruptBlockError(index uint32, offset int, cause error) *CorruptBlockError {
	return &CorruptBlockError{
		ParseError: ParseError{
			Message: fmt.Sprintf("block %d failed both decompression strategies: %v", index, cause),
			Offset:  &offset,
		},
		Index: index,
	}
}

func newUnknownBlockError(opcode, prev uint8, offset int, timeMs uint32) *UnknownBlockError {
	return &UnknownBlockError{
		ParseError: ParseError{
			Message: fmt.Sprintf("unhandled sync block opcode 0x%02X (prev 0x%02X)", opcode, prev),
			Offset:  &offset,
			TimeMs:  &timeMs,
		},
		Opcode:     opcode,
		PrevOpcode: prev,
	}
}

func newUnknownActionError(opcode, prev uint8, offset int, timeMs uint32) *UnknownActionError {
	return &UnknownActionError{
		ParseError: ParseError{
			Message: fmt.Sprintf("unknown action opcode 0x%02X (prev 0x%02X)", opcode, prev),
			Offset:  &offset,
			TimeMs:  &timeMs,
		},
		Opcode:     opcode,
		PrevOpcode: prev,
	}
}

func newTruncatedDataError(msg string, offset int) *TruncatedDataError {
	return &TruncatedDataError{ParseError{Message: msg, Offset: &offset}}
}
