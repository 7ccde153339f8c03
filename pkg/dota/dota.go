// Package dota decodes DotA Allstars replays recorded by Warcraft III
// (.w3g files): the compressed block container, the game-info prefix, the
// per-player action stream and the mod's synchronized stat records. The
// result is a Replay with lobby metadata, a chat timeline, per-player
// activity and the mod-level statistics (kills, items, skill builds,
// draft) resolved onto the right players.
//
// The package performs no I/O beyond reading the given file and has no
// logging dependency: diagnostics go through the optional Log hook.
package dota

import "fmt"

// LogLevel orders diagnostic messages by severity.
type LogLevel uint8

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarn:
		return "warn"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// LogFunc receives decode diagnostics. A nil hook discards them.
type LogFunc func(level LogLevel, msg string)

// TranslateFunc maps decoder-generated display strings (leave results,
// synthetic chat lines) to another language. A nil hook is identity.
type TranslateFunc func(s string) string

// ContentCatalog resolves four-character entity codes for one mod version.
type ContentCatalog interface {
	// Lookup returns the entity for a code.
	Lookup(code string) (*Entity, bool)
	// SkillOwner returns the code of the hero owning an ability code.
	SkillOwner(code string) (string, bool)
}

// CatalogResolver selects the ContentCatalog for a map. Resolution happens
// as soon as the map name is known, before any action is decoded.
type CatalogResolver interface {
	Resolve(mapName string) (ContentCatalog, error)
}

// Options configures a Parser. The zero value decodes everything strictly
// with no hooks and no catalog (entity codes stay unresolved).
type Options struct {
	// SkipActions disables the per-player action decode. The mod's sync
	// records travel inside the action stream, so skipping actions also
	// drops stats, draft and hero data; chat and leave records remain.
	SkipActions bool
	// SkipChat drops chat messages from the result.
	SkipChat bool
	// Relaxed downgrades unknown action opcodes from fatal errors to
	// diagnostics, skipping the rest of that player's command slice.
	Relaxed bool

	Translate TranslateFunc
	Log       LogFunc
	Resolver  CatalogResolver
}

// Parser decodes replay files. A Parser is stateless between calls and
// safe for concurrent use.
type Parser struct {
	opts Options
}

// NewParser creates a parser with the given options.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse reads and decodes the replay at path. The file is read under a
// shared lock so a replay still being written is not decoded half-way.
func (p *Parser) Parse(path string) (*Replay, error) {
	data, err := readLocked(path)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(data)
}

// ParseBytes decodes a replay already loaded into memory.
func (p *Parser) ParseBytes(data []byte) (*Replay, error) {
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if int(header.HeaderSize) > len(data) {
		return nil, newTruncatedDataError("file shorter than declared header size", len(data))
	}
	stream, err := decompressBlocks(data[header.HeaderSize:], header.BlockCount)
	if err != nil {
		return nil, err
	}
	d := newDecoder(header, stream, p.opts)
	return d.run()
}

// Parse decodes the replay at path with default options.
func Parse(path string) (*Replay, error) {
	return NewParser(Options{}).Parse(path)
}

func logf(log LogFunc, level LogLevel, format string, args ...interface{}) {
	if log != nil {
		log(level, fmt.Sprintf(format, args...))
	}
}
