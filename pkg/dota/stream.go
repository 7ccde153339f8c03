package dota

import "fmt"

// Sync block opcodes of the decompressed stream.
const (
	blockTerminator  = 0x00
	blockLeaveGame   = 0x17
	blockStartA      = 0x1A
	blockStartB      = 0x1B
	blockStartC      = 0x1C
	blockTimeSlotOld = 0x1E
	blockTimeSlot    = 0x1F
	blockChat        = 0x20
	blockChecksum    = 0x22
	blockPreLeave    = 0x23
	blockForcedEnd   = 0x2F
)

// decoder carries all state of one decode run: the replay under
// construction, the game clock, the identity tables of the three id
// spaces and the draft/stat machinery fed by sync records.
type decoder struct {
	header *Header
	opts   Options
	stream []byte

	replay  *Replay
	catalog ContentCatalog
	modVer  ModVersion

	players   map[uint8]*Player
	observers map[uint8]*Player
	// slotNames keeps every lobby name by WC3 id for the post-shuffle
	// rename during finalization.
	slotNames   map[uint8]string
	playerOrder []uint8
	playerCount int

	timeMs       uint32
	paused       bool
	leaves       int
	leaveUnknown int64

	// dotaIDToWc3 maps the color-derived mod slot to the WC3 id that
	// held it in the lobby.
	dotaIDToWc3 map[int]uint8
	// slotToMod maps a sync-record channel slot to the announced mod id.
	slotToMod map[int]int
	// modToInternal maps a mod id back to its sync channel.
	modToInternal map[int]int

	stats            map[int]*PlayerStats
	activatedHeroes  map[string]*ActivatedHero
	preAnnouncePick  map[int]*Entity
	// preAnnounceSkill keeps the latest learn event per mod id seen
	// before that id was announced; only the last one survives.
	preAnnounceSkill map[int]pendingSkill

	draft        *draftState
	scratch      map[uint8]*playerScratch
	previousPick string
}

func newDecoder(header *Header, stream []byte, opts Options) *decoder {
	return &decoder{
		header: header,
		opts:   opts,
		stream: stream,
		replay: &Replay{
			Header:   header,
			Game:     &GameInfo{},
			Settings: &GameSettings{},
		},
		players:          make(map[uint8]*Player),
		observers:        make(map[uint8]*Player),
		slotNames:        make(map[uint8]string),
		dotaIDToWc3:      make(map[int]uint8),
		slotToMod:        make(map[int]int),
		modToInternal:    make(map[int]int),
		stats:            make(map[int]*PlayerStats),
		activatedHeroes:  make(map[string]*ActivatedHero),
		preAnnouncePick:  make(map[int]*Entity),
		preAnnounceSkill: make(map[int]pendingSkill),
		draft:            newDraftState(),
		scratch:          make(map[uint8]*playerScratch),
	}
}

func (d *decoder) run() (*Replay, error) {
	r := newByteReader(d.stream)
	if err := d.parseGameInfo(r); err != nil {
		return nil, err
	}
	if err := d.parseSyncBlocks(r); err != nil {
		return nil, err
	}
	d.finalize()
	return d.replay, nil
}

func (d *decoder) t(s string) string {
	if d.opts.Translate != nil {
		return d.opts.Translate(s)
	}
	return s
}

func (d *decoder) logf(level LogLevel, format string, args ...interface{}) {
	logf(d.opts.Log, level, format, args...)
}

func (d *decoder) diag(msg string) {
	d.replay.Diagnostics = append(d.replay.Diagnostics, msg)
	d.logf(LogWarn, "%s", msg)
}

// player returns the playing or observing slot for a WC3 id.
func (d *decoder) player(id uint8) *Player {
	if p, ok := d.players[id]; ok {
		return p
	}
	return d.observers[id]
}

func (d *decoder) playerName(id uint8) string {
	if p := d.player(id); p != nil {
		return p.Name
	}
	return ""
}

// parseSyncBlocks walks the sync block sequence after the game-info
// prefix: time slots carrying the action stream, chat, leave records and
// a handful of fixed-size service blocks. A zero opcode terminates the
// stream; anything unrecognized is fatal since the framing gives no way
// to resynchronize.
func (d *decoder) parseSyncBlocks(r *byteReader) error {
	prev := uint8(0x01)
	for !r.done() {
		blockStart := r.pos
		op := r.u8()

		switch op {
		case blockTimeSlotOld, blockTimeSlot:
			length := r.u16()
			timeInc := r.u16()
			if !d.paused {
				d.timeMs += uint32(timeInc)
			}
			if length > 2 {
				payload := r.bytes(int(length) - 2)
				if r.err != nil {
					return r.err
				}
				if !d.opts.SkipActions {
					if err := d.parseActions(payload, blockStart+5); err != nil {
						return err
					}
				}
			}

		case blockChat:
			// Before 1.03 this opcode carried the checksum block.
			if d.header.MajorVersion > 2 {
				if err := d.parseChat(r, blockStart); err != nil {
					return err
				}
				break
			}
			length := r.u8()
			r.skip(int(length))

		case blockChecksum:
			length := r.u8()
			r.skip(int(length))

		case blockStartA, blockStartB, blockStartC:
			r.skip(4)

		case blockPreLeave:
			r.skip(10)

		case blockForcedEnd:
			r.skip(8)

		case blockLeaveGame:
			d.parseLeave(r)

		case blockTerminator:
			return r.err

		default:
			return newUnknownBlockError(op, prev, blockStart, d.timeMs)
		}

		if r.err != nil {
			return r.err
		}
		prev = op
	}
	return nil
}

// parseChat decodes one chat block. The record length counts from the
// flags byte, and the text window depends on the flags: mode-carrying
// messages (0x20) have a two-byte mode before the text, delivery
// messages (0x10) do not.
func (d *decoder) parseChat(r *byteReader, blockStart int) error {
	playerID := r.u8()
	length := r.u16()
	flags := r.u8()
	if r.err != nil {
		return r.err
	}

	entry := &ChatEntry{
		TimeMs:     d.timeMs,
		PlayerID:   playerID,
		PlayerName: d.playerName(playerID),
	}
	switch flags {
	case 0x20:
		// The wire mode field is 4 bytes; only the low half carries data.
		mode := r.u16()
		r.skip(2)
		text := r.bytes(int(length) - 6)
		if r.err != nil {
			return r.err
		}
		entry.Text = string(text)
		switch mode {
		case 0x00:
			entry.Mode = ChatAll
		case 0x01:
			entry.Mode = ChatAllies
		case 0x02:
			entry.Mode = ChatObservers
		case 0xFE:
			entry.Mode = ChatPaused
		case 0xFF:
			entry.Mode = ChatResumed
		default:
			entry.Mode = ChatPrivate
			entry.Target = mode - 2
		}
	case 0x10:
		// Delivery notices: present in the stream but invisible when
		// watching the replay. Two unknown bytes instead of a mode.
		r.skip(2)
		text := r.bytes(int(length) - 3)
		if r.err != nil {
			return r.err
		}
		entry.Text = string(text)
		entry.Mode = ChatAll
	default:
		d.diag(fmt.Sprintf("chat block with unknown flags 0x%02X", flags))
		entry = nil
	}

	// The record occupies length+4 bytes from the opcode regardless of
	// how much the flags branch consumed.
	end := blockStart + int(length) + 4
	if end < r.pos || end > len(r.data) {
		return newTruncatedDataError("chat block overruns stream", blockStart)
	}
	r.pos = end

	if entry != nil && !d.opts.SkipChat {
		d.replay.Chat = append(d.replay.Chat, entry)
	}
	return nil
}

// leaveEffect is the side effect a leave record has on the game result.
type leaveEffect uint8

const (
	effectNone leaveEffect = iota
	effectLeaverLost
	effectLeaverWon
	effectTie
	effectSaverLost
	effectSaverWon
	effectNobodyLost
	effectNobodyWon
)

type leaveOutcome struct {
	text   string
	effect leaveEffect
}

// Outcome tables per leave reason. 0x01 is a connection-level departure;
// 0x0C is a result broadcast, interpreted differently depending on
// whether the replay saver is already known.
var (
	leaveRemote = map[uint32]leaveOutcome{
		0x01: {"Disconnect", effectNone},
		0x07: {"Left", effectNone},
		0x08: {"Finished", effectLeaverLost},
		0x09: {"Finished", effectLeaverWon},
		0x0A: {"Finished", effectTie},
		0x0B: {"Left", effectNone},
	}
	leaveSaverKnown = map[uint32]leaveOutcome{
		0x01: {"Disconnect", effectNone},
		0x07: {"Finished", effectNone},
		0x08: {"Finished", effectSaverLost},
		0x09: {"Finished", effectSaverWon},
	}
	leaveSaverUnknown = map[uint32]leaveOutcome{
		0x01: {"Disconnect", effectNone},
		0x07: {"Finished", effectNobodyLost},
		0x08: {"Finished", effectLeaverWon},
		0x09: {"Finished", effectNobodyWon},
		0x0A: {"Finished", effectTie},
	}
)

// parseLeave decodes a leave record, updates the leaver, derives the
// winner/loser teams from the outcome tables and appends a synthetic
// chat entry so departures show up in the timeline.
func (d *decoder) parseLeave(r *byteReader) {
	reason := r.u32()
	playerID := r.u8()
	result := r.u32()
	unknown := r.u32()
	if r.err != nil {
		return
	}

	d.leaves++
	p := d.player(playerID)
	if p != nil {
		p.TimeMs = d.timeMs
	}

	if d.leaveUnknown != 0 {
		d.leaveUnknown = int64(unknown) - d.leaveUnknown
	}

	// The last record of the stream belongs to the client that saved
	// the replay.
	if d.leaves == d.playerCount {
		d.replay.SaverID = playerID
		d.replay.SaverName = d.playerName(playerID)
	}

	var outcome leaveOutcome
	known := false
	saverID := d.replay.SaverID
	switch {
	case reason == 0x01:
		outcome, known = leaveRemote[result]
	case reason == 0x0C && saverID != 0:
		outcome, known = leaveSaverKnown[result]
		// Result broadcast without a regular outcome code. Not covered
		// by the format description but holds up in practice: a
		// positive counter delta marks the saver's side as the winner.
		if !known && result == 0x0B && d.leaveUnknown > 0 {
			outcome, known = leaveOutcome{"Finished", effectSaverWon}, true
		}
	case reason == 0x0C:
		outcome, known = leaveSaverUnknown[result]
	}

	if known {
		switch outcome.effect {
		case effectLeaverLost:
			if p != nil {
				d.replay.LoserTeam = int(p.Team)
			}
		case effectLeaverWon:
			if p != nil {
				d.replay.WinnerTeam = int(p.Team)
			}
		case effectTie:
			d.replay.WinnerTeam = TeamTie
			d.replay.LoserTeam = TeamTie
		case effectSaverLost:
			if sp := d.player(saverID); sp != nil {
				d.replay.LoserTeam = int(sp.Team)
			}
		case effectSaverWon:
			if sp := d.player(saverID); sp != nil {
				d.replay.WinnerTeam = int(sp.Team)
			}
		case effectNobodyLost:
			d.replay.LoserTeam = TeamUnknown
		case effectNobodyWon:
			d.replay.WinnerTeam = TeamUnknown
		}

		text := d.t(outcome.text)
		if p != nil {
			p.LeaveResult = text
		}
		if !d.opts.SkipChat {
			d.replay.Chat = append(d.replay.Chat, &ChatEntry{
				TimeMs:     d.timeMs,
				PlayerID:   playerID,
				PlayerName: d.playerName(playerID),
				Mode:       ChatLeft,
				Text:       text,
			})
		}
	} else {
		d.diag(fmt.Sprintf("leave record without outcome: reason 0x%02X result 0x%02X player %d",
			reason, result, playerID))
	}

	d.leaveUnknown = int64(unknown)
}
