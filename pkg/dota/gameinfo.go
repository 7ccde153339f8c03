package dota

import (
	"fmt"
	"strings"
)

// parseGameInfo decodes the startup prefix of the decompressed stream:
//
//	# | size     | content
//	--+----------+------------------------------------------
//	1 | 4 bytes  | unknown (0x00000110)
//	2 | variable | host player record
//	3 | variable | game name (null terminated)
//	4 | 1 byte   | null
//	5 | variable | encoded string: settings, map, creator
//	6 | 4 bytes  | slot count
//	7 | 4 bytes  | game type
//	8 | 4 bytes  | language id
//	9 | variable | additional player records
//	10| variable | game start record + slot records
//	11| 6 bytes  | random seed, select mode, start spots
//
// The catalog is resolved as soon as the map name is known, before any
// action is decoded.
func (d *decoder) parseGameInfo(r *byteReader) error {
	r.skip(4)

	host, err := d.parsePlayerRecord(r)
	if err != nil {
		return err
	}
	host.IsHost = true

	d.replay.Game.Name = r.cstring()
	r.skip(1)

	encoded := decodeEncodedString(r)
	settings, mapPath, creator := parseGameSettings(encoded)
	d.replay.Settings = settings
	d.replay.Game.MapPath = mapPath
	d.replay.Game.Creator = creator
	d.replay.Game.MapName = mapBaseName(mapPath)

	if v, ok := ModVersionFromMapName(d.replay.Game.MapName); ok {
		d.modVer = v
	}
	if d.opts.Resolver != nil {
		catalog, err := d.opts.Resolver.Resolve(d.replay.Game.MapName)
		if err != nil {
			return err
		}
		d.catalog = catalog
	}

	d.replay.Game.Slots = r.u32()
	d.replay.Game.Type = GameType(r.u8())
	d.replay.Game.PrivateGame = r.u8() != 0
	r.skip(6) // 2 reserved + language id

	for r.peek() == 0x16 {
		if _, err := d.parsePlayerRecord(r); err != nil {
			return err
		}
		r.skip(4)
	}

	// Game start record: record id, record length, slot record count.
	r.u8()
	r.u16()
	slotCount := r.u8()
	if r.err != nil {
		return r.err
	}
	if err := d.parseSlotRecords(r, int(slotCount)); err != nil {
		return err
	}

	d.replay.Game.RandomSeed = r.u32()
	d.replay.Game.SelectMode = SelectMode(r.u8())
	startSpots := r.u8()
	if startSpots != 0xCC {
		// Tournament replays from the ladder website omit this.
		d.replay.Game.StartSpotCount = &startSpots
	}
	return r.err
}

// parsePlayerRecord decodes one player record: record id (0x00 host,
// 0x16 additional), WC3 id, name, then either a custom-game null byte or
// the ladder runtime and race flags.
func (d *decoder) parsePlayerRecord(r *byteReader) (*Player, error) {
	r.u8() // record id
	id := r.u8()
	name := r.cstring()
	if r.err != nil {
		return nil, r.err
	}

	d.slotNames[id] = name
	if name == "" {
		name = fmt.Sprintf("Player %d", id)
	}

	p := &Player{ID: id, Name: name}
	// Every player starts with one zero-time action, which counts toward
	// the action total and the first activity bucket.
	if !d.opts.SkipActions {
		p.actions = append(p.actions, 0)
	}
	switch r.u8() {
	case 0x01:
		r.skip(1)
	case 0x08:
		p.RuntimeMs = r.u32()
		p.Race = raceFromFlags(r.u32())
	}
	if r.err != nil {
		return nil, r.err
	}

	// Tournament replays carry no build number; teams alternate by id.
	if d.header.BuildVersion == 0 {
		p.Team = (id - 1) % 2
	}

	d.playerCount++
	d.players[id] = p
	d.playerOrder = append(d.playerOrder, id)
	return p, nil
}

// Slot team 12 marks an observer.
const observerTeam = 12

// parseSlotRecords decodes the lobby slot table. Record width depends on
// the game version: handicap arrived with 1.07, AI strength with 1.03.
func (d *decoder) parseSlotRecords(r *byteReader, count int) error {
	for i := 0; i < count; i++ {
		playerID := r.u8()
		r.skip(1) // map download percent
		status := r.u8()
		computer := r.u8()
		team := r.u8()
		color := r.u8()
		r.u8() // race flags, superseded by action-stream detection
		var ai, handicap uint8
		if d.header.MajorVersion >= 3 {
			ai = r.u8()
		}
		if d.header.MajorVersion >= 7 {
			handicap = r.u8()
		}
		if r.err != nil {
			return r.err
		}

		dotaID := dotaIDFromColor(color)
		d.dotaIDToWc3[dotaID] = playerID

		// Empty and closed slots carry no player.
		if status != 0x02 || playerID == 0 {
			continue
		}
		p, ok := d.players[playerID]
		if !ok {
			continue
		}
		if team == observerTeam {
			// Observers act through their base record, which stays in
			// the player table without a mod id; the slot data lives on
			// a separate observer entry.
			obs := *p
			obs.IsObserver = true
			obs.Team = team
			obs.Color = color
			obs.IsComputer = computer == 0x01
			obs.AI = AIStrength(ai)
			obs.Handicap = handicap
			d.observers[playerID] = &obs
			continue
		}
		p.Team = team
		p.Color = color
		p.IsComputer = computer == 0x01
		p.AI = AIStrength(ai)
		p.Handicap = handicap
		p.DotaID = dotaID
	}
	return nil
}

// dotaIDFromColor maps a lobby color to the mod's player slot. The mod
// uses colors 1-5 for the Sentinel and 7-11 for the Scourge; red and
// green never hold a mod player.
func dotaIDFromColor(color uint8) int {
	switch color {
	case 1, 2, 3, 4, 5: // blue, teal, purple, yellow, orange
		return int(color)
	case 7, 8, 9, 10, 11: // pink, gray, lightblue, darkgreen, brown
		return int(color) - 1
	default:
		return 0
	}
}

// mapBaseName strips the directory and the 4-character extension from a
// map path.
func mapBaseName(path string) string {
	if i := strings.LastIndexByte(path, '\\'); i >= 0 {
		path = path[i+1:]
	}
	if len(path) > 4 && path[len(path)-4] == '.' {
		path = path[:len(path)-4]
	}
	return path
}
