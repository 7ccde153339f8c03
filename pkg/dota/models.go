package dota

import (
	"encoding/json"
	"fmt"
)

// GameSpeed is the host's game speed setting.
type GameSpeed uint8

const (
	SpeedSlow   GameSpeed = 0
	SpeedNormal GameSpeed = 1
	SpeedFast   GameSpeed = 2
)

func (s GameSpeed) String() string {
	switch s {
	case SpeedSlow:
		return "Slow"
	case SpeedNormal:
		return "Normal"
	case SpeedFast:
		return "Fast"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for GameSpeed.
func (s GameSpeed) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Visibility is the map visibility setting.
type Visibility uint8

const (
	VisibilityHideTerrain   Visibility = 0
	VisibilityMapExplored   Visibility = 1
	VisibilityAlwaysVisible Visibility = 2
	VisibilityDefault       Visibility = 3
)

func (v Visibility) String() string {
	switch v {
	case VisibilityHideTerrain:
		return "Hide Terrain"
	case VisibilityMapExplored:
		return "Map Explored"
	case VisibilityAlwaysVisible:
		return "Always Visible"
	case VisibilityDefault:
		return "Default"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for Visibility.
func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// ObserverSetting is the lobby observer configuration.
type ObserverSetting uint8

const (
	ObserversNone     ObserverSetting = 0
	ObserversOnDefeat ObserverSetting = 2
	ObserversFull     ObserverSetting = 3
	ObserversReferees ObserverSetting = 4
)

func (o ObserverSetting) String() string {
	switch o {
	case ObserversNone:
		return "No Observers"
	case ObserversOnDefeat:
		return "Observers on Defeat"
	case ObserversFull:
		return "Full Observers"
	case ObserversReferees:
		return "Referees"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for ObserverSetting.
func (o ObserverSetting) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// Race is the side a player fights on. The mod maps the two factions onto
// the Night Elf and Undead ladder races.
type Race uint8

const (
	RaceUnknown  Race = 0
	RaceSentinel Race = 1
	RaceScourge  Race = 2
)

func (r Race) String() string {
	switch r {
	case RaceSentinel:
		return "Sentinel"
	case RaceScourge:
		return "Scourge"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for Race.
func (r Race) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// raceFromFlags converts the ladder race flags dword to a Race.
func raceFromFlags(flags uint32) Race {
	switch flags {
	case 0x04, 0x44:
		return RaceSentinel
	case 0x08, 0x48:
		return RaceScourge
	default:
		return RaceUnknown
	}
}

// AIStrength is the computer slot difficulty.
type AIStrength uint8

const (
	AIEasy   AIStrength = 0
	AINormal AIStrength = 1
	AIInsane AIStrength = 2
)

func (a AIStrength) String() string {
	switch a {
	case AIEasy:
		return "Easy"
	case AINormal:
		return "Normal"
	case AIInsane:
		return "Insane"
	default:
		return "Unknown"
	}
}

// SelectMode is the lobby team/race selection mode.
type SelectMode uint8

func (m SelectMode) String() string {
	switch m {
	case 0x00:
		return "Team & race selectable"
	case 0x01:
		return "Team not selectable"
	case 0x03:
		return "Team & race not selectable"
	case 0x04:
		return "Race fixed to random"
	case 0xCC:
		return "Automated Match Making"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for SelectMode.
func (m SelectMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// GameType is the lobby game type byte.
type GameType uint8

func (t GameType) String() string {
	switch t {
	case 0x01:
		return "Ladder"
	case 0x09:
		return "Custom game"
	case 0x1D:
		return "Single player game"
	case 0x20:
		return "Ladder team game"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for GameType.
func (t GameType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ChatMode classifies a chat log entry. Beyond the wire modes (all, allies,
// observers, private) the decoder synthesizes entries for pause, resume,
// game save and player departure so the log reads as a timeline.
type ChatMode uint8

const (
	ChatAll ChatMode = iota
	ChatAllies
	ChatObservers
	ChatPrivate
	ChatPaused
	ChatResumed
	ChatSaved
	ChatLeft
)

func (m ChatMode) String() string {
	switch m {
	case ChatAll:
		return "All"
	case ChatAllies:
		return "Allies"
	case ChatObservers:
		return "Observers"
	case ChatPrivate:
		return "Private"
	case ChatPaused:
		return "Paused"
	case ChatResumed:
		return "Resumed"
	case ChatSaved:
		return "Saved"
	case ChatLeft:
		return "Left"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for ChatMode.
func (m ChatMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// EntityKind tags what a four-character entity code resolves to.
type EntityKind uint8

const (
	KindUnknown EntityKind = iota
	KindHero
	KindSkill
	KindUltimate
	KindStat
	KindItem
	KindUnit
	KindBuilding
	KindUpgrade
)

func (k EntityKind) String() string {
	switch k {
	case KindHero:
		return "hero"
	case KindSkill:
		return "skill"
	case KindUltimate:
		return "ultimate"
	case KindStat:
		return "stat"
	case KindItem:
		return "item"
	case KindUnit:
		return "unit"
	case KindBuilding:
		return "building"
	case KindUpgrade:
		return "upgrade"
	default:
		return "unknown"
	}
}

// EntityKindFromString parses a catalog type tag.
func EntityKindFromString(s string) EntityKind {
	switch s {
	case "HERO":
		return KindHero
	case "SKILL":
		return KindSkill
	case "ULTIMATE":
		return KindUltimate
	case "STAT":
		return KindStat
	case "ITEM":
		return KindItem
	case "UNIT":
		return KindUnit
	case "BUILDING":
		return KindBuilding
	case "UPGRADE":
		return KindUpgrade
	default:
		return KindUnknown
	}
}

// Entity is one catalog record: a hero, ability, item or trainable object
// keyed by its four-character code.
type Entity struct {
	Code        string     `json:"code"`
	Kind        EntityKind `json:"kind"`
	Name        string     `json:"name"`
	Art         string     `json:"art,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Cost        int        `json:"cost,omitempty"`
	ProperNames string     `json:"proper_names,omitempty"`
	Related     []string   `json:"related,omitempty"`
}

// Header is the replay container header: the fixed 48-byte record plus the
// version-discriminated sub-header.
//
//	offset | size | field
//	0x0000 |   28 | intro string "Warcraft III recorded game\0x1A\0"
//	0x001C |    4 | total header size
//	0x0020 |    4 | compressed file size
//	0x0024 |    4 | header version (0 or 1)
//	0x0028 |    4 | decompressed data size
//	0x002C |    4 | number of data blocks
type Header struct {
	HeaderSize       uint32 `json:"header_size"`
	CompressedSize   uint32 `json:"compressed_size"`
	HeaderVersion    uint32 `json:"header_version"`
	DecompressedSize uint32 `json:"decompressed_size"`
	BlockCount       uint32 `json:"block_count"`

	Ident        string `json:"ident"`
	MajorVersion uint32 `json:"major_version"`
	MinorVersion uint16 `json:"minor_version"`
	BuildVersion uint16 `json:"build_version"`
	Flags        uint16 `json:"flags"`
	LengthMs     uint32 `json:"length_ms"`
	Checksum     uint32 `json:"-"`
}

// IsExpansion reports whether the replay was recorded on the expansion.
func (h *Header) IsExpansion() bool {
	return h.Ident == "W3XP"
}

// VersionString returns the patch version as "1.major.minor".
func (h *Header) VersionString() string {
	return fmt.Sprintf("1.%d.%d", h.MajorVersion, h.MinorVersion)
}

// GameSettings is the host's lobby configuration, decoded from the encoded
// settings string.
type GameSettings struct {
	Speed             GameSpeed       `json:"speed"`
	Visibility        Visibility      `json:"visibility"`
	Observers         ObserverSetting `json:"observers"`
	TeamsTogether     bool            `json:"teams_together"`
	LockTeams         bool            `json:"lock_teams"`
	FullSharedControl bool            `json:"full_shared_control"`
	RandomHero        bool            `json:"random_hero"`
	RandomRaces       bool            `json:"random_races"`
}

// GameInfo is the startup metadata: lobby identity, map, slots and the
// game-start record.
type GameInfo struct {
	Name        string     `json:"name"`
	Creator     string     `json:"creator"`
	MapPath     string     `json:"map_path"`
	MapName     string     `json:"map_name"`
	Slots       uint32     `json:"slots"`
	Type        GameType   `json:"type"`
	PrivateGame bool       `json:"private"`
	RandomSeed  uint32     `json:"-"`
	SelectMode  SelectMode `json:"select_mode"`
	// StartSpotCount is nil when the record carries the 0xCC sentinel.
	StartSpotCount *uint8 `json:"start_spot_count,omitempty"`
}

// Hotkey tracks one control-group binding for a player.
type Hotkey struct {
	Assigned       int `json:"assigned"`
	Used           int `json:"used"`
	LastTotalItems int `json:"-"`
}

// Tally accumulates trained or acquired objects of one kind: a count per
// object name plus an order log keyed by game time.
type Tally struct {
	Counts map[string]int    `json:"counts,omitempty"`
	Order  map[uint32]string `json:"order,omitempty"`
}

func newTally() *Tally {
	return &Tally{Counts: make(map[string]int), Order: make(map[uint32]string)}
}

func (t *Tally) add(timeMs uint32, name string, n int) {
	t.Counts[name] += n
	if n > 1 {
		t.Order[timeMs] = fmt.Sprintf("%d %s", n, name)
	} else {
		t.Order[timeMs] = name
	}
}

// Player is one occupied lobby slot: WC3 lobby identity plus everything
// accumulated from the action stream and, after finalization, the mod
// stats resolved onto it.
type Player struct {
	ID         uint8 `json:"id"`
	Name       string `json:"name"`
	IsHost     bool   `json:"is_host"`
	IsComputer bool   `json:"is_computer"`
	IsObserver bool   `json:"is_observer"`
	Team       uint8  `json:"team"`
	Color      uint8  `json:"color"`
	Race       Race   `json:"race"`
	AI         AIStrength `json:"-"`
	Handicap   uint8  `json:"handicap,omitempty"`
	RuntimeMs  uint32 `json:"-"`

	// DotaID is the color-derived mod slot (1..10), 0 for observers.
	DotaID int `json:"dota_id,omitempty"`

	// TimeMs is the player's leave time, defaulted to the replay length
	// for players present at the end.
	TimeMs      uint32 `json:"time_ms"`
	LeaveResult string `json:"leave_result,omitempty"`

	ActionCount   int               `json:"action_count"`
	Activity      string            `json:"activity,omitempty"`
	ActionDetails map[string]int    `json:"action_details,omitempty"`
	Items         map[uint32]string `json:"items,omitempty"`

	Units     *Tally            `json:"units,omitempty"`
	Buildings *Tally            `json:"buildings,omitempty"`
	Upgrades  *Tally            `json:"upgrades,omitempty"`
	Heroes    *Tally            `json:"heroes,omitempty"`
	Hotkeys   map[uint8]*Hotkey `json:"hotkeys,omitempty"`

	Stats *PlayerStats `json:"stats,omitempty"`

	actions []uint32
}

// recordAction logs one action timestamp for activity accounting.
func (p *Player) recordAction(timeMs uint32) {
	p.actions = append(p.actions, timeMs)
}

func (p *Player) countActionDetail(detail string) {
	if p.ActionDetails == nil {
		p.ActionDetails = make(map[string]int)
	}
	p.ActionDetails[detail]++
}

// countAction records one counted action: a timestamp plus a detail
// bucket increment.
func (p *Player) countAction(timeMs uint32, detail string) {
	p.recordAction(timeMs)
	p.countActionDetail(detail)
}

func (p *Player) units() *Tally {
	if p.Units == nil {
		p.Units = newTally()
	}
	return p.Units
}

func (p *Player) buildings() *Tally {
	if p.Buildings == nil {
		p.Buildings = newTally()
	}
	return p.Buildings
}

func (p *Player) upgrades() *Tally {
	if p.Upgrades == nil {
		p.Upgrades = newTally()
	}
	return p.Upgrades
}

func (p *Player) heroes() *Tally {
	if p.Heroes == nil {
		p.Heroes = newTally()
	}
	return p.Heroes
}

func (p *Player) hotkey(group uint8) *Hotkey {
	if p.Hotkeys == nil {
		p.Hotkeys = make(map[uint8]*Hotkey)
	}
	hk, ok := p.Hotkeys[group]
	if !ok {
		hk = &Hotkey{}
		p.Hotkeys[group] = hk
	}
	return hk
}

// ChatEntry is one line of the reconstructed chat timeline.
type ChatEntry struct {
	TimeMs     uint32   `json:"time_ms"`
	PlayerID   uint8    `json:"player_id"`
	PlayerName string   `json:"player_name"`
	Mode       ChatMode `json:"mode"`
	// Target is the recipient slot for private messages.
	Target uint16 `json:"target,omitempty"`
	Text   string `json:"text"`
}

// Replay is the complete decoded result.
type Replay struct {
	Header   *Header       `json:"header"`
	Game     *GameInfo     `json:"game"`
	Settings *GameSettings `json:"settings"`

	Players   []*Player `json:"players"`
	Observers []*Player `json:"observers,omitempty"`
	Sentinel  []*Player `json:"sentinel,omitempty"`
	Scourge   []*Player `json:"scourge,omitempty"`

	Chat []*ChatEntry `json:"chat,omitempty"`

	// Mode is the short mode code announced by the map ("cm", "cd", ...).
	Mode   string `json:"mode,omitempty"`
	Draft  *Draft `json:"draft,omitempty"`
	Winner Race   `json:"winner"`

	// WinnerTeam / LoserTeam come from the leave records. 99 marks the
	// side that could not be determined; "tie" sets both to TeamTie.
	WinnerTeam int `json:"winner_team,omitempty"`
	LoserTeam  int `json:"loser_team,omitempty"`

	// Saver is the player whose client wrote the replay file.
	SaverID   uint8  `json:"saver_id,omitempty"`
	SaverName string `json:"saver_name,omitempty"`

	// Diagnostics collects soft decode anomalies (relaxed-mode skips,
	// dropped sync records).
	Diagnostics []string `json:"-"`
}

// TeamUnknown and TeamTie are sentinel values for WinnerTeam/LoserTeam.
const (
	TeamUnknown = 99
	TeamTie     = -1
)

// Player returns the player with the given WC3 id, or nil.
func (r *Replay) Player(id uint8) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	for _, p := range r.Observers {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the first player whose name matches exactly, or nil.
func (r *Replay) PlayerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ToJSON exports the replay.
func (r *Replay) ToJSON(indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}
