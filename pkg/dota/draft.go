package dota

// Draft caps for the pre-6.68 accounting, which counts bans and picks on
// the decoder instead of a mode object.
const (
	legacyDraftBans  = 8
	legacyDraftPicks = 10
)

// DraftPick is one banned or picked hero. Side is the lobby team of the
// captain who made the call (0 Sentinel, 1 Scourge).
type DraftPick struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Side int    `json:"side"`
}

// Draft is the exported drafting summary for mode games.
type Draft struct {
	Mode  string      `json:"mode"`
	Bans  []DraftPick `json:"bans,omitempty"`
	Picks []DraftPick `json:"picks,omitempty"`
}

// draftState tracks the drafting phase. Captains Mode starts with 3 bans
// per team and escalates to 5 when ban traffic continues after the first
// phase; Captains Draft uses 2 bans per team. Older mod versions have no
// phases, so bans and picks are also counted directly on the decoder
// (the legacy slices).
type draftState struct {
	shortMode   string
	active      bool
	isCD        bool
	bansPerTeam int

	bans  []DraftPick
	picks []DraftPick

	legacyBans  []DraftPick
	legacyPicks []DraftPick

	inPickMode bool
	picksNum   int
}

func newDraftState() *draftState {
	return &draftState{}
}

// activate instantiates the mode announced by the map. Modes other than
// cm/cd carry no draft machinery.
func (s *draftState) activate(short string) {
	s.shortMode = short
	switch short {
	case "cm":
		s.active = true
		s.isCD = false
		s.bansPerTeam = 3
	case "cd":
		s.active = true
		s.isCD = true
		s.bansPerTeam = 2
	}
}

// banPhaseComplete reports whether both teams used up the current ban
// allowance.
func (s *draftState) banPhaseComplete() bool {
	return len(s.bans) >= s.bansPerTeam*2
}

func (s *draftState) addBan(p DraftPick)  { s.bans = append(s.bans, p) }
func (s *draftState) addPick(p DraftPick) { s.picks = append(s.picks, p) }

// export merges the mode accounting with the legacy slices: direct
// counts win when present, matching how older replays were decoded.
func (s *draftState) export() *Draft {
	bans := s.legacyBans
	picks := s.legacyPicks
	if s.active {
		if len(bans) == 0 {
			bans = s.bans
		}
		if len(picks) == 0 {
			picks = s.picks
		}
	}
	if s.shortMode == "" && len(bans) == 0 && len(picks) == 0 {
		return nil
	}
	return &Draft{Mode: s.shortMode, Bans: bans, Picks: picks}
}
