package dota

// Skill duplication window. The mod re-broadcasts learn events; anything
// inside the window is the same click.
const duplicateSkillWindowMs = 200

// A hero never learns more than 25 skill levels.
const maxHeroSkills = 25

// Codes for the shared attribute-bonus skills. Their combined level is
// capped at 10.
const (
	skillAttributeBonus    = "Aamk"
	skillAttributeBonusAlt = "A0NR"
)

// SkillEvent is one learned skill level.
type SkillEvent struct {
	TimeMs uint32 `json:"time_ms"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

// ActivatedHero is a hero that appeared in the game, with its learned
// skill build. One instance exists per hero name; swaps move the
// instance between players.
type ActivatedHero struct {
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Skills []SkillEvent `json:"skills,omitempty"`

	lastSkilledMs uint32
	attributeLvls int
}

func newActivatedHero(e *Entity) *ActivatedHero {
	return &ActivatedHero{Code: e.Code, Name: e.Name}
}

// learnSkill records one skill level, dropping duplicated broadcasts and
// enforcing the level caps.
func (h *ActivatedHero) learnSkill(skill *Entity, timeMs uint32) {
	if h.attributeLvls >= 10 &&
		(skill.Code == skillAttributeBonus || skill.Code == skillAttributeBonusAlt) {
		return
	}
	if timeMs-h.lastSkilledMs < duplicateSkillWindowMs {
		return
	}
	h.lastSkilledMs = timeMs
	if len(h.Skills) >= maxHeroSkills {
		return
	}
	h.Skills = append(h.Skills, SkillEvent{TimeMs: timeMs, Code: skill.Code, Name: skill.Name})
	if skill.Code == skillAttributeBonus || skill.Code == skillAttributeBonusAlt {
		h.attributeLvls++
	}
}

// Level is the number of learned skill levels.
func (h *ActivatedHero) Level() int {
	return len(h.Skills)
}

// pendingSkill is a learn event seen before its target hero was known.
type pendingSkill struct {
	skill    *Entity
	timeMs   uint32
	heroCode string
}

// PlayerStats is the end-game scoreboard the mod broadcasts for one mod
// player id, plus the hero and skill build reconstructed from the
// action stream.
type PlayerStats struct {
	ModID       int            `json:"mod_id"`
	HeroKills   uint32         `json:"hero_kills"`
	Deaths      uint32         `json:"deaths"`
	CreepKills  uint32         `json:"creep_kills"`
	CreepDenies uint32         `json:"creep_denies"`
	Assists     uint32         `json:"assists"`
	EndGold     uint32         `json:"end_gold"`
	Neutrals    uint32         `json:"neutrals"`
	Inventory   [6]string      `json:"inventory"`
	ArrowTotal  uint32         `json:"arrow_total,omitempty"`
	ArrowHits   uint32         `json:"arrow_hits,omitempty"`
	HookTotal   uint32         `json:"hook_total,omitempty"`
	HookHits    uint32         `json:"hook_hits,omitempty"`
	Hero        *ActivatedHero `json:"hero,omitempty"`

	delayedSkills []pendingSkill
	// levelCap tracks the level broadcast. It is kept for reference but
	// not enforced: id reuse and timing make it unreliable as a guard.
	levelCap int
}

func newPlayerStats(modID int) *PlayerStats {
	return &PlayerStats{ModID: modID, levelCap: 1}
}

func (s *PlayerStats) setHero(h *ActivatedHero) {
	s.Hero = h
}

// addDelayedSkill queues a learn event until the owning hero is known.
func (s *PlayerStats) addDelayedSkill(skill *Entity, timeMs uint32, heroCode string) {
	s.delayedSkills = append(s.delayedSkills, pendingSkill{skill: skill, timeMs: timeMs, heroCode: heroCode})
}

// processDelayedSkills applies queued learn events that belong to the
// hero this player ended up with. Events for other heroes are dropped.
func (s *PlayerStats) processDelayedSkills() {
	if s.Hero == nil {
		return
	}
	for _, el := range s.delayedSkills {
		if s.Hero.Code == el.heroCode {
			s.Hero.learnSkill(el.skill, el.timeMs)
		}
	}
	s.delayedSkills = nil
}
