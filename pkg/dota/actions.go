package dota

import (
	"encoding/binary"
	"fmt"
)

// Action detail buckets.
const (
	actAbility      = "ability"
	actBuildTrain   = "buildtrain"
	actRightClick   = "rightclick"
	actBasic        = "basic"
	actSelect       = "select"
	actAssignHotkey = "assignhotkey"
	actSelectHotkey = "selecthotkey"
	actSubgroup     = "subgroup"
	actEsc          = "esc"
	actHeroMenu     = "heromenu"
	actBuildMenu    = "buildmenu"
	actItem         = "item"
	actRemoveUnit   = "removeunit"
)

// Repeated click suppression window for train/upgrade commands.
const actionDelayMs = 1000

// Worker codes exempt from the train dedup window: workers are queued
// rapid-fire at game start.
var earlyQueueWorkers = map[string]bool{
	"hpea": true, "ewsp": true, "opeo": true, "uaco": true,
}

// playerScratch is the per-player action-machine state that survives
// across command blocks: the selection multiplier, dedup timestamps and
// the last trained code.
type playerScratch struct {
	unitsMultiplier int
	lastCode        string

	unitsDedupMs    uint32
	upgradesDedupMs uint32

	cancelUnitMs      uint32
	cancelUnitCode    string
	cancelUpgradeMs   uint32
	cancelUpgradeCode string

	raceDetected bool
}

func (d *decoder) scratchFor(pid uint8) *playerScratch {
	s, ok := d.scratch[pid]
	if !ok {
		s = &playerScratch{}
		d.scratch[pid] = s
	}
	return s
}

// actionPlayer returns the accumulating slot for an acting player id,
// creating a placeholder for ids never seen in the lobby. Observers act
// through their pre-slot record, which carries no mod id, so their
// activity is dropped during finalization.
func (d *decoder) actionPlayer(pid uint8) *Player {
	if p, ok := d.players[pid]; ok {
		return p
	}
	p := &Player{ID: pid}
	d.players[pid] = p
	return p
}

// parseActions walks one time slot's command payload: a sequence of
// player blocks (player id, length, actions), each holding a run of
// action opcodes.
func (d *decoder) parseActions(payload []byte, baseOffset int) error {
	// Selection state shared by consecutive blocks of a time slot.
	wasSubgroup := false

	pos := 0
	for pos+3 <= len(payload) {
		pid := payload[pos]
		length := int(binary.LittleEndian.Uint16(payload[pos+1:]))
		end := pos + 3 + length
		if end > len(payload) {
			return newTruncatedDataError("player command block overruns time slot", baseOffset+pos)
		}
		err := d.parsePlayerBlock(pid, payload[pos+3:end], baseOffset+pos+3, &wasSubgroup)
		if err != nil {
			return err
		}
		pos = end
	}
	return nil
}

func (d *decoder) parsePlayerBlock(pid uint8, block []byte, baseOffset int, wasSubgroup *bool) error {
	p := d.actionPlayer(pid)
	sc := d.scratchFor(pid)
	newEra := d.header.BuildVersion >= 6040 || d.header.MajorVersion > 14

	wasDeselect := false
	wasSubupdate := false
	prev := uint8(0)

	i := 0
	for i < len(block) {
		op := block[i]
		switch op {

		case 0x01: // pause
			d.paused = true
			i++
		case 0x02: // resume
			d.paused = false
			i++
		case 0x03: // set game speed
			i += 2
		case 0x04, 0x05: // cycle game speed
			i++

		case 0x06: // save game
			i++
			for i < len(block) && block[i] != 0 {
				i++
			}
			i++
			if !d.opts.SkipChat {
				d.replay.Chat = append(d.replay.Chat, &ChatEntry{
					TimeMs:     d.timeMs,
					PlayerID:   pid,
					PlayerName: p.Name,
					Mode:       ChatSaved,
					Text:       d.t("Save game."),
				})
			}

		case 0x07: // save finished
			i += 5

		case 0x10: // unit/building ability
			p.recordAction(d.timeMs)
			if d.header.MajorVersion >= 13 {
				i++
			}
			if i+6 > len(block) {
				return newTruncatedDataError("ability action truncated", baseOffset+i)
			}
			code := reverseCode(block[i+2 : i+6])
			d.handleTargetlessAbility(p, sc, code, block[i+2], block[i+3])
			i += 14

		case 0x11: // ability with target position
			if d.header.MajorVersion >= 13 {
				i++
			}
			if i+6 > len(block) {
				return newTruncatedDataError("targeted ability truncated", baseOffset+i)
			}
			if block[i+2] <= 0x19 && block[i+3] == 0x00 {
				p.countAction(d.timeMs, actBasic)
			} else {
				p.countAction(d.timeMs, actAbility)
			}
			code := reverseCode(block[i+2 : i+6])
			if e := d.lookupEntity(code); e != nil && e.Kind == KindBuilding && isEntityCode(code) {
				p.buildings().add(d.timeMs, e.Name, 1)
			}
			i += 22

		case 0x12: // ability with target position and object
			if d.header.MajorVersion >= 13 {
				i++
			}
			if i+4 > len(block) {
				return newTruncatedDataError("targeted ability truncated", baseOffset+i)
			}
			switch {
			case block[i+2] == 0x03 && block[i+3] == 0x00:
				p.countAction(d.timeMs, actRightClick)
			case block[i+2] <= 0x19 && block[i+3] == 0x00:
				p.countAction(d.timeMs, actBasic)
			default:
				p.countAction(d.timeMs, actAbility)
			}
			i += 30

		case 0x13: // give or drop item
			if d.header.MajorVersion >= 13 {
				i++
			}
			p.countAction(d.timeMs, actItem)
			i += 38

		case 0x14: // ability with two targets
			if d.header.MajorVersion >= 13 {
				i++
			}
			if i+4 > len(block) {
				return newTruncatedDataError("targeted ability truncated", baseOffset+i)
			}
			switch {
			case block[i+2] == 0x03 && block[i+3] == 0x00:
				p.countAction(d.timeMs, actRightClick)
			case block[i+2] <= 0x19 && block[i+3] == 0x00:
				p.countAction(d.timeMs, actBasic)
			default:
				p.countAction(d.timeMs, actAbility)
			}
			i += 43

		case 0x16: // change selection
			if i+4 > len(block) {
				return newTruncatedDataError("selection action truncated", baseOffset+i)
			}
			mode := block[i+1]
			num := int(binary.LittleEndian.Uint16(block[i+2:]))
			if mode == 0x02 || !wasDeselect {
				p.countAction(d.timeMs, actSelect)
			}
			wasDeselect = mode == 0x02
			sc.unitsMultiplier = num
			i += 4 + num*8

		case 0x17: // assign group hotkey
			if i+4 > len(block) {
				return newTruncatedDataError("hotkey action truncated", baseOffset+i)
			}
			p.countAction(d.timeMs, actAssignHotkey)
			group := block[i+1]
			num := int(binary.LittleEndian.Uint16(block[i+2:]))
			hk := p.hotkey(group)
			hk.Assigned++
			hk.LastTotalItems = num
			i += 4 + num*8

		case 0x18: // select group hotkey
			if i+2 > len(block) {
				return newTruncatedDataError("hotkey action truncated", baseOffset+i)
			}
			p.countAction(d.timeMs, actSelectHotkey)
			hk := p.hotkey(block[i+1])
			hk.Used++
			sc.unitsMultiplier = hk.LastTotalItems
			i += 3

		case 0x19: // select subgroup
			if newEra {
				if *wasSubgroup {
					p.countAction(d.timeMs, actSubgroup)
					// Mixed-type building groups give no better hint.
					sc.unitsMultiplier = 1
				}
				i += 13
			} else {
				if i+2 > len(block) {
					return newTruncatedDataError("subgroup action truncated", baseOffset+i)
				}
				b := block[i+1]
				if b != 0 && b != 0xFF && !wasSubupdate {
					p.countAction(d.timeMs, actSubgroup)
				}
				wasSubupdate = b == 0xFF
				i += 2
			}

		case 0x1A: // pre-subselection / scenario trigger
			if newEra {
				// New blocks open with 0x19, so a leading 0x1A also
				// marks a subgroup change.
				*wasSubgroup = prev == 0x19 || prev == 0
				i++
			} else {
				i += 10
			}

		case 0x1B: // scenario trigger / select ground item
			if !newEra {
				p.recordAction(d.timeMs)
			}
			i += 10

		case 0x1C: // select ground item / cancel hero revival
			p.recordAction(d.timeMs)
			if newEra {
				i += 10
			} else {
				i += 9
			}

		case 0x1D, 0x1E: // cancel revival / remove from queue
			if newEra && op != 0x1E {
				p.recordAction(d.timeMs)
				i += 9
			} else {
				if i+6 > len(block) {
					return newTruncatedDataError("queue removal truncated", baseOffset+i)
				}
				p.countAction(d.timeMs, actRemoveUnit)
				d.handleQueueRemoval(p, sc, reverseCode(block[i+2:i+6]))
				i += 6
			}

		case 0x21: // found in 1.04/1.05
			i += 9

		case 0x50: // change ally options
			i += 6
		case 0x51: // transfer resources
			i += 10

		case 0x60: // map trigger chat command
			i += 9
			start := i
			for i < len(block) && block[i] != 0 {
				i++
			}
			d.logf(LogDebug, "trigger chat command %q at %dms", string(block[start:i]), d.timeMs)
			i++

		case 0x61: // esc
			p.countAction(d.timeMs, actEsc)
			i++

		case 0x62: // scenario trigger
			if d.header.MajorVersion >= 7 {
				i += 13
			} else {
				i += 9
			}

		case 0x65, 0x66: // hero skill submenu
			p.countAction(d.timeMs, actHeroMenu)
			i++

		case 0x67: // building submenu / minimap ping on old patches
			if d.header.MajorVersion >= 7 {
				p.countAction(d.timeMs, actBuildMenu)
				i++
			} else {
				i += 13
			}

		case 0x68: // minimap ping
			i += 13

		case 0x69, 0x6A: // continue game
			i += 17

		case 0x6B: // sync stored integer
			next, err := d.parseCacheAction(block, i, baseOffset)
			if err != nil {
				return err
			}
			i = next

		case 0x70: // legacy winner broadcast, 6.39 only
			i += 28

		case 0x75:
			i += 2

		default:
			if !d.opts.Relaxed {
				return newUnknownActionError(op, prev, baseOffset+i, d.timeMs)
			}
			d.diag(fmt.Sprintf("unknown action 0x%02X (prev 0x%02X) from player %d at %dms, skipping block",
				op, prev, pid, d.timeMs))
			return nil
		}
		prev = op
	}
	return nil
}

// handleTargetlessAbility classifies a parameterless ability: resolved
// codes are train/build commands dispatched by entity kind, unresolved
// ones count as plain ability use.
func (d *decoder) handleTargetlessAbility(p *Player, sc *playerScratch, code string, b0, b1 uint8) {
	e := d.lookupEntity(code)
	if e == nil {
		p.countActionDetail(actAbility)
		// Obsidian Statue upgrade replaces the unit in place.
		if b0 == 0x33 && b1 == 0x02 {
			name := d.entityName("ubsp")
			p.units().add(d.timeMs, name, sc.unitsMultiplier)
			p.units().Counts[d.entityName("uobs")] -= sc.unitsMultiplier
		}
		return
	}

	p.countActionDetail(actBuildTrain)
	if !sc.raceDetected {
		if race := raceFromWorkerCode(code); race != RaceUnknown {
			p.Race = race
			sc.raceDetected = true
		}
	}

	switch e.Kind {
	case KindHero:
		d.handleHeroAction(p, e)
	case KindSkill, KindUltimate, KindStat:
		d.handleSkillAction(p, e)
	case KindItem:
		if p.Items == nil {
			p.Items = make(map[uint32]string)
		}
		p.Items[d.timeMs] = e.Name
	case KindUpgrade:
		if d.timeMs-sc.upgradesDedupMs > actionDelayMs || code != sc.lastCode {
			sc.upgradesDedupMs = d.timeMs
			p.upgrades().add(d.timeMs, e.Name, 1)
		}
	case KindUnit:
		if d.timeMs-sc.unitsDedupMs > actionDelayMs || code != sc.lastCode ||
			(earlyQueueWorkers[code] && d.timeMs-sc.unitsDedupMs > 0) {
			sc.unitsDedupMs = d.timeMs
			p.units().add(d.timeMs, e.Name, sc.unitsMultiplier)
		}
	case KindBuilding:
		p.buildings().add(d.timeMs, e.Name, 1)
	default:
		d.diag(fmt.Sprintf("%s: unclassified entity %s at %dms", p.Name, code, d.timeMs))
	}
	sc.lastCode = code
}

// handleHeroAction feeds a hero activation into the draft when a pick
// phase is running.
func (d *decoder) handleHeroAction(p *Player, e *Entity) {
	ds := d.draft
	if !ds.inPickMode {
		return
	}
	// The same pick is re-broadcast; ignore the echo.
	if d.previousPick == e.Name {
		return
	}

	pick := DraftPick{Code: e.Code, Name: e.Name, Side: int(p.Team)}
	if d.modVer.AtLeast(6, 68) {
		// Pick actions observed during banning belong to the captains
		// browsing, not to the draft.
		if !ds.banPhaseComplete() {
			return
		}
		// Phase one of the split draft ends at six picks; everything
		// until the next ban wave is noise.
		if ds.bansPerTeam == 3 && len(ds.picks) >= 6 {
			return
		}
		ds.addPick(pick)
		ds.picksNum++
	} else {
		if len(ds.legacyBans) < legacyDraftBans {
			return
		}
		ds.legacyPicks = append(ds.legacyPicks, pick)
		ds.picksNum++
	}
	d.previousPick = e.Name

	if ds.picksNum >= legacyDraftPicks {
		d.paused = false
		ds.inPickMode = false
	}
}

// handleSkillAction routes a learn event to the hero it belongs to. The
// target can be unknown three ways: the player's mod id is not announced
// yet (pre-announce), the player has no hero yet (delayed), or the skill
// belongs to a hero the player does not own (applied to that hero's
// instance directly, covering swaps in flight).
func (d *decoder) handleSkillAction(p *Player, skill *Entity) {
	heroCode, heroName := d.skillOwner(skill)
	pid := p.DotaID

	st, ok := d.stats[pid]
	if !ok {
		d.logf(LogDebug, "skill before id announcement for mod slot %d", pid)
		d.preAnnounceSkill[pid] = pendingSkill{skill: skill, timeMs: d.timeMs, heroCode: heroCode}
		return
	}
	if st.Hero == nil {
		st.addDelayedSkill(skill, d.timeMs, heroCode)
		return
	}
	universal := skill.Code == skillAttributeBonusAlt || heroName == "Common"
	if universal || heroName == st.Hero.Name {
		st.Hero.learnSkill(skill, d.timeMs)
		return
	}
	// Skilling a hero the player does not own.
	if h, ok := d.activatedHeroes[heroName]; ok {
		h.learnSkill(skill, d.timeMs)
	}
}

// handleQueueRemoval decrements the tally the canceled command had
// incremented. Cancellations are re-broadcast like trains, so units and
// upgrades get the same dedup window.
func (d *decoder) handleQueueRemoval(p *Player, sc *playerScratch, code string) {
	e := d.lookupEntity(code)
	if e == nil {
		return
	}
	switch e.Kind {
	case KindUnit:
		if d.timeMs-sc.cancelUnitMs > actionDelayMs || code != sc.cancelUnitCode {
			sc.cancelUnitMs = d.timeMs
			sc.cancelUnitCode = code
			p.units().Order[d.timeMs] = "-1 " + e.Name
			p.units().Counts[e.Name]--
		}
	case KindBuilding:
		p.buildings().Counts[e.Name]--
	case KindHero:
		p.heroes().Counts[e.Name]--
	case KindUpgrade:
		if d.timeMs-sc.cancelUpgradeMs > actionDelayMs || code != sc.cancelUpgradeCode {
			sc.cancelUpgradeMs = d.timeMs
			sc.cancelUpgradeCode = code
			p.upgrades().Counts[e.Name]--
		}
	}
}

func (d *decoder) lookupEntity(code string) *Entity {
	if d.catalog == nil {
		return nil
	}
	if e, ok := d.catalog.Lookup(code); ok {
		return e
	}
	return nil
}

// entityName resolves a code to its display name, falling back to the
// code itself.
func (d *decoder) entityName(code string) string {
	if e := d.lookupEntity(code); e != nil {
		return e.Name
	}
	return code
}

// skillOwner resolves the hero a skill belongs to. Unowned codes apply
// to whatever hero the player has.
func (d *decoder) skillOwner(skill *Entity) (code, name string) {
	if d.catalog != nil {
		if heroCode, ok := d.catalog.SkillOwner(skill.Code); ok {
			return heroCode, d.entityName(heroCode)
		}
	}
	return "", "Common"
}

// raceFromWorkerCode detects the faction from the first trained worker.
func raceFromWorkerCode(code string) Race {
	switch code {
	case "ewsp":
		return RaceSentinel
	case "uaco":
		return RaceScourge
	default:
		return RaceUnknown
	}
}

// reverseCode turns the wire byte order of an entity code into its
// string form.
func reverseCode(b []byte) string {
	return string([]byte{b[3], b[2], b[1], b[0]})
}

// isEntityCode reports whether a code is a readable object id rather
// than a numeric ability id.
func isEntityCode(code string) bool {
	return len(code) == 4 && code[0] >= 0x41 && code[0] <= 0x7A
}
