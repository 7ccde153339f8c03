package dota

import (
	"fmt"
	"strconv"
	"strings"
)

// parseCacheAction decodes one sync stored-integer action: three null
// terminated strings (cache name, mission key, data key) and a 4-byte
// value. The mod broadcasts all of its cross-client state this way:
// player id announcements, the scoreboard, hero assignments, draft
// traffic and the winner.
//
//	key        | meaning
//	-----------+--------------------------------
//	"i"        | mod player id for the channel
//	"1" .. "7" | kills, deaths, creep kills, denies, assists, gold, neutrals
//	"8_x"      | inventory slot x
//	"9"        | hero assignment
func (d *decoder) parseCacheAction(block []byte, i, baseOffset int) (int, error) {
	j := i + 1
	readString := func() (string, error) {
		start := j
		for j < len(block) && block[j] != 0 {
			j++
		}
		if j >= len(block) {
			return "", newTruncatedDataError("sync record string overruns block", baseOffset+start)
		}
		s := string(block[start:j])
		j++
		return s, nil
	}

	if _, err := readString(); err != nil { // cache name, always "dr.x"
		return 0, err
	}
	mission, err := readString()
	if err != nil {
		return 0, err
	}
	key, err := readString()
	if err != nil {
		return 0, err
	}
	if j+4 > len(block) {
		return 0, newTruncatedDataError("sync record value truncated", baseOffset+j)
	}
	value := block[j : j+4]
	j += 4

	d.handleCacheRecord(mission, key, value)
	return j, nil
}

// entityValue interprets a sync value as a reversed entity code. The
// all-zero value means "nothing assigned".
func (d *decoder) entityValue(value []byte) *Entity {
	if value[0] == 0 && value[1] == 0 && value[2] == 0 && value[3] == 0 {
		return nil
	}
	return d.lookupEntity(reverseCode(value))
}

func (d *decoder) handleCacheRecord(mission, key string, value []byte) {
	num := uint32(value[0]) | uint32(value[1])<<8 | uint32(value[2])<<16 | uint32(value[3])<<24

	switch {
	case mission == "Data":
		d.handleDataRecord(key, num, value)
	case mission == "Global":
		if key == "Winner" {
			if num == 1 {
				d.replay.Winner = RaceSentinel
			} else {
				d.replay.Winner = RaceScourge
			}
		}
	default:
		channel, err := strconv.Atoi(mission)
		if err != nil || channel < 0 || channel > 12 {
			return
		}
		d.handleChannelRecord(channel, key, num, value)
	}
}

// handleDataRecord covers the "Data" mission: accuracy counters, the
// mode announcement and draft ban traffic.
func (d *decoder) handleDataRecord(key string, num uint32, value []byte) {
	accuracy := []struct {
		prefix string
		assign func(*PlayerStats, uint32)
	}{
		{"AA_Total", func(s *PlayerStats, v uint32) { s.ArrowTotal = v }},
		{"AA_Hits", func(s *PlayerStats, v uint32) { s.ArrowHits = v }},
		{"HA_Total", func(s *PlayerStats, v uint32) { s.HookTotal = v }},
		{"HA_Hits", func(s *PlayerStats, v uint32) { s.HookHits = v }},
	}
	for _, acc := range accuracy {
		if strings.HasPrefix(key, acc.prefix) {
			pid, err := strconv.Atoi(key[len(acc.prefix):])
			if err != nil {
				return
			}
			if st, ok := d.stats[pid]; ok {
				acc.assign(st, num)
			}
			return
		}
	}

	if strings.Contains(key, "Mode") && len(key) >= 6 {
		short := key[4:6]
		d.replay.Mode = short
		d.draft.activate(short)
		return
	}

	// Captains Draft ban broadcasting is broken on the mod side (only
	// Sentinel packets arrive), so only Captains Mode bans are tracked.
	if d.draft.active && d.draft.isCD {
		return
	}
	if strings.Contains(key, "Ban") {
		// The first ban opens the draft: the clock pauses until the
		// picks are done.
		if !d.draft.inPickMode {
			d.draft.inPickMode = true
			d.paused = true
		}
		entity := d.entityValue(value)
		if entity == nil {
			return
		}

		side := 0
		switch key {
		case "Ban1":
			side = 0
		case "Ban7":
			side = 1
		default:
			if len(key) > 3 {
				teamPid := int(key[3] - '0')
				if mapped, ok := d.slotToMod[teamPid]; ok {
					teamPid = mapped
				}
				if tp, ok := d.players[uint8(teamPid)]; ok {
					side = int(tp.Team)
				}
			}
		}
		ban := DraftPick{Code: entity.Code, Name: entity.Name, Side: side}

		if d.modVer.AtLeast(6, 68) && d.draft.active {
			// Ban traffic after a completed phase starts the second
			// phase of the split draft.
			if d.draft.banPhaseComplete() {
				d.draft.bansPerTeam = 5
			}
			d.draft.addBan(ban)
		} else {
			d.draft.legacyBans = append(d.draft.legacyBans, ban)
		}
	}
}

// handleChannelRecord covers the numeric missions: per-player stat and
// hero traffic on a channel that the "i" record binds to a mod id.
func (d *decoder) handleChannelRecord(channel int, key string, num uint32, value []byte) {
	pid := channel
	if mapped, ok := d.slotToMod[channel]; ok {
		pid = mapped
	}

	if key == "9" {
		d.assignHero(channel, pid, d.entityValue(value))
		return
	}
	if len(key) == 0 {
		return
	}

	switch key[0] {
	case 'i':
		d.announceID(channel, int(num))
	case '1', '2', '3', '4', '5', '6', '7':
		st, ok := d.stats[pid]
		if !ok {
			d.diag(fmt.Sprintf("stat %q for unannounced mod id %d dropped", key, pid))
			return
		}
		switch key[0] {
		case '1':
			st.HeroKills = num
		case '2':
			st.Deaths = num
		case '3':
			st.CreepKills = num
		case '4':
			st.CreepDenies = num
		case '5':
			st.Assists = num
		case '6':
			st.EndGold = num
		case '7':
			st.Neutrals = num
		}
	case '8':
		st, ok := d.stats[pid]
		if !ok || len(key) < 3 {
			return
		}
		slot := int(key[2] - '0')
		if slot < 0 || slot >= len(st.Inventory) {
			return
		}
		if e := d.entityValue(value); e != nil {
			st.Inventory[slot] = e.Name
		} else {
			st.Inventory[slot] = ""
		}
	}
}

// announceID binds a channel to its mod player id and flushes anything
// queued against the unbound channel.
func (d *decoder) announceID(channel, pid int) {
	d.slotToMod[channel] = pid
	d.modToInternal[pid] = channel

	if _, ok := d.stats[pid]; ok {
		return
	}
	st := newPlayerStats(pid)
	d.stats[pid] = st

	if hero, ok := d.preAnnouncePick[channel]; ok {
		h := newActivatedHero(hero)
		st.setHero(h)
		d.registerHero(h)
	}
	if pending, ok := d.preAnnounceSkill[pid]; ok {
		st.addDelayedSkill(pending.skill, pending.timeMs, pending.heroCode)
	}
}

// assignHero handles a hero broadcast for a channel: first assignment,
// swaps (the hero instance moves between players), repicks and morphs.
func (d *decoder) assignHero(channel, pid int, hero *Entity) {
	// A game-picked random hero ends the draft implicitly.
	if d.draft.inPickMode {
		d.paused = false
		d.draft.inPickMode = false
	}
	if hero == nil {
		return
	}

	st, ok := d.stats[pid]
	if !ok {
		// Hero picked before the ids went out; bind it when they do.
		d.preAnnouncePick[channel] = hero
		return
	}
	if st.Hero == nil {
		h := newActivatedHero(hero)
		st.setHero(h)
		d.registerHero(h)
		return
	}

	if existing, activated := d.activatedHeroes[hero.Name]; activated {
		// Known hero under another owner: a swap. The same name on the
		// same owner is the end-game rebroadcast.
		if st.Hero.Name != hero.Name {
			st.setHero(existing)
		}
		return
	}
	// Unknown hero name on a player that has one: a repick, or a
	// morphing ability when the names match.
	if st.Hero.Name != hero.Name {
		h := newActivatedHero(hero)
		st.setHero(h)
		d.registerHero(h)
	}
}

func (d *decoder) registerHero(h *ActivatedHero) {
	d.activatedHeroes[h.Name] = h
}
