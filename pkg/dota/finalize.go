package dota

import (
	"strconv"
	"strings"
)

// Activity is accounted in half-minute buckets.
const activityBucketMs = 30000

// finalize turns the accumulated decoder state into the exported replay:
// draft export, delayed skill resolution, the -switch rename pass, APM
// accounting and the team split.
func (d *decoder) finalize() {
	d.replay.Draft = d.draft.export()

	for _, st := range d.stats {
		st.processDelayedSkills()
	}

	// Snapshot the per-slot results by WC3 id before the rename pass
	// moves them around.
	type slotResult struct {
		timeMs      uint32
		leaveResult string
		items       map[uint32]string
		details     map[string]int
		actions     []uint32
	}
	results := make(map[uint8]slotResult)
	for _, id := range d.playerOrder {
		p := d.players[id]
		if p == nil || p.DotaID == 0 {
			continue
		}
		if p.TimeMs == 0 {
			p.TimeMs = d.header.LengthMs
		}
		if p.LeaveResult == "" {
			p.LeaveResult = d.t("Finished")
		}
		results[id] = slotResult{
			timeMs:      p.TimeMs,
			leaveResult: p.LeaveResult,
			items:       p.Items,
			details:     p.ActionDetails,
			actions:     p.actions,
		}
	}

	// The mod shuffles players across lobby slots when the game starts
	// (-switch does it mid-game too), so the slot a player occupies in
	// the lobby is not the slot their actions come from. Walking the id
	// chain backwards recovers the lobby name for each acting slot:
	// mod slot -> sync channel -> base mod slot -> lobby WC3 id.
	unresolved := make(map[uint8]bool)
	for _, id := range d.playerOrder {
		p := d.players[id]
		if p == nil || p.DotaID == 0 {
			continue
		}
		renamed := d.dotaIDToWc3[gameIDFromInternal(d.modToInternal[p.DotaID])]
		name, known := d.slotNames[renamed]
		if !known {
			// Chain breaks for slots the mod never announced. The slot
			// keeps its lobby name but carries no results.
			p.TimeMs = 0
			p.LeaveResult = ""
			p.Items = nil
			p.ActionDetails = nil
			p.actions = nil
			unresolved[id] = true
			continue
		}
		if name != "" {
			p.Name = name
		}
		res := results[renamed]
		p.TimeMs = res.timeMs
		p.LeaveResult = res.leaveResult
		p.Items = res.items
		p.ActionDetails = res.details
		p.actions = res.actions
	}

	for _, id := range d.playerOrder {
		p := d.players[id]
		if p == nil || p.DotaID == 0 || unresolved[id] {
			continue
		}
		p.ActionCount = len(p.actions)
		p.Activity = activityString(p.actions)
	}

	for _, id := range d.playerOrder {
		p := d.players[id]
		if p == nil {
			continue
		}
		if obs, ok := d.observers[id]; ok {
			// Observer actions accumulate on the base record.
			obs.TimeMs = p.TimeMs
			if obs.TimeMs == 0 {
				obs.TimeMs = d.header.LengthMs
			}
			obs.LeaveResult = p.LeaveResult
			obs.ActionCount = len(p.actions)
			obs.Activity = activityString(p.actions)
			obs.ActionDetails = p.ActionDetails
			d.replay.Observers = append(d.replay.Observers, obs)
			continue
		}
		if p.DotaID == 0 {
			// Waaagh!TV and similar tools join without a lobby slot;
			// their zombie records carry no team or mod id.
			continue
		}
		p.Stats = d.stats[p.DotaID]
		d.replay.Players = append(d.replay.Players, p)
		switch p.Team {
		case 0:
			d.replay.Sentinel = append(d.replay.Sentinel, p)
		case 1:
			d.replay.Scourge = append(d.replay.Scourge, p)
		}
	}
}

// gameIDFromInternal converts a sync channel back to a mod slot. Each
// side has six channels reserved, the Scourge block starting at 7, but
// the mod numbers its slots contiguously.
func gameIDFromInternal(internal int) int {
	switch {
	case internal >= 1 && internal <= 5:
		return internal
	case internal >= 7 && internal <= 11:
		return internal - 1
	default:
		return 0
	}
}

// activityString renders the action counts per half-minute bucket.
// Buckets flush when an action lands past the running boundary; the
// flushing action itself is not counted and the trailing partial bucket
// is not emitted, matching the accounting existing tooling expects.
func activityString(actions []uint32) string {
	var buckets []string
	boundary := uint32(activityBucketMs)
	count := 0
	for _, atime := range actions {
		if atime < boundary {
			count++
			continue
		}
		for atime > boundary {
			buckets = append(buckets, strconv.Itoa(count))
			count = 0
			boundary += activityBucketMs
		}
	}
	return strings.Join(buckets, ",")
}
