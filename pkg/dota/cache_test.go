package dota

import "testing"

func cacheAction(mission, key string, value []byte) []byte {
	b := []byte{0x6B}
	b = append(b, "dr.x\x00"...)
	b = append(b, mission...)
	b = append(b, 0)
	b = append(b, key...)
	b = append(b, 0)
	return append(b, value...)
}

func codeValue(code string) []byte {
	return []byte{code[3], code[2], code[1], code[0]}
}

func u32Value(v uint32) []byte {
	return appendU32(nil, v)
}

func TestAnnounceIDCreatesStats(t *testing.T) {
	d := testDecoder()
	addTestPlayer(d, 1, "Alpha", 0, 1)

	payload := playerBlock(1,
		cacheAction("1", "i", u32Value(1)),
		cacheAction("1", "1", u32Value(7)),
		cacheAction("1", "6", u32Value(2950)),
		cacheAction("1", "8_0", codeValue("I00X")),
	)
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatalf("parseActions: %v", err)
	}

	st := d.stats[1]
	if st == nil {
		t.Fatal("no stats created by the id announcement")
	}
	if st.HeroKills != 7 || st.EndGold != 2950 {
		t.Errorf("stats = kills %d gold %d, want 7/2950", st.HeroKills, st.EndGold)
	}
	if st.Inventory[0] != "Boots of Speed" {
		t.Errorf("Inventory[0] = %q", st.Inventory[0])
	}
	if d.slotToMod[1] != 1 || d.modToInternal[1] != 1 {
		t.Errorf("id tables = %v / %v", d.slotToMod, d.modToInternal)
	}
}

func TestStatBeforeAnnouncementDropped(t *testing.T) {
	d := testDecoder()
	addTestPlayer(d, 1, "Alpha", 0, 1)

	payload := playerBlock(1, cacheAction("3", "1", u32Value(5)))
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatalf("parseActions: %v", err)
	}
	if len(d.stats) != 0 {
		t.Errorf("stats = %v, want none", d.stats)
	}
	if len(d.replay.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v, want the drop notice", d.replay.Diagnostics)
	}
}

func TestHeroBeforeAnnouncementBindsLater(t *testing.T) {
	d := testDecoder()
	addTestPlayer(d, 1, "Alpha", 0, 1)

	payload := playerBlock(1,
		cacheAction("7", "9", codeValue("Uaxe")),
		cacheAction("7", "i", u32Value(6)),
	)
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatalf("parseActions: %v", err)
	}

	st := d.stats[6]
	if st == nil || st.Hero == nil || st.Hero.Name != "Axe" {
		t.Fatalf("stats = %+v", st)
	}
	if _, ok := d.activatedHeroes["Axe"]; !ok {
		t.Error("hero not registered")
	}
}

func TestHeroSwap(t *testing.T) {
	d := testDecoder()
	addTestPlayer(d, 1, "Alpha", 0, 1)
	addTestPlayer(d, 2, "Beta", 1, 6)

	payload := playerBlock(1,
		cacheAction("1", "i", u32Value(1)),
		cacheAction("7", "i", u32Value(6)),
		cacheAction("1", "9", codeValue("Uaxe")),
		cacheAction("7", "9", codeValue("Ubar")),
		// -swap: both heroes move to the other player.
		cacheAction("1", "9", codeValue("Ubar")),
		cacheAction("7", "9", codeValue("Uaxe")),
	)
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatalf("parseActions: %v", err)
	}

	if got := d.stats[1].Hero.Name; got != "Beastmaster" {
		t.Errorf("mod 1 hero = %q, want Beastmaster", got)
	}
	if got := d.stats[6].Hero.Name; got != "Axe" {
		t.Errorf("mod 6 hero = %q, want Axe", got)
	}
	if len(d.activatedHeroes) != 2 {
		t.Errorf("activated heroes = %d, want 2 (swap reuses instances)", len(d.activatedHeroes))
	}
}

func TestWinnerRecord(t *testing.T) {
	d := testDecoder()
	addTestPlayer(d, 1, "Alpha", 0, 1)

	payload := playerBlock(1, cacheAction("Global", "Winner", u32Value(1)))
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatal(err)
	}
	if d.replay.Winner != RaceSentinel {
		t.Errorf("Winner = %v, want Sentinel", d.replay.Winner)
	}

	payload = playerBlock(1, cacheAction("Global", "Winner", u32Value(2)))
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatal(err)
	}
	if d.replay.Winner != RaceScourge {
		t.Errorf("Winner = %v, want Scourge", d.replay.Winner)
	}
}

func TestModeRecord(t *testing.T) {
	d := testDecoder()
	addTestPlayer(d, 1, "Alpha", 0, 1)

	payload := playerBlock(1, cacheAction("Data", "Modecm", u32Value(0)))
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatal(err)
	}
	if d.replay.Mode != "cm" || !d.draft.active {
		t.Errorf("Mode = %q active %v, want cm/true", d.replay.Mode, d.draft.active)
	}
}

func TestCaptainsModeBans(t *testing.T) {
	d := testDecoder()
	d.modVer = ModVersion{Major: 6, Minor: 70}
	addTestPlayer(d, 1, "Alpha", 0, 1)

	payload := playerBlock(1, cacheAction("Data", "Modecm", u32Value(0)))
	for i := 0; i < 3; i++ {
		payload = append(payload, playerBlock(1, cacheAction("Data", "Ban1", codeValue("Uaxe")))...)
		payload = append(payload, playerBlock(1, cacheAction("Data", "Ban7", codeValue("Ubar")))...)
	}
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatalf("parseActions: %v", err)
	}

	if !d.draft.inPickMode || !d.paused {
		t.Error("first ban should open the pick phase and pause the clock")
	}
	if len(d.draft.bans) != 6 || d.draft.bansPerTeam != 3 {
		t.Fatalf("bans = %d per-team %d, want 6/3", len(d.draft.bans), d.draft.bansPerTeam)
	}
	if d.draft.bans[0].Side != 0 || d.draft.bans[1].Side != 1 {
		t.Errorf("sides = %d, %d; want 0, 1", d.draft.bans[0].Side, d.draft.bans[1].Side)
	}

	// Ban traffic after the complete first phase escalates the allowance.
	payload = playerBlock(1, cacheAction("Data", "Ban1", codeValue("Uaxe")))
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatal(err)
	}
	if d.draft.bansPerTeam != 5 || len(d.draft.bans) != 7 {
		t.Errorf("after escalation: per-team %d bans %d, want 5/7", d.draft.bansPerTeam, len(d.draft.bans))
	}
}

func TestLegacyBans(t *testing.T) {
	d := testDecoder()
	d.modVer = ModVersion{Major: 6, Minor: 60}
	addTestPlayer(d, 1, "Alpha", 0, 1)

	payload := playerBlock(1,
		cacheAction("Data", "Modecm", u32Value(0)),
		cacheAction("Data", "Ban1", codeValue("Uaxe")),
	)
	if err := d.parseActions(payload, 0); err != nil {
		t.Fatal(err)
	}
	if len(d.draft.legacyBans) != 1 || len(d.draft.bans) != 0 {
		t.Errorf("legacy %d mode %d, want 1/0", len(d.draft.legacyBans), len(d.draft.bans))
	}
}
