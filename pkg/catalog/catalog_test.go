package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/condor/dota-replay/pkg/dota"
)

const sampleMapData = `<?xml version="1.0" encoding="UTF-8"?>
<map>
  <version>6.70c</version>
  <item>
    <type>HERO</type>
    <name>Axe</name>
    <id>Uaxe</id>
    <propernames>Mogul Kahn</propernames>
    <relatedto>A0E2,A0E3</relatedto>
  </item>
  <item>
    <type>SKILL</type>
    <name>Berserker's Call</name>
    <id>A0E2</id>
  </item>
  <item>
    <type>ITEM</type>
    <name>Boots of Speed</name>
    <id>I00X</id>
    <cost>500</cost>
  </item>
  <item>
    <name>no type, dropped</name>
    <id>XXXX</id>
  </item>
</map>
`

func TestParse(t *testing.T) {
	lib, err := Parse(strings.NewReader(sampleMapData))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if lib.Len() != 3 {
		t.Errorf("Len = %d, want 3", lib.Len())
	}
	if lib.Info["VERSION"] != "6.70c" {
		t.Errorf("Info = %v", lib.Info)
	}

	hero, ok := lib.Lookup("Uaxe")
	if !ok || hero.Kind != dota.KindHero || hero.Name != "Axe" {
		t.Fatalf("Lookup(Uaxe) = %+v, %v", hero, ok)
	}
	if hero.ProperNames != "Mogul Kahn" {
		t.Errorf("ProperNames = %q", hero.ProperNames)
	}
	if len(hero.Related) != 2 {
		t.Errorf("Related = %v", hero.Related)
	}

	item, ok := lib.Lookup("I00X")
	if !ok || item.Cost != 500 {
		t.Errorf("Lookup(I00X) = %+v, %v", item, ok)
	}

	if owner, ok := lib.SkillOwner("A0E2"); !ok || owner != "Uaxe" {
		t.Errorf("SkillOwner(A0E2) = %q, %v", owner, ok)
	}
	if owner, ok := lib.SkillOwner("A0E3"); !ok || owner != "Uaxe" {
		t.Errorf("SkillOwner(A0E3) = %q, %v", owner, ok)
	}
	if _, ok := lib.SkillOwner("ZZZZ"); ok {
		t.Error("SkillOwner should miss for unknown codes")
	}
	if _, ok := lib.Lookup("XXXX"); ok {
		t.Error("record without a type should be dropped")
	}
}

func writeMapFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sampleMapData), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestResolverFileSelection(t *testing.T) {
	dir := writeMapFiles(t,
		"dota.allstars.v6.70.xml",
		"dota.allstars.v6.68.xml",
		"dota.allstars.v6.60b.xml",
	)
	r := NewResolver(dir)

	tests := []struct {
		mapName string
		want    string
	}{
		{"DotA Allstars v6.60b", "dota.allstars.v6.60b.xml"},
		{"DotA Allstars v6.68c", "dota.allstars.v6.68.xml"},
		{"DotA Allstars v6.69", "dota.allstars.v6.70.xml"},
		{"Some Custom Map", "dota.allstars.v6.70.xml"},
	}
	for _, tt := range tests {
		got, err := r.mapFile(tt.mapName)
		if err != nil {
			t.Errorf("mapFile(%q): %v", tt.mapName, err)
			continue
		}
		if got != tt.want {
			t.Errorf("mapFile(%q) = %q, want %q", tt.mapName, got, tt.want)
		}
	}
}

func TestResolverVersionFloor(t *testing.T) {
	r := NewResolver(writeMapFiles(t, "dota.allstars.v6.70.xml"))

	_, err := r.Resolve("DotA Allstars v6.48b")
	var verr *dota.UnsupportedModVersionError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want UnsupportedModVersionError", err)
	}
	if verr.Version != "6.48b" {
		t.Errorf("Version = %q, want 6.48b", verr.Version)
	}
}

func TestResolverCaches(t *testing.T) {
	r := NewResolver(writeMapFiles(t, "dota.allstars.v6.70.xml"))

	first, err := r.Resolve("DotA Allstars v6.70c")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve("DotA Allstars v6.70x")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first != second {
		t.Error("same file should resolve to the cached library")
	}
}

func TestResolverMissingDefault(t *testing.T) {
	r := NewResolver(t.TempDir())
	if _, err := r.Resolve("DotA Allstars v6.69"); err == nil {
		t.Fatal("expected an error for a missing data file")
	}
}
