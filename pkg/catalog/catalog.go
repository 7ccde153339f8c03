// Package catalog loads the per-version map data files that translate
// four-character entity codes into heroes, skills, items and trainable
// objects. Each mod release ships its own code table, so the right file
// is selected from the map name embedded in the replay.
package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/condor/dota-replay/pkg/dota"
)

// Library is one loaded map data file: the entity table keyed by code
// plus the skill-to-hero ownership index built from hero records.
type Library struct {
	// File is the data file name the library was loaded from.
	File string
	// Info holds the top-level map metadata tags (version, date, ...).
	Info map[string]string

	entities    map[string]*dota.Entity
	skillToHero map[string]string
}

var _ dota.ContentCatalog = (*Library)(nil)

// Lookup returns the entity for a code.
func (l *Library) Lookup(code string) (*dota.Entity, bool) {
	e, ok := l.entities[code]
	return e, ok
}

// SkillOwner returns the code of the hero owning an ability.
func (l *Library) SkillOwner(code string) (string, bool) {
	hero, ok := l.skillToHero[code]
	return hero, ok
}

// Len is the number of entity records in the library.
func (l *Library) Len() int {
	return len(l.entities)
}

// Load reads and parses one map data file.
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map data: %w", err)
	}
	defer f.Close()
	lib, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse map data %s: %w", path, err)
	}
	return lib, nil
}

// Parse decodes a map data document. The format is a flat sequence of
// ITEM elements, each carrying TYPE, NAME and ID tags plus optional
// ART, COMMENT, COST, PROPERNAMES and RELATEDTO tags; text outside any
// ITEM is collected as map metadata. Tag names are matched without
// regard to case.
func Parse(r io.Reader) (*Library, error) {
	lib := &Library{
		Info:        make(map[string]string),
		entities:    make(map[string]*dota.Entity),
		skillToHero: make(map[string]string),
	}

	dec := xml.NewDecoder(r)
	var inItem bool
	var field string
	item := make(map[string]string)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToUpper(t.Name.Local)
			if name == "ITEM" {
				inItem = true
				item = make(map[string]string)
				field = ""
			} else {
				field = name
			}
		case xml.CharData:
			data := strings.TrimSpace(string(t))
			if data == "" || field == "" {
				continue
			}
			if inItem {
				item[field] = data
			} else {
				lib.Info[field] = data
			}
		case xml.EndElement:
			if strings.ToUpper(t.Name.Local) == "ITEM" && inItem {
				inItem = false
				lib.addRecord(item)
			}
			field = ""
		}
	}
	return lib, nil
}

// addRecord turns one ITEM element into an entity. Records without a
// type or id are dropped; hero records additionally feed the skill
// ownership index from their comma-separated related list.
func (l *Library) addRecord(item map[string]string) {
	id := item["ID"]
	kind := dota.EntityKindFromString(item["TYPE"])
	if id == "" || kind == dota.KindUnknown {
		return
	}

	e := &dota.Entity{
		Code:        id,
		Kind:        kind,
		Name:        item["NAME"],
		Art:         item["ART"],
		Comment:     item["COMMENT"],
		ProperNames: item["PROPERNAMES"],
	}
	if cost, err := strconv.Atoi(item["COST"]); err == nil {
		e.Cost = cost
	}
	if related := item["RELATEDTO"]; related != "" {
		e.Related = strings.Split(related, ",")
	}

	if kind == dota.KindHero {
		for _, skill := range e.Related {
			l.skillToHero[skill] = id
		}
	}
	l.entities[id] = e
}
