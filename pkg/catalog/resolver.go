package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/condor/dota-replay/pkg/dota"
)

const (
	mapFilePrefix  = "dota.allstars.v"
	defaultMapFile = "dota.allstars.v6.70.xml"
)

// Resolver picks and loads the data file matching a replay's map name.
// Loaded libraries are cached per file name, so resolving many replays
// of the same mod release parses the file once. Safe for concurrent use.
type Resolver struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Library
}

var _ dota.CatalogResolver = (*Resolver)(nil)

// NewResolver returns a resolver reading data files from dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir, cache: make(map[string]*Library)}
}

// Resolve implements dota.CatalogResolver.
func (r *Resolver) Resolve(mapName string) (dota.ContentCatalog, error) {
	file, err := r.mapFile(mapName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if lib, ok := r.cache[file]; ok {
		return lib, nil
	}
	lib, err := Load(filepath.Join(r.dir, file))
	if err != nil {
		return nil, err
	}
	lib.File = file
	r.cache[file] = lib
	return lib, nil
}

// mapFile selects the data file for a map name. A release-specific file
// (with or without the letter suffix) wins over the default; versions
// before 6.59 without their own file are not decodable.
func (r *Resolver) mapFile(mapName string) (string, error) {
	v, ok := dota.ModVersionFromMapName(mapName)
	if !ok {
		return defaultMapFile, nil
	}

	if v.Suffix != "" {
		exact := fmt.Sprintf("%s%d.%d%s.xml", mapFilePrefix, v.Major, v.Minor, v.Suffix)
		if r.exists(exact) {
			return exact, nil
		}
	}
	plain := fmt.Sprintf("%s%d.%d.xml", mapFilePrefix, v.Major, v.Minor)
	if r.exists(plain) {
		return plain, nil
	}
	if !v.AtLeast(6, 59) {
		return "", dota.NewUnsupportedModVersionError(v.String())
	}
	return defaultMapFile, nil
}

func (r *Resolver) exists(name string) bool {
	info, err := os.Stat(filepath.Join(r.dir, name))
	return err == nil && !info.IsDir()
}
