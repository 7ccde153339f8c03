package dota

import (
	"fmt"
	"regexp"
	"strconv"
)

// ModVersion is the mod release parsed out of a map name, e.g. 6.70c.
type ModVersion struct {
	Major  int
	Minor  int
	Suffix string
}

var mapVersionPattern = regexp.MustCompile(`([0-9])\.([0-9]{1,2})([a-zA-Z]?)`)

// ModVersionFromMapName extracts the mod version from a map file name
// like "DotA Allstars v6.70c". The second value is false when the name
// carries no recognizable version.
func ModVersionFromMapName(name string) (ModVersion, bool) {
	m := mapVersionPattern.FindStringSubmatch(name)
	if m == nil {
		return ModVersion{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return ModVersion{Major: major, Minor: minor, Suffix: m[3]}, true
}

// AtLeast reports whether v is at or above major.minor.
func (v ModVersion) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v ModVersion) String() string {
	return fmt.Sprintf("%d.%d%s", v.Major, v.Minor, v.Suffix)
}
