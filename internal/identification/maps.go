package identification

import "strings"

// KnownMaps lists the active-duty map names in the order they are matched.
var KnownMaps = []string{
	"mirage",
	"inferno",
	"nuke",
	"ancient",
	"anubis",
	"vertigo",
	"overpass",
	"dust2",
}

// DetectMap returns the first KnownMaps entry contained in title, ignoring
// case, or "" when none is.
func DetectMap(title string) string {
	lower := strings.ToLower(title)
	for _, name := range KnownMaps {
		if strings.Contains(lower, name) {
			return name
		}
	}
	return ""
}
