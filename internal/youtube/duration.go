package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO-8601 duration such as PT1H2M3S into seconds.
// Live and upcoming videos report P0D, which parses to zero.
func ParseDuration(value string) (int, error) {
	match := isoDuration.FindStringSubmatch(value)
	if match == nil || value == "P" || value == "PT" {
		return 0, fmt.Errorf("invalid iso-8601 duration %q", value)
	}
	units := [...]int{86400, 3600, 60, 1}
	total := 0
	for i, unit := range units {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid iso-8601 duration %q: %w", value, err)
		}
		total += n * unit
	}
	return total, nil
}
