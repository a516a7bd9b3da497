package metadata

import (
	"strconv"
	"strings"
	"unicode"
)

// parseMinutes parses a human duration into whole minutes. Accepts plain
// minutes ("90"), unit suffixes ("45min", "2h") and combinations
// ("1h 30m", "1 hour 15 minutes"). Seconds round to the nearest minute.
func parseMinutes(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), true
	}

	var totalSecs float64
	rest := s
	matched := false
	for rest != "" {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		numEnd := 0
		for numEnd < len(rest) && (rest[numEnd] >= '0' && rest[numEnd] <= '9' || rest[numEnd] == '.') {
			numEnd++
		}
		if numEnd == 0 {
			return 0, false
		}
		value, err := strconv.ParseFloat(rest[:numEnd], 64)
		if err != nil {
			return 0, false
		}
		rest = strings.TrimLeft(rest[numEnd:], " \t")

		unitEnd := 0
		for _, r := range rest {
			if !unicode.IsLetter(r) {
				break
			}
			unitEnd += len(string(r))
		}
		secs, ok := unitSeconds(rest[:unitEnd])
		if !ok {
			return 0, false
		}
		totalSecs += value * secs
		rest = rest[unitEnd:]
		matched = true
	}
	if !matched {
		return 0, false
	}

	mins := (totalSecs + 30) / 60
	if mins < 0 || mins > float64(^uint32(0)) {
		return 0, false
	}
	return uint32(mins), true
}

func unitSeconds(unit string) (float64, bool) {
	switch strings.ToLower(unit) {
	case "s", "sec", "secs", "second", "seconds":
		return 1, true
	case "m", "min", "mins", "minute", "minutes":
		return 60, true
	case "h", "hr", "hrs", "hour", "hours":
		return 3600, true
	case "d", "day", "days":
		return 86400, true
	default:
		return 0, false
	}
}
