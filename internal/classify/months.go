package classify

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // reference timezone must resolve on hosts without zoneinfo
)

// SentinelMonth buckets hands whose month cannot be resolved at all.
const SentinelMonth = "1970-01"

// Reports and scoring windows follow the player's local months.
const referenceZone = "Europe/Lisbon"

var monthKeyRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

var (
	zoneOnce sync.Once
	zone     *time.Location
)

func refZone() *time.Location {
	zoneOnce.Do(func() {
		loc, err := time.LoadLocation(referenceZone)
		if err != nil {
			slog.Error("reference timezone unavailable, using UTC", "zone", referenceZone, "error", err)
			loc = time.UTC
		}
		zone = loc
	})
	return zone
}

// naiveLayouts carry no zone information and are read as UTC. The slash and
// AM/PM forms come from site exports that predate the enrichment pipeline.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 3:04:05 PM",
	"2006-01-02",
	"2006/01/02",
}

var ptTimestampRe = regexp.MustCompile(
	`^(\d{1,2}) de ([a-zçé]+) de (\d{4})(?: (?:às|as) (\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

var ptMonths = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"março":     time.March,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

// ParseTimestamp parses the timestamp formats seen in hand exports:
// RFC 3339, naive ISO, slash-delimited, 12-hour site style and Portuguese
// textual dates. Naive forms are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if t, ok := parsePortuguese(strings.ToLower(s)); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parsePortuguese(s string) (time.Time, bool) {
	m := ptTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := ptMonths[m[2]]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	hour, min, sec := 0, 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		min, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
	}
	if day < 1 || day > 31 || hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC), true
}

// MonthBucket converts a hand timestamp to its YYYY-MM bucket in the
// reference timezone. When the timestamp does not parse, a fallback month
// key is accepted if it already has the YYYY-MM shape; otherwise the
// sentinel is returned with ok=false. Callers keep the last ok month as the
// fallback for the next hand, so one malformed timestamp does not fracture
// a contiguous run.
func MonthBucket(timestamp, fallback string) (month string, ok bool) {
	if t, err := ParseTimestamp(timestamp); err == nil {
		return t.In(refZone()).Format("2006-01"), true
	}
	fb := strings.TrimSpace(fallback)
	if monthKeyRe.MatchString(fb) {
		return fb, true
	}
	return SentinelMonth, false
}
