package parser

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// HandKey derives the stable 16-hex id for a record. The key mixes the
// fields that locate a hand in its source history with a digest of the seated
// player names, sorted first so seat order cannot change the id. Upstream
// partitioners stamp ids with this same recipe, so the key is always
// recomputed here rather than trusted from the input.
func HandKey(rec *Record) string {
	names := make([]string, 0, len(rec.Players))
	for _, p := range rec.Players {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	namesSum := sha1.Sum([]byte(strings.Join(names, ",")))

	parts := []string{
		rec.Site,
		string(rec.TournamentID),
		rec.FileID,
		strconv.Itoa(int(rec.ButtonSeat)),
		strconv.Itoa(int(rec.RawOffsets.HandStart)),
		rec.TimestampUTC,
		hex.EncodeToString(namesSum[:]),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}
