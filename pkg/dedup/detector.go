package dedup

import (
	"strings"
	"unicode/utf8"

	"github.com/mmcloughlin/geohash"

	"github.com/Godevs04/taatom-admin-console/pkg/api"
)

// Duplicate flag reasons. When both rules hold, the name rule wins.
const (
	ReasonSimilarName    = "similar name"
	ReasonNearbyLocation = "nearby location"
)

// NearbyThresholdKM is the distance below which two locales count as
// occupying the same spot.
const NearbyThresholdKM = 1.0

// areaCellPrecision is the geohash length of the grouping cell. Five
// characters cover roughly a 5 km square.
const areaCellPrecision = 5

// minSubstringRunes is the shortest normalized name allowed to match as a
// substring of another. Shorter fragments collide with too many names.
const minSubstringRunes = 4

// Pair is one flagged duplicate candidate.
type Pair struct {
	// A and B are the flagged records in page order.
	A api.Locale
	B api.Locale

	// Reason is ReasonSimilarName or ReasonNearbyLocation.
	Reason string

	// DistanceKM is the great-circle distance between the records, valid
	// only when DistanceKnown is true.
	DistanceKM float64

	// DistanceKnown reports whether both records carried valid coordinates.
	DistanceKnown bool

	// AreaCell is the geohash cell of the pair midpoint, for grouping
	// flagged pairs by area. Empty when the distance is unknown.
	AreaCell string
}

// Scan compares every pair of records on the page and returns the flagged
// candidates in page order.
func Scan(locales []api.Locale) []Pair {
	var pairs []Pair
	for i := 0; i < len(locales); i++ {
		for j := i + 1; j < len(locales); j++ {
			if pair, ok := compare(locales[i], locales[j]); ok {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

// GroupByArea buckets flagged pairs by their midpoint geohash cell. Pairs
// without coordinates land under the empty key.
func GroupByArea(pairs []Pair) map[string][]Pair {
	groups := make(map[string][]Pair)
	for _, pair := range pairs {
		groups[pair.AreaCell] = append(groups[pair.AreaCell], pair)
	}
	return groups
}

func compare(a, b api.Locale) (Pair, bool) {
	pair := Pair{A: a, B: b}

	if ValidCoordinates(a.Latitude, a.Longitude) && ValidCoordinates(b.Latitude, b.Longitude) {
		pair.DistanceKM = Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
		pair.DistanceKnown = true
		pair.AreaCell = geohash.EncodeWithPrecision(
			(a.Latitude+b.Latitude)/2,
			(a.Longitude+b.Longitude)/2,
			areaCellPrecision,
		)
	}

	switch {
	case namesSimilar(a.Name, b.Name):
		pair.Reason = ReasonSimilarName
	case pair.DistanceKnown && pair.DistanceKM < NearbyThresholdKM:
		pair.Reason = ReasonNearbyLocation
	default:
		return Pair{}, false
	}

	return pair, true
}

// namesSimilar applies the name rule: normalized names equal, or one of at
// least minSubstringRunes runes contained in the other.
func namesSimilar(a, b string) bool {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == "" || nb == "" {
		return false
	}

	if na == nb {
		return true
	}

	if utf8.RuneCountInString(nb) >= minSubstringRunes && strings.Contains(na, nb) {
		return true
	}
	if utf8.RuneCountInString(na) >= minSubstringRunes && strings.Contains(nb, na) {
		return true
	}
	return false
}
