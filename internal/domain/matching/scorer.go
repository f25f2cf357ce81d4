package matching

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
)

// Dimension weights sum to 1.0. Dimensions with no data on either side are
// skipped entirely and their weight is NOT redistributed, so sparse profiles
// score below 100 by construction.
var dimensionWeights = map[Dimension]float64{
	DimensionInterests: 0.30,
	DimensionLocation:  0.20,
	DimensionLifestyle: 0.20,
	DimensionValues:    0.20,
	DimensionCulture:   0.10,
}

const lifestyleMaxAgeGapYears = 5

// Score computes the compatibility result for an ordered pair of profiles.
// Pure and total: malformed input (e.g. an unparsable date of birth) degrades
// the affected dimension to "absent" instead of failing.
func Score(a, b profile.Profile) Result {
	breakdown := make(map[Dimension]int)
	var common []string

	if len(a.Interests) > 0 && len(b.Interests) > 0 {
		score, shared := scoreInterests(a.Interests, b.Interests)
		breakdown[DimensionInterests] = score
		common = shared
	}

	if hasText(a.City) && hasText(b.City) {
		breakdown[DimensionLocation] = scoreLocation(a, b)
	}

	if ageA, okA := birthYear(a.DateOfBirth); okA {
		if ageB, okB := birthYear(b.DateOfBirth); okB {
			breakdown[DimensionLifestyle] = scoreLifestyle(ageA, ageB)
		}
	}

	if a.RelationshipGoal != profile.GoalNotSpecified && b.RelationshipGoal != profile.GoalNotSpecified {
		breakdown[DimensionValues] = scoreValues(a.RelationshipGoal, b.RelationshipGoal)
	}

	if len(a.CulturalBackgrounds) > 0 && len(b.CulturalBackgrounds) > 0 {
		breakdown[DimensionCulture] = scoreCulture(a.CulturalBackgrounds, b.CulturalBackgrounds)
	}

	weighted := 0.0
	for dim, score := range breakdown {
		weighted += float64(score) * dimensionWeights[dim]
	}

	return Result{
		Overall:         clampScore(int(math.Round(weighted))),
		Breakdown:       breakdown,
		CommonInterests: common,
	}
}

func scoreInterests(a, b []string) (int, []string) {
	indexed := make(map[string]string, len(b))
	for _, tag := range b {
		indexed[normalizeTag(tag)] = tag
	}

	var shared []string
	for _, tag := range a {
		if _, ok := indexed[normalizeTag(tag)]; ok {
			shared = append(shared, tag)
		}
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}

	score := clampScore(int(math.Round(float64(len(shared)) / float64(longest) * 100)))
	return score, shared
}

func scoreLocation(a, b profile.Profile) int {
	switch {
	case sameText(a.City, b.City):
		return 100
	case sameText(a.Country, b.Country):
		return 60
	default:
		return 30
	}
}

func scoreLifestyle(yearA, yearB int) int {
	gap := yearA - yearB
	if gap < 0 {
		gap = -gap
	}
	if gap <= lifestyleMaxAgeGapYears {
		return 100
	}
	return 0
}

func scoreValues(a, b profile.RelationshipGoal) int {
	if a == b {
		return 100
	}
	return 50
}

func scoreCulture(a, b []string) int {
	indexed := make(map[string]struct{}, len(b))
	for _, tag := range b {
		indexed[normalizeTag(tag)] = struct{}{}
	}
	for _, tag := range a {
		if _, ok := indexed[normalizeTag(tag)]; ok {
			return 100
		}
	}
	return 50
}

// birthYear extracts the year from a stored date of birth. Accepts the
// canonical YYYY-MM-DD storage format plus full RFC 3339 timestamps from
// older records.
func birthYear(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Year(), true
		}
	}

	// Year-only records predate the date picker.
	if year, err := strconv.Atoi(trimmed); err == nil && year > 1900 && year < 3000 {
		return year, true
	}

	return 0, false
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func hasText(value string) bool {
	return strings.TrimSpace(value) != ""
}

func sameText(a, b string) bool {
	return hasText(a) && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
