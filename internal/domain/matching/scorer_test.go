package matching

import (
	"testing"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
)

func TestScore_NoOverlappingFields(t *testing.T) {
	a := profile.Profile{UserID: "a", Interests: []string{"travel"}}
	b := profile.Profile{UserID: "b", City: "Lagos", Country: "NG"}

	result := Score(a, b)

	if result.Overall != 0 {
		t.Fatalf("expected overall 0 for disjoint profiles, got %d", result.Overall)
	}
	if len(result.Breakdown) != 0 {
		t.Fatalf("expected empty breakdown, got %v", result.Breakdown)
	}
	if result.CommonInterests != nil {
		t.Fatalf("expected nil common interests, got %v", result.CommonInterests)
	}
}

func TestScore_InterestsOverlap(t *testing.T) {
	a := profile.Profile{Interests: []string{"travel", "music"}}
	b := profile.Profile{Interests: []string{"music", "food"}}

	result := Score(a, b)

	if got := result.Breakdown[DimensionInterests]; got != 50 {
		t.Fatalf("expected interests score 50, got %d", got)
	}
	if len(result.CommonInterests) != 1 || result.CommonInterests[0] != "music" {
		t.Fatalf("expected common interests [music], got %v", result.CommonInterests)
	}
	// 50 * 0.30 rounds to 15.
	if result.Overall != 15 {
		t.Fatalf("expected overall 15, got %d", result.Overall)
	}
}

func TestScore_LocationSameCity(t *testing.T) {
	a := profile.Profile{City: "Nairobi", Country: "KE"}
	b := profile.Profile{City: "Nairobi", Country: "KE"}

	result := Score(a, b)

	if got := result.Breakdown[DimensionLocation]; got != 100 {
		t.Fatalf("expected location 100 for same city, got %d", got)
	}
}

func TestScore_LocationSameCountryDifferentCity(t *testing.T) {
	a := profile.Profile{City: "Nairobi", Country: "KE"}
	b := profile.Profile{City: "Mombasa", Country: "KE"}

	if got := Score(a, b).Breakdown[DimensionLocation]; got != 60 {
		t.Fatalf("expected location 60 for same country, got %d", got)
	}
}

func TestScore_LocationDifferentCountry(t *testing.T) {
	a := profile.Profile{City: "Nairobi", Country: "KE"}
	b := profile.Profile{City: "Accra", Country: "GH"}

	if got := Score(a, b).Breakdown[DimensionLocation]; got != 30 {
		t.Fatalf("expected location 30 for different country, got %d", got)
	}
}

func TestScore_Values(t *testing.T) {
	same := Score(
		profile.Profile{RelationshipGoal: profile.GoalMarriage},
		profile.Profile{RelationshipGoal: profile.GoalMarriage},
	)
	if got := same.Breakdown[DimensionValues]; got != 100 {
		t.Fatalf("expected values 100 for same goal, got %d", got)
	}

	different := Score(
		profile.Profile{RelationshipGoal: profile.GoalMarriage},
		profile.Profile{RelationshipGoal: profile.GoalFriendship},
	)
	if got := different.Breakdown[DimensionValues]; got != 50 {
		t.Fatalf("expected values 50 for differing goals, got %d", got)
	}
}

func TestScore_LifestyleAgeGap(t *testing.T) {
	close := Score(
		profile.Profile{DateOfBirth: "1990-04-12"},
		profile.Profile{DateOfBirth: "1994-11-30"},
	)
	if got := close.Breakdown[DimensionLifestyle]; got != 100 {
		t.Fatalf("expected lifestyle 100 for 4-year gap, got %d", got)
	}

	far := Score(
		profile.Profile{DateOfBirth: "1990-04-12"},
		profile.Profile{DateOfBirth: "2000-01-01"},
	)
	if got := far.Breakdown[DimensionLifestyle]; got != 0 {
		t.Fatalf("expected lifestyle 0 for 10-year gap, got %d", got)
	}
}

func TestScore_MalformedDateDegradesToAbsent(t *testing.T) {
	result := Score(
		profile.Profile{DateOfBirth: "not-a-date"},
		profile.Profile{DateOfBirth: "1990-01-01"},
	)

	if _, ok := result.Breakdown[DimensionLifestyle]; ok {
		t.Fatalf("expected lifestyle dimension absent for malformed date, got %v", result.Breakdown)
	}
	if result.Overall != 0 {
		t.Fatalf("expected overall 0, got %d", result.Overall)
	}
}

func TestScore_CultureOverlap(t *testing.T) {
	overlap := Score(
		profile.Profile{CulturalBackgrounds: []string{"Yoruba", "Igbo"}},
		profile.Profile{CulturalBackgrounds: []string{"yoruba"}},
	)
	if got := overlap.Breakdown[DimensionCulture]; got != 100 {
		t.Fatalf("expected culture 100 for overlapping tags, got %d", got)
	}

	disjoint := Score(
		profile.Profile{CulturalBackgrounds: []string{"Yoruba"}},
		profile.Profile{CulturalBackgrounds: []string{"Zulu"}},
	)
	if got := disjoint.Breakdown[DimensionCulture]; got != 50 {
		t.Fatalf("expected culture 50 for disjoint tags, got %d", got)
	}
}

func TestScore_FullMatchReaches100(t *testing.T) {
	a := profile.Profile{
		Interests:           []string{"travel", "music"},
		City:                "Nairobi",
		Country:             "KE",
		DateOfBirth:         "1991-06-01",
		RelationshipGoal:    profile.GoalLongTerm,
		CulturalBackgrounds: []string{"Kikuyu"},
	}
	b := profile.Profile{
		Interests:           []string{"music", "travel"},
		City:                "Nairobi",
		Country:             "KE",
		DateOfBirth:         "1993-02-14",
		RelationshipGoal:    profile.GoalLongTerm,
		CulturalBackgrounds: []string{"Kikuyu"},
	}

	result := Score(a, b)

	if result.Overall != 100 {
		t.Fatalf("expected overall 100 for identical preferences, got %d", result.Overall)
	}
	if len(result.Breakdown) != 5 {
		t.Fatalf("expected all five dimensions present, got %v", result.Breakdown)
	}
}

func TestScore_NoRenormalizationOnSparseData(t *testing.T) {
	// Only the values dimension is present and maxed; weights are not
	// renormalized, so overall is 100 * 0.20 = 20, not 100.
	result := Score(
		profile.Profile{RelationshipGoal: profile.GoalMarriage},
		profile.Profile{RelationshipGoal: profile.GoalMarriage},
	)

	if result.Overall != 20 {
		t.Fatalf("expected overall 20 with a single maxed dimension, got %d", result.Overall)
	}
}
