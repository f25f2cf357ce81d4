package profile

import "strings"

// DashboardThreshold is the completion percentage at which a member is routed
// to the dashboard instead of onboarding. Partial step completion that pushes
// the percentage past this gate short-circuits the remaining steps.
const DashboardThreshold = 70

type completionField struct {
	weight int
	filled func(Profile) bool
}

// Field weights sum to 100. Interests and cultural backgrounds count once a
// single tag is present; the weighting favors the fields shown on a match
// card over optional extras.
var completionFields = []completionField{
	{weight: 15, filled: func(p Profile) bool { return strings.TrimSpace(p.DisplayName) != "" }},
	{weight: 10, filled: func(p Profile) bool { return strings.TrimSpace(p.DateOfBirth) != "" }},
	{weight: 5, filled: func(p Profile) bool { return strings.TrimSpace(p.Gender) != "" }},
	{weight: 15, filled: func(p Profile) bool { return strings.TrimSpace(p.Bio) != "" }},
	{weight: 15, filled: func(p Profile) bool { return len(p.Interests) > 0 }},
	{weight: 10, filled: func(p Profile) bool { return strings.TrimSpace(p.City) != "" }},
	{weight: 5, filled: func(p Profile) bool { return strings.TrimSpace(p.Country) != "" }},
	{weight: 10, filled: func(p Profile) bool { return p.RelationshipGoal != GoalNotSpecified }},
	{weight: 5, filled: func(p Profile) bool { return len(p.CulturalBackgrounds) > 0 }},
	{weight: 10, filled: func(p Profile) bool { return strings.TrimSpace(p.PhotoURL) != "" }},
}

// CompletionPercent derives the 0-100 completion score from filled fields.
// Deterministic: the same profile always yields the same score.
func CompletionPercent(p Profile) int {
	total := 0
	for _, f := range completionFields {
		if f.filled(p) {
			total += f.weight
		}
	}
	if total > 100 {
		total = 100
	}
	return total
}

// ReadyForDashboard reports whether routing should skip onboarding. The gate
// reads the percentage only; step bookkeeping stays a separate signal.
func ReadyForDashboard(p Profile) bool {
	return p.CompletionPercent >= DashboardThreshold
}

// ApplyPatch merges a partial update into the profile and recomputes the
// completion percentage. Empty strings in the patch are ignored so a merge
// can only add data, which keeps the percentage monotonic in practice.
func ApplyPatch(p Profile, patch FieldPatch) Profile {
	out := p

	setIfPresent := func(dst *string, src *string) {
		if src != nil && strings.TrimSpace(*src) != "" {
			*dst = strings.TrimSpace(*src)
		}
	}

	setIfPresent(&out.DisplayName, patch.DisplayName)
	setIfPresent(&out.DateOfBirth, patch.DateOfBirth)
	setIfPresent(&out.Gender, patch.Gender)
	setIfPresent(&out.Bio, patch.Bio)
	setIfPresent(&out.City, patch.City)
	setIfPresent(&out.Country, patch.Country)
	setIfPresent(&out.PhotoURL, patch.PhotoURL)

	if patch.RelationshipGoal != nil && strings.TrimSpace(*patch.RelationshipGoal) != "" {
		out.RelationshipGoal = RelationshipGoal(strings.TrimSpace(*patch.RelationshipGoal))
	}
	if tags := normalizeTags(patch.Interests); len(tags) > 0 {
		out.Interests = tags
	}
	if tags := normalizeTags(patch.CulturalBackgrounds); len(tags) > 0 {
		out.CulturalBackgrounds = tags
	}

	out.CompletionPercent = CompletionPercent(out)
	return out
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
