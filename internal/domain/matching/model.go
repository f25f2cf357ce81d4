package matching

// Dimension names one axis of the compatibility breakdown.
type Dimension string

const (
	DimensionInterests Dimension = "interests"
	DimensionLocation  Dimension = "location"
	DimensionLifestyle Dimension = "lifestyle"
	DimensionValues    Dimension = "values"
	DimensionCulture   Dimension = "culture"
)

// Result is a derived, non-persisted compatibility verdict for an ordered
// pair of profiles. Breakdown only carries dimensions both sides supplied
// data for; CommonInterests is nil when there is no overlap.
type Result struct {
	Overall         int               `json:"overall"`
	Breakdown       map[Dimension]int `json:"breakdown"`
	CommonInterests []string          `json:"common_interests,omitempty"`
}
