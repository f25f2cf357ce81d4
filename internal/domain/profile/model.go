package profile

import "time"

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierElite   SubscriptionTier = "elite"
)

type RelationshipGoal string

const (
	GoalMarriage     RelationshipGoal = "marriage"
	GoalLongTerm     RelationshipGoal = "long_term"
	GoalFriendship   RelationshipGoal = "friendship"
	GoalNotSpecified RelationshipGoal = ""
)

// Profile is one member of the platform. Fields are filled incrementally
// during onboarding; CompletionPercent is derived, never set directly.
type Profile struct {
	UserID              string
	Email               string
	DisplayName         string
	DateOfBirth         string
	Gender              string
	Bio                 string
	Interests           []string
	City                string
	Country             string
	RelationshipGoal    RelationshipGoal
	CulturalBackgrounds []string
	AuthProvider        string
	PhotoURL            string
	SubscriptionTier    SubscriptionTier
	EmailVerified       bool
	PhotoVerified       bool
	CompletionPercent   int
	LoginCount          int
	LastLoginAt         time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FieldPatch carries a partial profile update. Nil pointers mean "leave as is";
// this is what keeps merges from clobbering existing data.
type FieldPatch struct {
	DisplayName         *string
	DateOfBirth         *string
	Gender              *string
	Bio                 *string
	Interests           []string
	City                *string
	Country             *string
	RelationshipGoal    *string
	CulturalBackgrounds []string
	PhotoURL            *string
}

func (p FieldPatch) IsEmpty() bool {
	return p.DisplayName == nil &&
		p.DateOfBirth == nil &&
		p.Gender == nil &&
		p.Bio == nil &&
		len(p.Interests) == 0 &&
		p.City == nil &&
		p.Country == nil &&
		p.RelationshipGoal == nil &&
		len(p.CulturalBackgrounds) == 0 &&
		p.PhotoURL == nil
}

// Defaults returns the bootstrap profile created right after identity creation.
func Defaults(userID, email, displayName, authProvider string) Profile {
	return Profile{
		UserID:           userID,
		Email:            email,
		DisplayName:      displayName,
		AuthProvider:     authProvider,
		SubscriptionTier: TierFree,
	}
}
