package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
)

type profileTableModel struct {
	ID                  int64          `db:"id"`
	UserID              string         `db:"user_id"`
	Email               string         `db:"email"`
	DisplayName         sql.NullString `db:"display_name"`
	DateOfBirth         sql.NullString `db:"date_of_birth"`
	Gender              sql.NullString `db:"gender"`
	Bio                 sql.NullString `db:"bio"`
	Interests           pq.StringArray `db:"interests"`
	City                sql.NullString `db:"city"`
	Country             sql.NullString `db:"country"`
	RelationshipGoal    sql.NullString `db:"relationship_goal"`
	CulturalBackgrounds pq.StringArray `db:"cultural_backgrounds"`
	AuthProvider        sql.NullString `db:"auth_provider"`
	PhotoURL            sql.NullString `db:"photo_url"`
	SubscriptionTier    string         `db:"subscription_tier"`
	EmailVerified       bool           `db:"email_verified"`
	PhotoVerified       bool           `db:"photo_verified"`
	CompletionPercent   int            `db:"completion_percent"`
	LoginCount          int            `db:"login_count"`
	LastLoginAt         *time.Time     `db:"last_login_at"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
	DeletedAt           *time.Time     `db:"deleted_at"`
}

type profileInsertModel struct {
	UserID              string         `db:"user_id"`
	Email               string         `db:"email"`
	DisplayName         *string        `db:"display_name"`
	DateOfBirth         *string        `db:"date_of_birth"`
	Gender              *string        `db:"gender"`
	Bio                 *string        `db:"bio"`
	Interests           pq.StringArray `db:"interests"`
	City                *string        `db:"city"`
	Country             *string        `db:"country"`
	RelationshipGoal    *string        `db:"relationship_goal"`
	CulturalBackgrounds pq.StringArray `db:"cultural_backgrounds"`
	AuthProvider        *string        `db:"auth_provider"`
	PhotoURL            *string        `db:"photo_url"`
	SubscriptionTier    string         `db:"subscription_tier"`
	EmailVerified       bool           `db:"email_verified"`
	PhotoVerified       bool           `db:"photo_verified"`
	CompletionPercent   int            `db:"completion_percent"`
	LoginCount          int            `db:"login_count"`
	LastLoginAt         *time.Time     `db:"last_login_at"`
}

func profileFromRow(row profileTableModel) profile.Profile {
	return profile.Profile{
		UserID:              row.UserID,
		Email:               row.Email,
		DisplayName:         row.DisplayName.String,
		DateOfBirth:         row.DateOfBirth.String,
		Gender:              row.Gender.String,
		Bio:                 row.Bio.String,
		Interests:           []string(row.Interests),
		City:                row.City.String,
		Country:             row.Country.String,
		RelationshipGoal:    profile.RelationshipGoal(row.RelationshipGoal.String),
		CulturalBackgrounds: []string(row.CulturalBackgrounds),
		AuthProvider:        row.AuthProvider.String,
		PhotoURL:            row.PhotoURL.String,
		SubscriptionTier:    profile.SubscriptionTier(row.SubscriptionTier),
		EmailVerified:       row.EmailVerified,
		PhotoVerified:       row.PhotoVerified,
		CompletionPercent:   row.CompletionPercent,
		LoginCount:          row.LoginCount,
		LastLoginAt:         timeFromPointer(row.LastLoginAt),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func profileToInsertModel(member profile.Profile) profileInsertModel {
	return profileInsertModel{
		UserID:              member.UserID,
		Email:               member.Email,
		DisplayName:         optionalString(member.DisplayName),
		DateOfBirth:         optionalString(member.DateOfBirth),
		Gender:              optionalString(member.Gender),
		Bio:                 optionalString(member.Bio),
		Interests:           pq.StringArray(member.Interests),
		City:                optionalString(member.City),
		Country:             optionalString(member.Country),
		RelationshipGoal:    optionalString(string(member.RelationshipGoal)),
		CulturalBackgrounds: pq.StringArray(member.CulturalBackgrounds),
		AuthProvider:        optionalString(member.AuthProvider),
		PhotoURL:            optionalString(member.PhotoURL),
		SubscriptionTier:    string(member.SubscriptionTier),
		EmailVerified:       member.EmailVerified,
		PhotoVerified:       member.PhotoVerified,
		CompletionPercent:   member.CompletionPercent,
		LoginCount:          member.LoginCount,
		LastLoginAt:         optionalTime(member.LastLoginAt),
	}
}

func timeFromPointer(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}

func optionalTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	return &value
}
