package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	qb "github.com/amberhearts/amberhearts/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	query, args, err := qb.Select("*").
		From("profiles").
		Where(
			qb.Eq("user_id", strings.TrimSpace(userID)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}

	return profileFromRow(row), true, nil
}

// CreateIfAbsent inserts the profile unless one already exists for the user.
// It reports whether this call created the row, so replayed signups stay
// no-ops.
func (r *ProfileRepository) CreateIfAbsent(ctx context.Context, member profile.Profile) (profile.Profile, bool, error) {
	query, args, err := qb.InsertModel("profiles", profileToInsertModel(member),
		"ON CONFLICT (user_id) WHERE deleted_at IS NULL DO NOTHING")
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build create profile query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("create profile: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("create profile rows affected: %w", err)
	}

	stored, exists, err := r.GetByUserID(ctx, member.UserID)
	if err != nil {
		return profile.Profile{}, false, err
	}
	if !exists {
		return profile.Profile{}, false, fmt.Errorf("profile %s missing after insert", member.UserID)
	}

	return stored, inserted > 0, nil
}

func (r *ProfileRepository) Update(ctx context.Context, member profile.Profile) error {
	query, args, err := qb.Update("profiles").
		Set("email", member.Email).
		Set("display_name", optionalString(member.DisplayName)).
		Set("date_of_birth", optionalString(member.DateOfBirth)).
		Set("gender", optionalString(member.Gender)).
		Set("bio", optionalString(member.Bio)).
		Set("interests", pq.StringArray(member.Interests)).
		Set("city", optionalString(member.City)).
		Set("country", optionalString(member.Country)).
		Set("relationship_goal", optionalString(string(member.RelationshipGoal))).
		Set("cultural_backgrounds", pq.StringArray(member.CulturalBackgrounds)).
		Set("auth_provider", optionalString(member.AuthProvider)).
		Set("photo_url", optionalString(member.PhotoURL)).
		Set("subscription_tier", string(member.SubscriptionTier)).
		Set("email_verified", member.EmailVerified).
		Set("photo_verified", member.PhotoVerified).
		Set("completion_percent", member.CompletionPercent).
		Set("login_count", member.LoginCount).
		Set("last_login_at", optionalTime(member.LastLoginAt)).
		Set("updated_at", member.UpdatedAt).
		Where(
			qb.Eq("user_id", member.UserID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update profile query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	query, args, err := qb.Select("user_id").
		From("profiles").
		Where(qb.IsNull("deleted_at")).
		OrderBy("created_at").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list profile ids query: %w", err)
	}

	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, args...); err != nil {
		return nil, fmt.Errorf("list profile ids: %w", err)
	}

	return userIDs, nil
}
