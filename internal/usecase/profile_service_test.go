package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/infrastructure/repository/memory"
)

func TestProfileService_Get_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewProfileService(memory.NewProfileRepository())

	_, err := svc.Get(context.Background(), "user-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileService_UpdateFields_EmptyPatchRejected(t *testing.T) {
	t.Parallel()

	svc := NewProfileService(memory.NewProfileRepository())

	_, err := svc.UpdateFields(context.Background(), "user-1", profile.FieldPatch{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty patch, got %v", err)
	}
}

func TestProfileService_UpdateFields_MergeNeverClearsFields(t *testing.T) {
	t.Parallel()

	profileRepo := memory.NewProfileRepository()
	svc := NewProfileService(profileRepo)

	member := profile.Defaults("user-1", "amira@example.com", "Amira", "email")
	member.Bio = "Original bio."
	member.Interests = []string{"books"}
	if _, _, err := profileRepo.CreateIfAbsent(context.Background(), member); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	empty := "   "
	city := "Bandung"
	updated, err := svc.UpdateFields(context.Background(), "user-1", profile.FieldPatch{
		Bio:  &empty,
		City: &city,
	})
	if err != nil {
		t.Fatalf("update fields: %v", err)
	}
	if updated.Bio != "Original bio." {
		t.Fatalf("whitespace patch cleared the bio: %q", updated.Bio)
	}
	if updated.City != "Bandung" {
		t.Fatalf("city not merged: %q", updated.City)
	}
	if updated.CompletionPercent != profile.CompletionPercent(updated) {
		t.Fatalf("completion percent not recomputed")
	}
}

func TestProfileService_UpdateFields_DeduplicatesTags(t *testing.T) {
	t.Parallel()

	profileRepo := memory.NewProfileRepository()
	svc := NewProfileService(profileRepo)

	if _, _, err := profileRepo.CreateIfAbsent(context.Background(), profile.Defaults("user-2", "dara@example.com", "Dara", "email")); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	updated, err := svc.UpdateFields(context.Background(), "user-2", profile.FieldPatch{
		Interests: []string{"Jazz", "jazz", " hiking ", ""},
	})
	if err != nil {
		t.Fatalf("update fields: %v", err)
	}
	if len(updated.Interests) != 2 {
		t.Fatalf("expected deduplicated interests, got %v", updated.Interests)
	}
}
