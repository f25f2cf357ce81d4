package usecase

import (
	"context"
	"testing"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/infrastructure/repository/memory"
	"github.com/amberhearts/amberhearts/internal/platform/logging"
)

func TestCompletionBackfillService_Run_RecomputesStalePercentages(t *testing.T) {
	t.Parallel()

	profileRepo := memory.NewProfileRepository()
	svc := NewCompletionBackfillService(profileRepo, logging.NewNop())

	stale := profile.Defaults("user-1", "amira@example.com", "Amira", "email")
	stale.Bio = "Chess and chai."
	stale.CompletionPercent = 0 // out of date on purpose
	if _, _, err := profileRepo.CreateIfAbsent(context.Background(), stale); err != nil {
		t.Fatalf("seed stale profile: %v", err)
	}

	fresh := profile.Defaults("user-2", "dara@example.com", "Dara", "email")
	fresh.CompletionPercent = profile.CompletionPercent(fresh)
	if _, _, err := profileRepo.CreateIfAbsent(context.Background(), fresh); err != nil {
		t.Fatalf("seed fresh profile: %v", err)
	}

	result, err := svc.Run(context.Background(), BackfillInput{MaxWorkers: 2})
	if err != nil {
		t.Fatalf("run backfill: %v", err)
	}
	if result.ScannedCount != 2 {
		t.Fatalf("unexpected scanned count: %d", result.ScannedCount)
	}
	if result.UpdatedCount != 1 {
		t.Fatalf("unexpected updated count: %d", result.UpdatedCount)
	}
	if result.FailedCount != 0 {
		t.Fatalf("unexpected failed count: %d", result.FailedCount)
	}
	if result.WorkerCount != 2 {
		t.Fatalf("unexpected worker count: %d", result.WorkerCount)
	}

	member, _, err := profileRepo.GetByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if member.CompletionPercent != profile.CompletionPercent(member) {
		t.Fatalf("stored percent still stale: %d", member.CompletionPercent)
	}
	if member.CompletionPercent == 0 {
		t.Fatalf("expected recomputed percent > 0")
	}
}

func TestCompletionBackfillService_Run_EmptyRepository(t *testing.T) {
	t.Parallel()

	svc := NewCompletionBackfillService(memory.NewProfileRepository(), logging.NewNop())

	result, err := svc.Run(context.Background(), BackfillInput{})
	if err != nil {
		t.Fatalf("run backfill: %v", err)
	}
	if result.ScannedCount != 0 || result.UpdatedCount != 0 {
		t.Fatalf("unexpected result for empty repo: %+v", result)
	}
}

func TestCompletionBackfillService_Run_WorkersCappedByProfileCount(t *testing.T) {
	t.Parallel()

	profileRepo := memory.NewProfileRepository()
	if _, _, err := profileRepo.CreateIfAbsent(context.Background(), profile.Defaults("user-1", "a@example.com", "A", "email")); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	svc := NewCompletionBackfillService(profileRepo, logging.NewNop())

	result, err := svc.Run(context.Background(), BackfillInput{MaxWorkers: 32})
	if err != nil {
		t.Fatalf("run backfill: %v", err)
	}
	if result.WorkerCount != 1 {
		t.Fatalf("worker count must be capped at profile count, got %d", result.WorkerCount)
	}
}
