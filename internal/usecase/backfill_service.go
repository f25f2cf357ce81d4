package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/amberhearts/amberhearts/internal/domain/profile"
	"github.com/amberhearts/amberhearts/internal/platform/logging"
)

type BackfillInput struct {
	MaxWorkers int
	Limit      int
}

type BackfillResult struct {
	ScannedCount int `json:"scanned_count"`
	UpdatedCount int `json:"updated_count"`
	FailedCount  int `json:"failed_count"`
	WorkerCount  int `json:"worker_count"`
}

const (
	defaultBackfillWorkers = 8
	defaultBackfillLimit   = 10000
)

// CompletionBackfillService recomputes stored completion percentages after a
// change to the field weighting. Admin-triggered via the internal job routes.
type CompletionBackfillService struct {
	profileRepo profile.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewCompletionBackfillService(profileRepo profile.Repository, logger *logging.Logger) *CompletionBackfillService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CompletionBackfillService{
		profileRepo: profileRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *CompletionBackfillService) Run(ctx context.Context, input BackfillInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompletionBackfillService.Run")
	defer span.End()

	workers := input.MaxWorkers
	if workers < 1 {
		workers = defaultBackfillWorkers
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultBackfillLimit
	}

	userIDs, err := s.profileRepo.ListUserIDs(ctx, limit)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("list profile user ids: %w", err)
	}
	if len(userIDs) == 0 {
		return BackfillResult{WorkerCount: workers}, nil
	}
	if workers > len(userIDs) {
		workers = len(userIDs)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var updated, failed atomic.Int64

	for _, userID := range userIDs {
		userID := userID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			changed, runErr := s.recomputeOne(ctx, userID)
			if runErr != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "completion backfill failed for profile", "user_id", userID, "error", runErr)
				return
			}
			if changed {
				updated.Add(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
		}
	}
	wg.Wait()

	return BackfillResult{
		ScannedCount: len(userIDs),
		UpdatedCount: int(updated.Load()),
		FailedCount:  int(failed.Load()),
		WorkerCount:  workers,
	}, nil
}

func (s *CompletionBackfillService) recomputeOne(ctx context.Context, userID string) (bool, error) {
	member, exists, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return false, nil
	}

	recomputed := profile.CompletionPercent(member)
	if recomputed == member.CompletionPercent {
		return false, nil
	}

	member.CompletionPercent = recomputed
	member.UpdatedAt = s.now().UTC()
	if err := s.profileRepo.Update(ctx, member); err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}

	return true, nil
}
