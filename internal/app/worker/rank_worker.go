package worker

import (
	"context"
	"errors"
	"log"
	"time"
	"thundercipher/internal/domain/repository"
	"thundercipher/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RankWorker refreshes the denormalized rank column off the request
// path. Scoring pushes a token onto a Redis list; the worker blocks on
// it, coalesces any backlog into a single recompute, and rewrites only
// the rows whose rank actually changed.
type RankWorker struct {
	rdb         *redis.Client
	profileRepo repository.ProfileRepository
}

func NewRankWorker(rdb *redis.Client, profileRepo repository.ProfileRepository) *RankWorker {
	return &RankWorker{rdb: rdb, profileRepo: profileRepo}
}

func (w *RankWorker) Start(ctx context.Context) {
	log.Println("Rank worker started, listening to queue:", config.AppConfig.RankQueueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Rank worker stopping...")
			return
		default:
			_, err := w.rdb.BRPop(ctx, 0*time.Second, config.AppConfig.RankQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Rank worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", config.AppConfig.RankQueueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// One recompute covers every signal queued so far; drain the
			// backlog instead of recomputing once per solve.
			if err := w.rdb.Del(ctx, config.AppConfig.RankQueueName).Err(); err != nil {
				log.Printf("WARN: Failed to drain rank queue: %v", err)
			}

			w.recomputeWithLock(ctx)
		}
	}
}

func (w *RankWorker) recomputeWithLock(ctx context.Context) {
	lockValue := uuid.NewString()
	lockTTL := time.Duration(config.AppConfig.RankLockTTLSeconds) * time.Second

	ok, err := w.rdb.SetNX(ctx, config.AppConfig.RankLockKey, lockValue, lockTTL).Result()
	if err != nil {
		log.Printf("ERROR: Failed to attempt rank lock acquisition: %v", err)
		return
	}
	if !ok {
		// Another instance is recomputing right now; it will pick up the
		// state this signal referred to. Re-signal so nothing is lost.
		log.Println("INFO: Rank lock held elsewhere, re-queueing signal.")
		if err := w.rdb.RPush(ctx, config.AppConfig.RankQueueName, "recompute").Err(); err != nil {
			log.Printf("ERROR: Failed to re-queue rank signal: %v", err)
		}
		return
	}

	defer func() {
		script := redis.NewScript(`
            if redis.call("get", KEYS[1]) == ARGV[1] then
                return redis.call("del", KEYS[1])
            else
                return 0
            end
        `)
		deleted, err := script.Run(ctx, w.rdb, []string{config.AppConfig.RankLockKey}, lockValue).Result()
		if err != nil {
			log.Printf("ERROR: Failed to release rank lock: %v", err)
		} else if deleted.(int64) != 1 {
			log.Println("WARN: Rank lock was not released; it may have expired.")
		}
	}()

	w.recompute(ctx)
}

func (w *RankWorker) recompute(ctx context.Context) {
	started := time.Now()
	profiles, err := w.profileRepo.ListForRanking(ctx)
	if err != nil {
		log.Printf("ERROR: Rank recompute failed to list profiles: %v", err)
		return
	}

	updates := ComputeRanks(profiles)

	// Skip rows whose stored rank already matches; UpdateRanks also
	// guards with rank <> $1, this just avoids pointless round trips.
	current := make(map[string]int, len(profiles))
	for _, p := range profiles {
		current[p.ID] = p.Rank
	}
	changed := updates[:0]
	for _, u := range updates {
		if current[u.ProfileID] != u.Rank {
			changed = append(changed, u)
		}
	}

	if err := w.profileRepo.UpdateRanks(ctx, changed); err != nil {
		log.Printf("ERROR: Rank recompute failed to write ranks: %v", err)
		return
	}
	log.Printf("INFO: Rank recompute finished: %d profiles, %d updated, took %s", len(profiles), len(changed), time.Since(started))
}
