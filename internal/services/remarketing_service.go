package services

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"salonBack/internal/line"
	"salonBack/internal/models"
)

const (
	remarketingLockKey = "remarketing:run_lock"
	remarketingLockTTL = 10 * time.Minute
)

type RemarketingRuleStore interface {
	ListActive(ctx context.Context) ([]models.RemarketingRule, error)
}

type RemarketingUserStore interface {
	ListEligible(ctx context.Context) ([]models.LineUser, error)
}

type SendLogStore interface {
	ExistingPairs(ctx context.Context) (map[models.SendKey]struct{}, error)
	Record(ctx context.Context, userID, ruleID int, at time.Time) (bool, error)
	Release(ctx context.Context, userID, ruleID int) error
}

// RemarketingService delivers hour-offset follow-up messages to mid-funnel
// users, at most once per (user, rule) pair ever. The send log's unique
// constraint is the authoritative guard; the in-memory pair set and the redis
// run lock are optimizations on top of it.
type RemarketingService struct {
	Rules    RemarketingRuleStore
	Users    RemarketingUserStore
	SendLog  SendLogStore
	Sender   MessageSender
	Redis    *redis.Client // optional overlapping-run lock
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	Now      func() time.Time
}

func (s *RemarketingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Run executes one scheduler pass. Individual send failures are accumulated
// in the result, never aborting the rest of the scan.
func (s *RemarketingService) Run(ctx context.Context) (models.RemarketingRunResult, error) {
	if s.Redis != nil {
		acquired, err := s.Redis.SetNX(ctx, remarketingLockKey, 1, remarketingLockTTL).Result()
		if err != nil {
			// the lock is best-effort; the send log stays correct without it
			s.ErrorLog.Printf("remarketing: run lock unavailable: %v", err)
		} else if !acquired {
			return models.RemarketingRunResult{}, models.ErrRunInProgress
		} else {
			defer s.Redis.Del(context.WithoutCancel(ctx), remarketingLockKey)
		}
	}

	var result models.RemarketingRunResult

	rules, err := s.Rules.ListActive(ctx)
	if err != nil {
		return result, err
	}
	if len(rules) == 0 {
		// nothing can fire, skip the user scan entirely
		return result, nil
	}
	result.ActiveMessages = len(rules)

	candidates, err := s.Users.ListEligible(ctx)
	if err != nil {
		return result, err
	}
	var users []models.LineUser
	for _, u := range candidates {
		if u.RemarketingEligible() {
			users = append(users, u)
		}
	}
	result.EligibleUsers = len(users)

	sent, err := s.SendLog.ExistingPairs(ctx)
	if err != nil {
		return result, err
	}

	now := s.now()
	for _, u := range users {
		elapsedHours := now.Sub(*u.InterestedAt).Hours()
		for _, rule := range rules {
			if elapsedHours < float64(rule.HoursAfterInterest) {
				continue
			}
			key := models.SendKey{LineUserID: u.ID, RuleID: rule.ID}
			if _, done := sent[key]; done {
				continue
			}

			// claim the pair in the ledger first: a crash between claim and
			// send loses at most one message, never duplicates one
			inserted, err := s.SendLog.Record(ctx, u.ID, rule.ID, now)
			if err != nil {
				result.Failures = append(result.Failures, models.RemarketingFailure{
					LineUserID: u.ID, RuleID: rule.ID, Error: err.Error(),
				})
				continue
			}
			sent[key] = struct{}{}
			if !inserted {
				// a concurrent run already claimed it
				continue
			}

			if err := s.Sender.Push(ctx, u.LineUserID, line.NewText(rule.MessageContent)); err != nil {
				result.Failures = append(result.Failures, models.RemarketingFailure{
					LineUserID: u.ID, RuleID: rule.ID, Error: err.Error(),
				})
				// release the claim so the next run retries this pair
				if relErr := s.SendLog.Release(ctx, u.ID, rule.ID); relErr != nil {
					s.ErrorLog.Printf("remarketing: release claim user=%d rule=%d: %v", u.ID, rule.ID, relErr)
				}
				continue
			}
			result.SentCount++
		}
	}

	s.InfoLog.Printf("remarketing: run finished, rules=%d eligible=%d sent=%d failed=%d",
		result.ActiveMessages, result.EligibleUsers, result.SentCount, len(result.Failures))
	return result, nil
}
