package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"salonBack/internal/models"
	"salonBack/internal/services"
)

const remarketingRunTimeout = 5 * time.Minute

// startRemarketingCron runs the remarketing pass on the configured
// schedule. The returned func stops the scheduler.
func startRemarketingCron(schedule string, svc *services.RemarketingService, infoLog, errorLog *log.Logger) func() {
	if svc == nil || schedule == "" {
		return func() {}
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), remarketingRunTimeout)
		defer cancel()

		result, err := svc.Run(runCtx)
		if err != nil {
			if errors.Is(err, models.ErrRunInProgress) {
				infoLog.Println("remarketing cron: previous run still in progress, skipping")
				return
			}
			errorLog.Printf("remarketing cron: run failed: %v", err)
			return
		}
		if result.SentCount > 0 || len(result.Failures) > 0 {
			infoLog.Printf("remarketing cron: sent %d messages, %d failures", result.SentCount, len(result.Failures))
		}
	})
	if err != nil {
		errorLog.Printf("remarketing cron: invalid schedule %q: %v", schedule, err)
		return func() {}
	}

	c.Start()
	infoLog.Printf("remarketing cron started with schedule %q", schedule)

	return func() {
		ctx := c.Stop()
		<-ctx.Done()
	}
}
