package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	bookingJob "github.com/edproton/xceltutors-next/internal/domains/booking/job"
	paymentJob "github.com/edproton/xceltutors-next/internal/domains/payment/job"
	"github.com/edproton/xceltutors-next/internal/shared"
	"github.com/edproton/xceltutors-next/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
	}
}

func (s *Scheduler) RegisterJobs() error {
	if err := s.registerCompleteElapsedBookingsJob(); err != nil {
		return err
	}

	if err := s.registerCleanupWebhookEventsJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Complete Elapsed Bookings (Every 15 minutes)
// ================================================
func (s *Scheduler) registerCompleteElapsedBookingsJob() error {
	payload, err := json.Marshal(bookingJob.CompleteElapsedPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCompleteElapsedBookings, payload)

	_, err = s.scheduler.Register(
		"*/15 * * * *", // Every 15 minutes, matching the slot grid
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CompleteElapsedBookings job", err)
		return err
	}

	logger.Info("✓ Registered CompleteElapsedBookings: every 15 minutes", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Cleanup Webhook Event Journal (Daily at 3 AM)
// ================================================
func (s *Scheduler) registerCleanupWebhookEventsJob() error {
	payload, err := json.Marshal(paymentJob.CleanupWebhookEventsPayload{
		OlderThanDays: paymentJob.DefaultRetentionDays,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupWebhookEvents, payload)

	_, err = s.scheduler.Register(
		"0 3 * * *", // Daily at 3 AM, low traffic
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CleanupWebhookEvents job", err)
		return err
	}

	logger.Info("✓ Registered CleanupWebhookEvents: daily at 3 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
