package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/edproton/xceltutors-next/internal/domains/booking/repository"
	"github.com/edproton/xceltutors-next/pkg/clock"
	"github.com/edproton/xceltutors-next/pkg/logger"
)

// CompleteElapsedPayload optionally pins the sweep instant; an empty
// payload sweeps at the handler's clock.
type CompleteElapsedPayload struct {
	Now time.Time `json:"now,omitempty"`
}

// CompleteElapsedHandler flips SCHEDULED bookings whose end time has
// passed to COMPLETED. The commands treat COMPLETED as read-only, so
// this sweep is the only writer of that status.
type CompleteElapsedHandler struct {
	bookingRepo repository.BookingRepository
	clock       clock.Clock
}

func NewCompleteElapsedHandler(bookingRepo repository.BookingRepository, clk clock.Clock) *CompleteElapsedHandler {
	return &CompleteElapsedHandler{
		bookingRepo: bookingRepo,
		clock:       clk,
	}
}

func (h *CompleteElapsedHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload CompleteElapsedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal fail due to ", err)
		return err
	}

	now := h.clock.Now().UTC()
	if !payload.Now.IsZero() {
		now = payload.Now
	}

	completed, err := h.bookingRepo.CompleteElapsed(ctx, now)
	if err != nil {
		logger.Error("Complete elapsed bookings failed due to ", err)
		return err
	}

	log.Info().
		Time("swept_at", now).
		Int64("bookings_completed", completed).
		Msg("Completed elapsed bookings")

	return nil
}
