package job

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/edproton/xceltutors-next/internal/domains/payment/repository"
	"github.com/edproton/xceltutors-next/pkg/clock"
	"github.com/edproton/xceltutors-next/pkg/logger"
)

// DefaultRetentionDays keeps the journal long past the gateway's
// redelivery window.
const DefaultRetentionDays = 30

type CleanupWebhookEventsPayload struct {
	OlderThanDays int `json:"older_than_days,omitempty"`
}

// CleanupWebhookEventsHandler prunes the processed-event journal. The
// Redis replay markers expire on their own.
type CleanupWebhookEventsHandler struct {
	webhookRepo repository.WebhookEventRepository
	clock       clock.Clock
}

func NewCleanupWebhookEventsHandler(webhookRepo repository.WebhookEventRepository, clk clock.Clock) *CleanupWebhookEventsHandler {
	return &CleanupWebhookEventsHandler{
		webhookRepo: webhookRepo,
		clock:       clk,
	}
}

func (h *CleanupWebhookEventsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload CleanupWebhookEventsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal fail due to ", err)
		return err
	}

	days := payload.OlderThanDays
	if days <= 0 {
		days = DefaultRetentionDays
	}

	cutoff := h.clock.Now().UTC().AddDate(0, 0, -days)
	pruned, err := h.webhookRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("Cleanup webhook events failed due to ", err)
		return err
	}

	log.Info().
		Time("cutoff", cutoff).
		Int64("events_pruned", pruned).
		Msg("Pruned webhook event journal")

	return nil
}
