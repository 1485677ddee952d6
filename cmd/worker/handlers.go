package main

import (
	"github.com/hibiken/asynq"

	bookingJob "github.com/edproton/xceltutors-next/internal/domains/booking/job"
	paymentJob "github.com/edproton/xceltutors-next/internal/domains/payment/job"
	"github.com/edproton/xceltutors-next/internal/shared"
	"github.com/edproton/xceltutors-next/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	completeElapsed      *bookingJob.CompleteElapsedHandler
	cleanupWebhookEvents *paymentJob.CleanupWebhookEventsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		completeElapsed:      bookingJob.NewCompleteElapsedHandler(c.BookingRepo, c.Clock),
		cleanupWebhookEvents: paymentJob.NewCleanupWebhookEventsHandler(c.WebhookRepo, c.Clock),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeCompleteElapsedBookings, h.completeElapsed.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupWebhookEvents, h.cleanupWebhookEvents.ProcessTask)
}
