package shared

// Background task types routed through asynq.
const (
	TypeCompleteElapsedBookings = "booking:complete_elapsed"
	TypeCleanupWebhookEvents    = "payment:cleanup_webhook_events"
)

// Queue names, ordered by worker priority.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
