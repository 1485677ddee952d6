package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edproton/xceltutors-next/internal/domains/recurring/model"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresRecurringRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRecurringRepository(pool *pgxpool.Pool) RecurringRepository {
	return &postgresRecurringRepository{
		pool: pool,
	}
}

func (r *postgresRecurringRepository) GetActiveByHostWithTx(ctx context.Context, tx pgx.Tx, hostID uuid.UUID) ([]model.RecurringTemplate, error) {
	query := `
		SELECT t.id, t.host_id, t.created_by, t.title, t.description,
		       t.recurrence_pattern, t.duration_minutes, t.status,
		       t.created_at, t.updated_at
		FROM recurring_templates t
		WHERE t.host_id = $1 AND t.status = $2
	`

	rows, err := tx.Query(ctx, query, hostID, model.TemplateStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active templates: %w", err)
	}
	defer rows.Close()

	var templates []model.RecurringTemplate
	byID := map[uuid.UUID]int{}
	for rows.Next() {
		var t model.RecurringTemplate
		err := rows.Scan(
			&t.ID, &t.HostID, &t.CreatedBy, &t.Title, &t.Description,
			&t.RecurrencePattern, &t.DurationMinutes, &t.Status,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		byID[t.ID] = len(templates)
		templates = append(templates, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating templates: %w", rows.Err())
	}
	if len(templates) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}

	slotQuery := `
		SELECT id, template_id, weekday, time_of_day
		FROM recurring_time_slots
		WHERE template_id = ANY($1)
	`
	slotRows, err := tx.Query(ctx, slotQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list template slots: %w", err)
	}
	defer slotRows.Close()

	for slotRows.Next() {
		var s model.RecurringTimeSlot
		if err := slotRows.Scan(&s.ID, &s.TemplateID, &s.Weekday, &s.TimeOfDay); err != nil {
			return nil, fmt.Errorf("failed to scan template slot: %w", err)
		}
		if idx, ok := byID[s.TemplateID]; ok {
			templates[idx].TimeSlots = append(templates[idx].TimeSlots, s)
		}
	}
	if slotRows.Err() != nil {
		return nil, fmt.Errorf("error iterating template slots: %w", slotRows.Err())
	}

	return templates, nil
}

func (r *postgresRecurringRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, template *model.RecurringTemplate) error {
	query := `
		INSERT INTO recurring_templates (
			id, host_id, created_by, title, description,
			recurrence_pattern, duration_minutes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		template.ID,
		template.HostID,
		template.CreatedBy,
		template.Title,
		template.Description,
		template.RecurrencePattern,
		template.DurationMinutes,
		template.Status,
	).Scan(&template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range template.TimeSlots {
		slot := &template.TimeSlots[i]
		if slot.ID == uuid.Nil {
			slot.ID = uuid.New()
		}
		slot.TemplateID = template.ID
		batch.Queue(
			`INSERT INTO recurring_time_slots (id, template_id, weekday, time_of_day) VALUES ($1, $2, $3, $4)`,
			slot.ID, slot.TemplateID, slot.Weekday, slot.TimeOfDay,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range template.TimeSlots {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create template slot: %w", err)
		}
	}

	return nil
}
