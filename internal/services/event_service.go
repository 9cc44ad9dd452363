package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/clock"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/models"
)

type EventService struct {
	events models.EventRepo
	locks  *helpers.KeyLock
	clock  clock.Clock
	logger *slog.Logger
}

func NewEventService(events models.EventRepo, locks *helpers.KeyLock, clk clock.Clock, logger *slog.Logger) *EventService {
	return &EventService{
		events: events,
		locks:  locks,
		clock:  clk,
		logger: logger,
	}
}

// CreateEvent stores a new event owned by adminEmail. The admin becomes the
// first member of the roster.
func (es *EventService) CreateEvent(ctx context.Context, event *models.Event, adminEmail string) (*models.Event, error) {
	adminEmail = helpers.NormalizeIdentity(adminEmail)
	if adminEmail == "" {
		return nil, fmt.Errorf("%w: admin identity is required", models.ErrValidation)
	}

	now := es.clock.Now()
	event.ID = uuid.New()
	event.AdminEmail = adminEmail
	event.Title = helpers.StringTrim(event.Title)
	if event.Status == "" {
		event.Status = models.EventActive
	}
	event.ParticipantCount = 1
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := models.ValidateStruct(event); err != nil {
		return nil, err
	}

	created, err := es.events.CreateEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	es.logger.Info("Event created", "event_id", created.ID, "admin", adminEmail)
	return created, nil
}

func (es *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid event ID", models.ErrValidation)
	}
	event, err := es.events.GetEvent(ctx, id)
	if err != nil {
		return nil, wrapNotFound("event", err)
	}
	return event, nil
}

func (es *EventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return es.events.ListEvents(ctx)
}

func (es *EventService) ListEventsByAdmin(ctx context.Context, adminEmail string) ([]*models.Event, error) {
	return es.events.ListEventsByAdmin(ctx, helpers.NormalizeIdentity(adminEmail))
}

// ListEventsForParticipant returns every event whose roster contains identity.
func (es *EventService) ListEventsForParticipant(ctx context.Context, identity string) ([]*models.Event, error) {
	return es.events.ListEventsForParticipant(ctx, helpers.NormalizeIdentity(identity))
}

// UpdateEvent applies only the fields present in patch.
func (es *EventService) UpdateEvent(ctx context.Context, id uuid.UUID, patch *models.EventPatch, adminEmail string) (*models.Event, error) {
	if err := models.ValidateStruct(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	if patch.Title != nil {
		title := helpers.StringTrim(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", models.ErrValidation)
		}
		patch.Title = &title
	}

	unlock := es.locks.Lock(eventKey(id))
	defer unlock()

	event, err := loadOwnedEvent(ctx, es.events, id, helpers.NormalizeIdentity(adminEmail))
	if err != nil {
		return nil, err
	}
	if patch.MaxParticipants != nil && *patch.MaxParticipants < event.ParticipantCount {
		return nil, fmt.Errorf("%w: max_participants cannot be below the current participant count (%d)",
			models.ErrValidation, event.ParticipantCount)
	}

	updated, err := es.events.UpdateEvent(ctx, id, patch, es.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes the event, its roster and every voucher issued for it.
func (es *EventService) DeleteEvent(ctx context.Context, id uuid.UUID, adminEmail string) error {
	unlock := es.locks.Lock(eventKey(id))
	defer unlock()

	if _, err := loadOwnedEvent(ctx, es.events, id, helpers.NormalizeIdentity(adminEmail)); err != nil {
		return err
	}
	if err := es.events.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	es.logger.Info("Event deleted", "event_id", id)
	return nil
}

// ListParticipants exposes the roster to the event admin only.
func (es *EventService) ListParticipants(ctx context.Context, id uuid.UUID, adminEmail string) ([]string, error) {
	if _, err := loadOwnedEvent(ctx, es.events, id, helpers.NormalizeIdentity(adminEmail)); err != nil {
		return nil, err
	}
	return es.events.ListParticipants(ctx, id)
}
