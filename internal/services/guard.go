package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/models"
)

func eventKey(id uuid.UUID) string {
	return "event:" + id.String()
}

func voucherKey(id uuid.UUID) string {
	return "voucher:" + id.String()
}

// authorizeEventAdmin allows mutation only by the identity that created the event.
func authorizeEventAdmin(event *models.Event, identity string) error {
	if event.AdminEmail != identity {
		return fmt.Errorf("%w: only the event admin can manage this event", models.ErrForbidden)
	}
	return nil
}

// loadOwnedEvent checks existence first and ownership second, so callers can
// tell a missing event (ErrNotFound) from someone else's (ErrForbidden).
func loadOwnedEvent(ctx context.Context, events models.EventRepo, id uuid.UUID, identity string) (*models.Event, error) {
	event, err := events.GetEvent(ctx, id)
	if err != nil {
		return nil, wrapNotFound("event", err)
	}
	if err := authorizeEventAdmin(event, identity); err != nil {
		return nil, err
	}
	return event, nil
}

// wrapNotFound names the missing entity while keeping errors.Is(err, ErrNotFound).
func wrapNotFound(entity string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s %w", entity, models.ErrNotFound)
	}
	return err
}
