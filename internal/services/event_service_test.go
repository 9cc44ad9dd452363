package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/models"
)

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("admin joins their own event", func(t *testing.T) {
		env := newTestEnv(t)
		event, err := env.events.CreateEvent(ctx, &models.Event{Title: "  Launch  "}, " admin@example.com ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if event.AdminEmail != adminEmail {
			t.Fatalf("expected trimmed admin, got %q", event.AdminEmail)
		}
		if event.Title != "Launch" || event.Status != models.EventActive {
			t.Fatalf("expected trimmed title and active status, got %q and %s", event.Title, event.Status)
		}
		if event.ParticipantCount != 1 || !event.CreatedAt.Equal(testNow) {
			t.Fatalf("unexpected initial state %+v", event)
		}
		participants, _ := env.events.ListParticipants(ctx, event.ID, adminEmail)
		if len(participants) != 1 || participants[0] != adminEmail {
			t.Fatalf("expected admin-only roster, got %v", participants)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		env := newTestEnv(t)
		cases := []*models.Event{
			{Title: ""},
			{Title: "ok", MaxParticipants: intPtr(0)},
			{Title: "ok", Status: "archived"},
			{Title: "ok", Coordinates: &models.Coordinates{Latitude: 91}},
		}
		for _, event := range cases {
			if _, err := env.events.CreateEvent(ctx, event, adminEmail); !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected ErrValidation for %+v, got %v", event, err)
			}
		}
		if _, err := env.events.CreateEvent(ctx, &models.Event{Title: "ok"}, ""); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation without an admin, got %v", err)
		}
	})
}

func TestEventService_Authorization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	title := "Renamed"

	t.Run("missing event is not found before ownership is checked", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.events.UpdateEvent(ctx, uuid.New(), &models.EventPatch{Title: &title}, "someone@example.com")
		if !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := env.events.DeleteEvent(ctx, uuid.New(), adminEmail); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("only the admin may mutate", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)

		if _, err := env.events.UpdateEvent(ctx, event.ID, &models.EventPatch{Title: &title}, "mallory@example.com"); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden on update, got %v", err)
		}
		if err := env.events.DeleteEvent(ctx, event.ID, "mallory@example.com"); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden on delete, got %v", err)
		}
		if _, err := env.events.ListParticipants(ctx, event.ID, "mallory@example.com"); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden on roster, got %v", err)
		}
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("applies only present fields", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)
		env.clock.Advance(time.Hour)

		location := "Pier 39"
		updated, err := env.events.UpdateEvent(ctx, event.ID, &models.EventPatch{Location: &location}, adminEmail)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Location != location || updated.Title != event.Title {
			t.Fatalf("expected only location to change, got %+v", updated)
		}
		if !updated.UpdatedAt.After(event.UpdatedAt) {
			t.Fatal("expected updated_at to move forward")
		}
	})

	t.Run("rejects empty patches and blank titles", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)

		if _, err := env.events.UpdateEvent(ctx, event.ID, &models.EventPatch{}, adminEmail); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation for empty patch, got %v", err)
		}
		blank := "   "
		if _, err := env.events.UpdateEvent(ctx, event.ID, &models.EventPatch{Title: &blank}, adminEmail); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation for blank title, got %v", err)
		}
	})

	t.Run("capacity cannot drop below the roster", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)
		voucher := env.createVoucher(t, event, 5, nil)
		for _, who := range []string{"bob@example.com", "carol@example.com"} {
			if r, _ := env.redemption.RedeemVoucher(ctx, voucher.Code, who); !r.Success {
				t.Fatalf("expected %s to join, got %+v", who, r)
			}
		}

		if _, err := env.events.UpdateEvent(ctx, event.ID, &models.EventPatch{MaxParticipants: intPtr(2)}, adminEmail); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		updated, err := env.events.UpdateEvent(ctx, event.ID, &models.EventPatch{MaxParticipants: intPtr(3)}, adminEmail)
		if err != nil {
			t.Fatalf("expected a limit equal to the roster to be accepted, got %v", err)
		}
		if *updated.MaxParticipants != 3 {
			t.Fatalf("expected max_participants 3, got %d", *updated.MaxParticipants)
		}
	})
}

func TestEventService_Listings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv(t)
	own := env.createEvent(t, nil)
	foreign, err := env.events.CreateEvent(ctx, &models.Event{Title: "Other"}, "host@example.com")
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	voucher, err := env.vouchers.CreateVoucher(ctx, CreateVoucherInput{EventID: foreign.ID}, "host@example.com")
	if err != nil {
		t.Fatalf("failed to create voucher: %v", err)
	}
	if r, _ := env.redemption.RedeemVoucher(ctx, voucher.Code, adminEmail); !r.Success {
		t.Fatalf("expected admin to join the foreign event, got %+v", r)
	}

	mine, _ := env.events.ListEventsByAdmin(ctx, adminEmail)
	if len(mine) != 1 || mine[0].ID != own.ID {
		t.Fatalf("expected only the owned event, got %d", len(mine))
	}
	joined, _ := env.events.ListEventsForParticipant(ctx, adminEmail)
	if len(joined) != 2 {
		t.Fatalf("expected 2 joined events, got %d", len(joined))
	}
	if _, err := env.events.GetEvent(ctx, uuid.New()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
