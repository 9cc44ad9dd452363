package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sgazz/SuperMoment/internal/clock"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/models"
)

const adminEmail = "admin@example.com"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	repo       *models.MemoryRepo
	clock      *clock.Manual
	events     *EventService
	vouchers   *VoucherService
	redemption *RedemptionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := models.NewMemoryRepo()
	clk := clock.NewManual(testNow)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := helpers.NewKeyLock()
	return &testEnv{
		repo:       repo,
		clock:      clk,
		events:     NewEventService(repo, locks, clk, logger),
		vouchers:   NewVoucherService(repo, repo, locks, clk, logger),
		redemption: NewRedemptionService(repo, repo, locks, clk, logger),
	}
}

func (env *testEnv) createEvent(t *testing.T, maxParticipants *int) *models.Event {
	t.Helper()
	event, err := env.events.CreateEvent(context.Background(), &models.Event{
		Title:           "Rooftop launch",
		Date:            testNow.Add(48 * time.Hour),
		MaxParticipants: maxParticipants,
	}, adminEmail)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return event
}

func (env *testEnv) createVoucher(t *testing.T, event *models.Event, maxUses int, expiresAt *time.Time) *models.Voucher {
	t.Helper()
	voucher, err := env.vouchers.CreateVoucher(context.Background(), CreateVoucherInput{
		EventID:   event.ID,
		MaxUses:   maxUses,
		ExpiresAt: expiresAt,
	}, adminEmail)
	if err != nil {
		t.Fatalf("failed to create voucher: %v", err)
	}
	return voucher
}

func intPtr(n int) *int { return &n }
