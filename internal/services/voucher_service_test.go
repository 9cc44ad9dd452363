package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/models"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestVoucherService_CreateVoucher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues an active single-use voucher by default", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)

		voucher, err := env.vouchers.CreateVoucher(ctx, CreateVoucherInput{EventID: event.ID, Description: " VIP "}, adminEmail)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !codePattern.MatchString(voucher.Code) {
			t.Fatalf("unexpected code %q", voucher.Code)
		}
		if voucher.MaxUses != 1 || voucher.UsedCount != 0 || voucher.Status != models.VoucherActive {
			t.Fatalf("unexpected initial state %+v", voucher)
		}
		if voucher.Description != "VIP" {
			t.Fatalf("expected trimmed description, got %q", voucher.Description)
		}
	})

	t.Run("codes never collide", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)

		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			v := env.createVoucher(t, event, 1, nil)
			if seen[v.Code] {
				t.Fatalf("duplicate code %q", v.Code)
			}
			seen[v.Code] = true
		}
	})

	t.Run("event must exist and belong to the caller", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)

		if _, err := env.vouchers.CreateVoucher(ctx, CreateVoucherInput{EventID: uuid.New()}, adminEmail); !errors.Is(err, models.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := env.vouchers.CreateVoucher(ctx, CreateVoucherInput{EventID: event.ID}, "mallory@example.com"); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("rejects bad limits and past expiry", func(t *testing.T) {
		env := newTestEnv(t)
		event := env.createEvent(t, nil)
		past := testNow.Add(-time.Minute)

		inputs := []CreateVoucherInput{
			{EventID: event.ID, MaxUses: -1},
			{EventID: event.ID, ExpiresAt: &past},
			{EventID: uuid.Nil},
		}
		for _, in := range inputs {
			if _, err := env.vouchers.CreateVoucher(ctx, in, adminEmail); !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected ErrValidation for %+v, got %v", in, err)
			}
		}
	})
}

func TestVoucherService_Access(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv(t)
	event := env.createEvent(t, nil)
	voucher := env.createVoucher(t, event, 2, nil)

	if _, err := env.vouchers.GetOwnedVoucher(ctx, voucher.Code, "mallory@example.com"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	got, err := env.vouchers.GetOwnedVoucher(ctx, " "+voucher.Code+" ", adminEmail)
	if err != nil || got.ID != voucher.ID {
		t.Fatalf("expected the voucher, got %v, %v", got, err)
	}
	if _, err := env.vouchers.GetVoucherByCode(ctx, "NOPE0000"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, err := env.vouchers.ListVouchersForEvent(ctx, event.ID, adminEmail)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one voucher, got %d, %v", len(list), err)
	}
	if _, err := env.vouchers.ListVouchersForEvent(ctx, event.ID, "mallory@example.com"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.vouchers.ListVouchersForEvent(ctx, uuid.New(), "mallory@example.com"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before ownership, got %v", err)
	}
}

func TestVoucherService_UpdateVoucher(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("raising the limit reopens a used voucher", func(t *testing.T) {
		env := newTestEnv(t)
		voucher := env.createVoucher(t, env.createEvent(t, nil), 1, nil)
		if r, _ := env.redemption.RedeemVoucher(ctx, voucher.Code, "bob@example.com"); !r.Success {
			t.Fatalf("expected redemption to succeed, got %+v", r)
		}

		updated, err := env.vouchers.UpdateVoucher(ctx, voucher.Code, &models.VoucherPatch{MaxUses: intPtr(2)}, adminEmail)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Status != models.VoucherActive {
			t.Fatalf("expected active, got %s", updated.Status)
		}
		if r, _ := env.redemption.RedeemVoucher(ctx, voucher.Code, "carol@example.com"); !r.Success {
			t.Fatalf("expected second redemption to succeed, got %+v", r)
		}
	})

	t.Run("limit cannot drop below used count", func(t *testing.T) {
		env := newTestEnv(t)
		voucher := env.createVoucher(t, env.createEvent(t, nil), 3, nil)
		for _, who := range []string{"bob@example.com", "carol@example.com"} {
			_, _ = env.redemption.RedeemVoucher(ctx, voucher.Code, who)
		}

		if _, err := env.vouchers.UpdateVoucher(ctx, voucher.Code, &models.VoucherPatch{MaxUses: intPtr(1)}, adminEmail); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects empty patches, past expiry and strangers", func(t *testing.T) {
		env := newTestEnv(t)
		voucher := env.createVoucher(t, env.createEvent(t, nil), 1, nil)
		past := testNow.Add(-time.Hour)

		if _, err := env.vouchers.UpdateVoucher(ctx, voucher.Code, &models.VoucherPatch{}, adminEmail); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation for empty patch, got %v", err)
		}
		if _, err := env.vouchers.UpdateVoucher(ctx, voucher.Code, &models.VoucherPatch{ExpiresAt: &past}, adminEmail); !errors.Is(err, models.ErrValidation) {
			t.Fatalf("expected ErrValidation for past expiry, got %v", err)
		}
		desc := "hacked"
		if _, err := env.vouchers.UpdateVoucher(ctx, voucher.Code, &models.VoucherPatch{Description: &desc}, "mallory@example.com"); !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("cancel is final", func(t *testing.T) {
		env := newTestEnv(t)
		voucher := env.createVoucher(t, env.createEvent(t, nil), 1, nil)

		cancelled, err := env.vouchers.CancelVoucher(ctx, voucher.Code, adminEmail)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cancelled.Status != models.VoucherCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}
		reopened, err := env.vouchers.UpdateVoucher(ctx, voucher.Code, &models.VoucherPatch{MaxUses: intPtr(5)}, adminEmail)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if reopened.Status != models.VoucherCancelled {
			t.Fatalf("expected cancelled to stick, got %s", reopened.Status)
		}
	})
}
