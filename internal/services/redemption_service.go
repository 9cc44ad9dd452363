package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sgazz/SuperMoment/internal/clock"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/metrics"
	"github.com/sgazz/SuperMoment/internal/models"
)

// RedemptionService exchanges voucher codes for event membership.
//
// A redemption holds the voucher lock for its whole run and the event lock
// from the event lookup to the commit, always in that order. Attempts on the
// same voucher are serialized, and vouchers of the same event cannot both
// take the last seat.
type RedemptionService struct {
	vouchers models.VoucherRepo
	events   models.EventRepo
	locks    *helpers.KeyLock
	clock    clock.Clock
	logger   *slog.Logger
}

func NewRedemptionService(vouchers models.VoucherRepo, events models.EventRepo, locks *helpers.KeyLock, clk clock.Clock, logger *slog.Logger) *RedemptionService {
	return &RedemptionService{
		vouchers: vouchers,
		events:   events,
		locks:    locks,
		clock:    clk,
		logger:   logger,
	}
}

// RedeemVoucher runs the redemption checks in order and commits on success.
// Rule violations come back as a rejected result; the error is only set when
// the underlying store fails.
func (rs *RedemptionService) RedeemVoucher(ctx context.Context, code, identity string) (result *models.RedemptionResult, err error) {
	start := time.Now()
	defer func() {
		status, outcome := "error", "error"
		if err == nil {
			if result.Success {
				status, outcome = "success", "success"
			} else {
				status, outcome = "rejected", string(result.Reason)
			}
		}
		metrics.RecordRedemption(status, outcome, time.Since(start).Seconds())
	}()

	identity = helpers.NormalizeIdentity(identity)
	if identity == "" {
		return nil, fmt.Errorf("%w: participant identity is required", models.ErrValidation)
	}
	code = helpers.NormalizeVoucherCode(code)

	result, err = rs.redeem(ctx, code, identity)
	if err != nil {
		rs.logger.Error("Voucher redemption failed", "code", code, "identity", identity, "error", err)
		return nil, err
	}
	if result.Success {
		rs.logger.Info("Voucher redeemed",
			"voucher_id", result.Voucher.ID,
			"event_id", result.Event.ID,
			"identity", identity,
			"used_count", result.Voucher.UsedCount,
		)
	} else {
		rs.logger.Info("Voucher redemption rejected", "code", code, "identity", identity, "reason", result.Reason)
	}
	return result, nil
}

func (rs *RedemptionService) redeem(ctx context.Context, code, identity string) (*models.RedemptionResult, error) {
	found, err := rs.vouchers.GetVoucherByCode(ctx, code)
	if errors.Is(err, models.ErrNotFound) {
		return models.Rejected(models.ReasonInvalidCode), nil
	}
	if err != nil {
		return nil, err
	}

	unlockVoucher := rs.locks.Lock(voucherKey(found.ID))
	defer unlockVoucher()

	// Re-read under the lock; a concurrent redemption may have moved it on.
	voucher, err := rs.vouchers.GetVoucher(ctx, found.ID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Rejected(models.ReasonInvalidCode), nil
	}
	if err != nil {
		return nil, err
	}

	// A status already settled by an earlier attempt reports the same reason
	// that attempt would have.
	switch voucher.Status {
	case models.VoucherActive:
	case models.VoucherUsed:
		return models.Rejected(models.ReasonUsageLimit), nil
	case models.VoucherExpired:
		return models.Rejected(models.ReasonExpired), nil
	default:
		return models.Rejected(models.ReasonInactive), nil
	}

	// Expiry and exhaustion repair the stored status even though the attempt fails.
	if voucher.IsExpired(rs.clock.Now()) {
		if err := rs.vouchers.MarkExpired(ctx, voucher.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return models.Rejected(models.ReasonExpired), nil
	}
	if voucher.IsExhausted() {
		if err := rs.vouchers.MarkUsed(ctx, voucher.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return models.Rejected(models.ReasonUsageLimit), nil
	}

	unlockEvent := rs.locks.Lock(eventKey(voucher.EventID))
	defer unlockEvent()

	event, err := rs.events.GetEvent(ctx, voucher.EventID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Rejected(models.ReasonEventNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	member, err := rs.events.IsParticipant(ctx, event.ID, identity)
	if errors.Is(err, models.ErrNotFound) {
		return models.Rejected(models.ReasonEventNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	if member {
		return models.Rejected(models.ReasonAlreadyParticipant), nil
	}

	if !event.HasCapacityFor(event.ParticipantCount) {
		return models.Rejected(models.ReasonEventFull), nil
	}

	return rs.commit(ctx, event, voucher, identity)
}

func (rs *RedemptionService) commit(ctx context.Context, event *models.Event, voucher *models.Voucher, identity string) (*models.RedemptionResult, error) {
	updatedEvent, err := rs.events.AddParticipant(ctx, event.ID, identity)
	if errors.Is(err, models.ErrNotFound) {
		return models.Rejected(models.ReasonEventNotFound), nil
	}
	if err != nil {
		return nil, err
	}

	updatedVoucher, err := rs.vouchers.IncrementUsage(ctx, voucher.ID)
	if err != nil {
		if _, rbErr := rs.events.RemoveParticipant(ctx, event.ID, identity); rbErr != nil {
			rs.logger.Error("Failed to roll back participant after voucher update failure",
				"event_id", event.ID, "identity", identity, "error", rbErr)
		}
		switch {
		case errors.Is(err, models.ErrUsageLimit):
			return models.Rejected(models.ReasonUsageLimit), nil
		case errors.Is(err, models.ErrNotFound):
			return models.Rejected(models.ReasonInvalidCode), nil
		}
		return nil, err
	}

	return models.Redeemed(updatedEvent, updatedVoucher), nil
}
