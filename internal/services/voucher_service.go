package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgazz/SuperMoment/internal/clock"
	"github.com/sgazz/SuperMoment/internal/helpers"
	"github.com/sgazz/SuperMoment/internal/metrics"
	"github.com/sgazz/SuperMoment/internal/models"
)

// maxCodeAttempts bounds retries when a freshly generated code loses a race
// with a concurrent insert of the same code.
const maxCodeAttempts = 5

type VoucherService struct {
	vouchers models.VoucherRepo
	events   models.EventRepo
	locks    *helpers.KeyLock
	clock    clock.Clock
	logger   *slog.Logger
}

func NewVoucherService(vouchers models.VoucherRepo, events models.EventRepo, locks *helpers.KeyLock, clk clock.Clock, logger *slog.Logger) *VoucherService {
	return &VoucherService{
		vouchers: vouchers,
		events:   events,
		locks:    locks,
		clock:    clk,
		logger:   logger,
	}
}

type CreateVoucherInput struct {
	EventID     uuid.UUID
	MaxUses     int
	ExpiresAt   *time.Time
	Description string
}

// CreateVoucher issues a voucher for an event owned by adminEmail.
func (vs *VoucherService) CreateVoucher(ctx context.Context, in CreateVoucherInput, adminEmail string) (*models.Voucher, error) {
	adminEmail = helpers.NormalizeIdentity(adminEmail)
	if in.EventID == uuid.Nil {
		return nil, fmt.Errorf("%w: event_id is required", models.ErrValidation)
	}
	if in.MaxUses == 0 {
		in.MaxUses = 1
	}
	now := vs.clock.Now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expires_at must be in the future", models.ErrValidation)
	}

	unlock := vs.locks.Lock(eventKey(in.EventID))
	defer unlock()

	if _, err := loadOwnedEvent(ctx, vs.events, in.EventID, adminEmail); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		code, err := helpers.GenerateVoucherCode(func(code string) (bool, error) {
			return vs.vouchers.CodeExists(ctx, code)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate voucher code: %w", err)
		}

		voucher := &models.Voucher{
			ID:          uuid.New(),
			Code:        code,
			EventID:     in.EventID,
			AdminEmail:  adminEmail,
			MaxUses:     in.MaxUses,
			UsedCount:   0,
			Status:      models.VoucherActive,
			ExpiresAt:   in.ExpiresAt,
			Description: strings.TrimSpace(in.Description),
			CreatedAt:   now,
		}
		if err := models.ValidateStruct(voucher); err != nil {
			return nil, err
		}

		created, err := vs.vouchers.CreateVoucher(ctx, voucher)
		if errors.Is(err, models.ErrDuplicateCode) && attempt < maxCodeAttempts {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create voucher: %w", err)
		}

		metrics.RecordVoucherIssued()
		vs.logger.Info("Voucher issued", "voucher_id", created.ID, "event_id", created.EventID, "max_uses", created.MaxUses)
		return created, nil
	}
}

func (vs *VoucherService) GetVoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	code = helpers.NormalizeVoucherCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: voucher code is required", models.ErrValidation)
	}
	voucher, err := vs.vouchers.GetVoucherByCode(ctx, code)
	if err != nil {
		return nil, wrapNotFound("voucher", err)
	}
	return voucher, nil
}

// GetOwnedVoucher returns the voucher only to the admin who issued it.
func (vs *VoucherService) GetOwnedVoucher(ctx context.Context, code, adminEmail string) (*models.Voucher, error) {
	voucher, err := vs.GetVoucherByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if voucher.AdminEmail != helpers.NormalizeIdentity(adminEmail) {
		return nil, fmt.Errorf("%w: only the issuing admin can view this voucher", models.ErrForbidden)
	}
	return voucher, nil
}

func (vs *VoucherService) ListVouchersForEvent(ctx context.Context, eventID uuid.UUID, adminEmail string) ([]*models.Voucher, error) {
	if _, err := loadOwnedEvent(ctx, vs.events, eventID, helpers.NormalizeIdentity(adminEmail)); err != nil {
		return nil, err
	}
	return vs.vouchers.ListVouchersByEvent(ctx, eventID)
}

// UpdateVoucher lets the issuing admin change limits, expiry and description.
func (vs *VoucherService) UpdateVoucher(ctx context.Context, code string, patch *models.VoucherPatch, adminEmail string) (*models.Voucher, error) {
	if err := models.ValidateStruct(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	if patch.ExpiresAt != nil && !patch.ExpiresAt.After(vs.clock.Now()) {
		return nil, fmt.Errorf("%w: expires_at must be in the future", models.ErrValidation)
	}

	voucher, err := vs.GetOwnedVoucher(ctx, code, adminEmail)
	if err != nil {
		return nil, err
	}

	unlock := vs.locks.Lock(voucherKey(voucher.ID))
	defer unlock()

	updated, err := vs.vouchers.UpdateVoucher(ctx, voucher.ID, patch)
	if errors.Is(err, models.ErrValidation) {
		return nil, fmt.Errorf("%w: max_uses cannot be below used_count (%d)", models.ErrValidation, voucher.UsedCount)
	}
	if err != nil {
		return nil, wrapNotFound("voucher", err)
	}
	return updated, nil
}

// CancelVoucher moves the voucher to the terminal cancelled state.
func (vs *VoucherService) CancelVoucher(ctx context.Context, code, adminEmail string) (*models.Voucher, error) {
	voucher, err := vs.UpdateVoucher(ctx, code, &models.VoucherPatch{Cancel: true}, adminEmail)
	if err != nil {
		return nil, err
	}
	vs.logger.Info("Voucher cancelled", "voucher_id", voucher.ID, "event_id", voucher.EventID)
	return voucher, nil
}
