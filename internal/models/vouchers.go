package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type VoucherStatus string

const (
	VoucherActive    VoucherStatus = "active"
	VoucherUsed      VoucherStatus = "used"
	VoucherExpired   VoucherStatus = "expired"
	VoucherCancelled VoucherStatus = "cancelled"
)

const VoucherCodeLength = 8

type Voucher struct {
	ID          uuid.UUID     `bson:"id" json:"id"`
	Code        string        `bson:"code" json:"code" validate:"required,len=8,alphanum,uppercase"`
	EventID     uuid.UUID     `bson:"event_id" json:"event_id"`
	AdminEmail  string        `bson:"admin_email" json:"admin_email" validate:"required"`
	MaxUses     int           `bson:"max_uses" json:"max_uses" validate:"min=1"`
	UsedCount   int           `bson:"used_count" json:"used_count" validate:"min=0,ltefield=MaxUses"`
	Status      VoucherStatus `bson:"status" json:"status" validate:"required,oneof=active used expired cancelled"`
	ExpiresAt   *time.Time    `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	Description string        `bson:"description,omitempty" json:"description,omitempty" validate:"max=500"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}

// IsExpired reports whether the voucher's expiry lies strictly before now.
func (v *Voucher) IsExpired(now time.Time) bool {
	return v.ExpiresAt != nil && v.ExpiresAt.Before(now)
}

func (v *Voucher) IsExhausted() bool {
	return v.UsedCount >= v.MaxUses
}

// refreshStatus keeps the used/active status in line with the counters.
// Cancelled is terminal and expired only clears when the expiry is edited.
func (v *Voucher) refreshStatus() {
	switch v.Status {
	case VoucherCancelled, VoucherExpired:
		return
	}
	if v.IsExhausted() {
		v.Status = VoucherUsed
	} else if v.Status == VoucherUsed {
		v.Status = VoucherActive
	}
}

func (v *Voucher) clone() *Voucher {
	cp := *v
	if v.ExpiresAt != nil {
		exp := *v.ExpiresAt
		cp.ExpiresAt = &exp
	}
	return &cp
}

// VoucherPatch is a sparse admin edit of a voucher.
type VoucherPatch struct {
	MaxUses     *int       `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	Cancel      bool       `json:"-"`
}

func (p *VoucherPatch) IsEmpty() bool {
	return p.MaxUses == nil && p.ExpiresAt == nil && p.Description == nil && !p.Cancel
}

// Apply merges p into v. Lowering max_uses below used_count is rejected.
func (p *VoucherPatch) Apply(v *Voucher) error {
	if p.MaxUses != nil && *p.MaxUses < v.UsedCount {
		return ErrValidation
	}
	if p.MaxUses != nil {
		v.MaxUses = *p.MaxUses
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.ExpiresAt != nil {
		exp := *p.ExpiresAt
		v.ExpiresAt = &exp
		if v.Status == VoucherExpired {
			v.Status = VoucherActive
		}
	}
	if p.Cancel {
		v.Status = VoucherCancelled
	}
	v.refreshStatus()
	return nil
}

// VoucherRepo owns voucher records. Codes are unique across stored vouchers;
// CreateVoucher returns ErrDuplicateCode when a code is already taken.
type VoucherRepo interface {
	CreateVoucher(ctx context.Context, voucher *Voucher) (*Voucher, error)
	GetVoucher(ctx context.Context, id uuid.UUID) (*Voucher, error)
	GetVoucherByCode(ctx context.Context, code string) (*Voucher, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListVouchersByEvent(ctx context.Context, eventID uuid.UUID) ([]*Voucher, error)
	UpdateVoucher(ctx context.Context, id uuid.UUID, patch *VoucherPatch) (*Voucher, error)

	IncrementUsage(ctx context.Context, id uuid.UUID) (*Voucher, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	MarkUsed(ctx context.Context, id uuid.UUID) error
}
