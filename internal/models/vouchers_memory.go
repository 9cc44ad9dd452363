package models

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

func (m *MemoryRepo) CreateVoucher(ctx context.Context, voucher *Voucher) (*Voucher, error) {
	m.vouchersMu.Lock()
	defer m.vouchersMu.Unlock()

	if _, taken := m.codes[voucher.Code]; taken {
		return nil, ErrDuplicateCode
	}
	stored := voucher.clone()
	m.vouchers[stored.ID] = stored
	m.codes[stored.Code] = stored.ID
	return stored.clone(), nil
}

func (m *MemoryRepo) GetVoucher(ctx context.Context, id uuid.UUID) (*Voucher, error) {
	m.vouchersMu.RLock()
	defer m.vouchersMu.RUnlock()

	voucher, ok := m.vouchers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return voucher.clone(), nil
}

func (m *MemoryRepo) GetVoucherByCode(ctx context.Context, code string) (*Voucher, error) {
	m.vouchersMu.RLock()
	defer m.vouchersMu.RUnlock()

	id, ok := m.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	return m.vouchers[id].clone(), nil
}

func (m *MemoryRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	m.vouchersMu.RLock()
	defer m.vouchersMu.RUnlock()

	_, ok := m.codes[code]
	return ok, nil
}

func (m *MemoryRepo) ListVouchersByEvent(ctx context.Context, eventID uuid.UUID) ([]*Voucher, error) {
	m.vouchersMu.RLock()
	defer m.vouchersMu.RUnlock()

	vouchers := make([]*Voucher, 0)
	for _, voucher := range m.vouchers {
		if voucher.EventID == eventID {
			vouchers = append(vouchers, voucher.clone())
		}
	}
	sort.Slice(vouchers, func(i, j int) bool {
		return vouchers[i].CreatedAt.Before(vouchers[j].CreatedAt)
	})
	return vouchers, nil
}

func (m *MemoryRepo) UpdateVoucher(ctx context.Context, id uuid.UUID, patch *VoucherPatch) (*Voucher, error) {
	m.vouchersMu.Lock()
	defer m.vouchersMu.Unlock()

	voucher, ok := m.vouchers[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := voucher.clone()
	if err := patch.Apply(updated); err != nil {
		return nil, err
	}
	m.vouchers[id] = updated
	return updated.clone(), nil
}

func (m *MemoryRepo) IncrementUsage(ctx context.Context, id uuid.UUID) (*Voucher, error) {
	m.vouchersMu.Lock()
	defer m.vouchersMu.Unlock()

	voucher, ok := m.vouchers[id]
	if !ok {
		return nil, ErrNotFound
	}
	if voucher.IsExhausted() {
		return nil, ErrUsageLimit
	}
	voucher.UsedCount++
	if voucher.IsExhausted() {
		voucher.Status = VoucherUsed
	}
	return voucher.clone(), nil
}

func (m *MemoryRepo) MarkExpired(ctx context.Context, id uuid.UUID) error {
	return m.setVoucherStatus(id, VoucherExpired)
}

func (m *MemoryRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return m.setVoucherStatus(id, VoucherUsed)
}

func (m *MemoryRepo) setVoucherStatus(id uuid.UUID, status VoucherStatus) error {
	m.vouchersMu.Lock()
	defer m.vouchersMu.Unlock()

	voucher, ok := m.vouchers[id]
	if !ok {
		return ErrNotFound
	}
	voucher.Status = status
	return nil
}
