package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRedemption(t *testing.T) {
	before := testutil.ToFloat64(RedemptionsTotal.WithLabelValues("expired"))
	RecordRedemption("rejected", "expired", 0.002)
	after := testutil.ToFloat64(RedemptionsTotal.WithLabelValues("expired"))

	if after-before != 1 {
		t.Fatalf("expected the expired counter to grow by 1, got %v", after-before)
	}
}

func TestRecordVoucherIssued(t *testing.T) {
	before := testutil.ToFloat64(VouchersIssuedTotal)
	RecordVoucherIssued()
	if got := testutil.ToFloat64(VouchersIssuedTotal) - before; got != 1 {
		t.Fatalf("expected one issued voucher, got %v", got)
	}
}
