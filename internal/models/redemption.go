package models

type RejectReason string

const (
	ReasonInvalidCode        RejectReason = "invalid_code"
	ReasonInactive           RejectReason = "inactive"
	ReasonExpired            RejectReason = "expired"
	ReasonUsageLimit         RejectReason = "usage_limit"
	ReasonEventNotFound      RejectReason = "event_not_found"
	ReasonAlreadyParticipant RejectReason = "already_participant"
	ReasonEventFull          RejectReason = "event_full"
)

var rejectMessages = map[RejectReason]string{
	ReasonInvalidCode:        "Invalid voucher code",
	ReasonInactive:           "Voucher is not active",
	ReasonExpired:            "Voucher has expired",
	ReasonUsageLimit:         "Voucher usage limit reached",
	ReasonEventNotFound:      "Event not found",
	ReasonAlreadyParticipant: "User is already a participant in this event",
	ReasonEventFull:          "Event participant limit reached",
}

const RedeemedMessage = "Voucher redeemed successfully"

func (r RejectReason) Message() string {
	return rejectMessages[r]
}

// RedemptionResult is the outcome of a redemption attempt. Business rule
// failures are reported here with Success=false, never as errors.
type RedemptionResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Reason  RejectReason `json:"reason,omitempty"`
	Event   *Event       `json:"event,omitempty"`
	Voucher *Voucher     `json:"voucher,omitempty"`
}

func Rejected(reason RejectReason) *RedemptionResult {
	return &RedemptionResult{
		Success: false,
		Message: reason.Message(),
		Reason:  reason,
	}
}

func Redeemed(event *Event, voucher *Voucher) *RedemptionResult {
	return &RedemptionResult{
		Success: true,
		Message: RedeemedMessage,
		Event:   event,
		Voucher: voucher,
	}
}
