package models

// ApiResponse is the envelope every JSON endpoint answers with.
type ApiResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Reason  RejectReason `json:"reason,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Total   *int         `json:"total,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

// ListResponse always reports total, including zero.
func ListResponse(data interface{}, total int) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Total:   &total,
	}
}

type redemptionData struct {
	Event   *Event   `json:"event"`
	Voucher *Voucher `json:"voucher"`
}

// RedemptionResponse carries a redemption outcome. Rejections repeat the
// message in error and name the failed check in reason.
func RedemptionResponse(result *RedemptionResult) ApiResponse {
	if !result.Success {
		return ApiResponse{
			Success: false,
			Message: result.Message,
			Reason:  result.Reason,
			Error:   result.Message,
		}
	}
	return ApiResponse{
		Success: true,
		Message: result.Message,
		Data:    redemptionData{Event: result.Event, Voucher: result.Voucher},
	}
}
