package dto

// CorrectionRequest reverses a validated transaction.
type CorrectionRequest struct {
	Reason string `json:"reason" binding:"required"`
}
