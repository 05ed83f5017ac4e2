package dto

import "strings"

type CreateRefundRequest struct {
	PaymentID   string  `json:"payment_id" binding:"required"`
	RequesterID string  `json:"requester_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Reason      string  `json:"reason" binding:"required"`
	Notes       string  `json:"notes"`
}

func (r *CreateRefundRequest) Sanitize() {
	r.PaymentID = strings.TrimSpace(r.PaymentID)
	r.RequesterID = strings.TrimSpace(r.RequesterID)
	r.Reason = strings.TrimSpace(r.Reason)
	r.Notes = strings.TrimSpace(r.Notes)
}

type ApproveRefundRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
	Notes   string `json:"notes"`
}

type RejectRefundRequest struct {
	AdminID string `json:"admin_id" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
}

type RefundCreated struct {
	RefundID             string  `json:"refund_id"`
	Amount               float64 `json:"amount"`
	ProcessingFee        float64 `json:"processing_fee"`
	NetRefund            float64 `json:"net_refund"`
	ApplicablePercentage float64 `json:"applicable_percentage"`
	RequiresReview       bool    `json:"requires_review"`
}
