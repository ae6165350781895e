package dtos

type CheckoutRequest struct {
	PackID uint `json:"pack_id" binding:"required"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id,omitempty"`
	URL       string `json:"url"`
}
