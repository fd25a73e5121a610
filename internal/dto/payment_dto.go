package dto

type CheckoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=basic pro enterprise"`
}

type CheckoutResponse struct {
	OrderID     string  `json:"order_id"`
	RedirectURL string  `json:"redirect_url"`
	Amount      float64 `json:"amount"`
}

// MidtransWebhookRequest mirrors the fields of the midtrans HTTP
// notification that the handler verifies and acts on.
type MidtransWebhookRequest struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}
