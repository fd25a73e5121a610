package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the durable record behind a provider identity. The subscription
// tier lives here so it survives the browser session (the session copy is
// hydrated from this row on login).
type User struct {
	Id        uuid.UUID
	Subject   string // OIDC subject claim, unique per provider user
	Email     string
	FullName  string
	Tier      string // empty = not yet chosen
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PaymentOrderStatus string

const (
	PaymentOrderPending PaymentOrderStatus = "pending"
	PaymentOrderPaid    PaymentOrderStatus = "paid"
	PaymentOrderFailed  PaymentOrderStatus = "failed"
)

// PaymentOrder tracks one checkout attempt for a paid tier.
type PaymentOrder struct {
	Id        uuid.UUID
	OrderID   string // midtrans order id
	Subject   string
	Tier      string
	Amount    float64
	Status    PaymentOrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
