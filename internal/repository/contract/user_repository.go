package contract

import (
	"context"

	"visionvoice-be/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindBySubject(ctx context.Context, subject string) (*entity.User, error)
	UpdateTier(ctx context.Context, subject string, tier string) error
}

type PaymentRepository interface {
	Create(ctx context.Context, order *entity.PaymentOrder) error
	FindByOrderID(ctx context.Context, orderID string) (*entity.PaymentOrder, error)
	UpdateStatus(ctx context.Context, orderID string, status entity.PaymentOrderStatus) error
}
