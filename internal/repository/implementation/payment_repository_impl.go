package implementation

import (
	"context"
	"errors"

	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/mapper"
	"visionvoice-be/internal/model"
	"visionvoice-be/internal/repository/contract"

	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) contract.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, order *entity.PaymentOrder) error {
	m := mapper.PaymentOrderToModel(order)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.PaymentOrder, error) {
	var m model.PaymentOrder
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mapper.PaymentOrderToEntity(&m), nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, orderID string, status entity.PaymentOrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentOrder{}).
		Where("order_id = ?", orderID).
		Update("status", string(status)).Error
}
