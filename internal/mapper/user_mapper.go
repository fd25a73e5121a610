package mapper

import (
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/model"
)

func UserToEntity(m *model.User) *entity.User {
	if m == nil {
		return nil
	}
	return &entity.User{
		Id:        m.Id,
		Subject:   m.Subject,
		Email:     m.Email,
		FullName:  m.FullName,
		Tier:      m.Tier,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func UserToModel(e *entity.User) *model.User {
	return &model.User{
		Id:        e.Id,
		Subject:   e.Subject,
		Email:     e.Email,
		FullName:  e.FullName,
		Tier:      e.Tier,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func PaymentOrderToEntity(m *model.PaymentOrder) *entity.PaymentOrder {
	if m == nil {
		return nil
	}
	return &entity.PaymentOrder{
		Id:        m.Id,
		OrderID:   m.OrderID,
		Subject:   m.Subject,
		Tier:      m.Tier,
		Amount:    m.Amount,
		Status:    entity.PaymentOrderStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func PaymentOrderToModel(e *entity.PaymentOrder) *model.PaymentOrder {
	return &model.PaymentOrder{
		Id:        e.Id,
		OrderID:   e.OrderID,
		Subject:   e.Subject,
		Tier:      e.Tier,
		Amount:    e.Amount,
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
