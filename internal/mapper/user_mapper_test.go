package mapper

import (
	"testing"
	"time"

	"visionvoice-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserMapperRoundTrip(t *testing.T) {
	now := time.Now()
	user := &entity.User{
		Id:        uuid.New(),
		Subject:   "subject-1",
		Email:     "a@example.com",
		FullName:  "Ada Lovelace",
		Tier:      "pro",
		CreatedAt: now,
		UpdatedAt: now,
	}

	got := UserToEntity(UserToModel(user))

	assert.Equal(t, user, got)
}

func TestUserToEntityNil(t *testing.T) {
	assert.Nil(t, UserToEntity(nil))
}

func TestPaymentOrderMapperRoundTrip(t *testing.T) {
	now := time.Now()
	order := &entity.PaymentOrder{
		Id:        uuid.New(),
		OrderID:   "order-1",
		Subject:   "subject-1",
		Tier:      "basic",
		Amount:    9,
		Status:    entity.PaymentOrderPaid,
		CreatedAt: now,
		UpdatedAt: now,
	}

	got := PaymentOrderToEntity(PaymentOrderToModel(order))

	assert.Equal(t, order, got)
}
