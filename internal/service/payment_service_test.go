package service

import (
	"context"
	"crypto/sha512"
	"fmt"
	"testing"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
)

type fakePaymentRepo struct {
	orders   map[string]*entity.PaymentOrder
	statuses map[string]entity.PaymentOrderStatus
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		orders:   make(map[string]*entity.PaymentOrder),
		statuses: make(map[string]entity.PaymentOrderStatus),
	}
}

func (f *fakePaymentRepo) Create(_ context.Context, order *entity.PaymentOrder) error {
	f.orders[order.OrderID] = order
	return nil
}

func (f *fakePaymentRepo) FindByOrderID(_ context.Context, orderID string) (*entity.PaymentOrder, error) {
	return f.orders[orderID], nil
}

func (f *fakePaymentRepo) UpdateStatus(_ context.Context, orderID string, status entity.PaymentOrderStatus) error {
	f.statuses[orderID] = status
	if o, ok := f.orders[orderID]; ok {
		o.Status = status
	}
	return nil
}

type fakeUserRepo struct {
	tiers map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{tiers: make(map[string]string)}
}

func (f *fakeUserRepo) Create(context.Context, *entity.User) error { return nil }
func (f *fakeUserRepo) Update(context.Context, *entity.User) error { return nil }
func (f *fakeUserRepo) FindBySubject(context.Context, string) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdateTier(_ context.Context, subject, tier string) error {
	f.tiers[subject] = tier
	return nil
}

func midtransSignature(orderID, statusCode, grossAmount, serverKey string) string {
	return fmt.Sprintf("%x", sha512.Sum512([]byte(orderID+statusCode+grossAmount+serverKey)))
}

func newTestPaymentService(t *testing.T, orders *fakePaymentRepo, users *fakeUserRepo) IPaymentService {
	t.Helper()
	return NewPaymentService(
		orders,
		users,
		newTestTierService(t),
		"test-server-key",
		"sandbox",
		"http://localhost:5173",
		nil,
		noopLogger{},
	)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	orders := newFakePaymentRepo()
	users := newFakeUserRepo()
	svc := newTestPaymentService(t, orders, users)

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderID:           "order-1",
		StatusCode:        "200",
		GrossAmount:       "9.00",
		SignatureKey:      "forged",
		TransactionStatus: "settlement",
	})

	if err == nil {
		t.Fatal("expected signature rejection")
	}
	if len(users.tiers) != 0 {
		t.Error("tier must not change on a forged webhook")
	}
}

func TestWebhookSettlementActivatesTier(t *testing.T) {
	orders := newFakePaymentRepo()
	users := newFakeUserRepo()
	svc := newTestPaymentService(t, orders, users)

	orders.orders["order-1"] = &entity.PaymentOrder{
		OrderID: "order-1",
		Subject: "subject-1",
		Tier:    "pro",
		Amount:  19,
		Status:  entity.PaymentOrderPending,
	}

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderID:           "order-1",
		StatusCode:        "200",
		GrossAmount:       "19.00",
		SignatureKey:      midtransSignature("order-1", "200", "19.00", "test-server-key"),
		TransactionStatus: "settlement",
	})
	if err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	if orders.statuses["order-1"] != entity.PaymentOrderPaid {
		t.Errorf("order status = %s, want paid", orders.statuses["order-1"])
	}
	if users.tiers["subject-1"] != "pro" {
		t.Errorf("user tier = %q, want pro", users.tiers["subject-1"])
	}
}

func TestWebhookExpiredMarksFailed(t *testing.T) {
	orders := newFakePaymentRepo()
	users := newFakeUserRepo()
	svc := newTestPaymentService(t, orders, users)

	orders.orders["order-2"] = &entity.PaymentOrder{
		OrderID: "order-2",
		Subject: "subject-1",
		Tier:    "basic",
		Status:  entity.PaymentOrderPending,
	}

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderID:           "order-2",
		StatusCode:        "407",
		GrossAmount:       "9.00",
		SignatureKey:      midtransSignature("order-2", "407", "9.00", "test-server-key"),
		TransactionStatus: "expire",
	})
	if err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	if orders.statuses["order-2"] != entity.PaymentOrderFailed {
		t.Errorf("order status = %s, want failed", orders.statuses["order-2"])
	}
	if len(users.tiers) != 0 {
		t.Error("a failed payment must not change the tier")
	}
}

func TestWebhookPendingIsNoOp(t *testing.T) {
	orders := newFakePaymentRepo()
	users := newFakeUserRepo()
	svc := newTestPaymentService(t, orders, users)

	orders.orders["order-3"] = &entity.PaymentOrder{
		OrderID: "order-3",
		Status:  entity.PaymentOrderPending,
	}

	err := svc.HandleNotification(context.Background(), &dto.MidtransWebhookRequest{
		OrderID:           "order-3",
		StatusCode:        "201",
		GrossAmount:       "9.00",
		SignatureKey:      midtransSignature("order-3", "201", "9.00", "test-server-key"),
		TransactionStatus: "pending",
	})
	if err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}

	if _, updated := orders.statuses["order-3"]; updated {
		t.Error("pending must leave the order untouched")
	}
}
