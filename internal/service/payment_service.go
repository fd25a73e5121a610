package service

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"time"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/logger"
	"visionvoice-be/internal/repository/contract"
	"visionvoice-be/pkg/events"
	pktNats "visionvoice-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type IPaymentService interface {
	Checkout(ctx context.Context, session *entity.UserSession, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type paymentService struct {
	orders         contract.PaymentRepository
	users          contract.UserRepository
	tiers          ITierService
	snapClient     snap.Client
	serverKey      string
	clientURL      string
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewPaymentService(
	orders contract.PaymentRepository,
	users contract.UserRepository,
	tiers ITierService,
	serverKey string,
	midtransEnv string,
	clientURL string,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IPaymentService {
	env := midtrans.Sandbox
	if midtransEnv == "production" {
		env = midtrans.Production
	}

	var sClient snap.Client
	sClient.New(serverKey, env)

	return &paymentService{
		orders:         orders,
		users:          users,
		tiers:          tiers,
		snapClient:     sClient,
		serverKey:      serverKey,
		clientURL:      clientURL,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

// Checkout creates a pending order for a paid tier and returns the hosted
// payment page. The order row is what the webhook later resolves back to a
// user and tier.
func (s *paymentService) Checkout(ctx context.Context, session *entity.UserSession, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if session.Identity == nil {
		return nil, errors.New("checkout requires an authenticated session")
	}

	tier, err := s.tiers.Lookup(entity.TierID(req.Tier))
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	now := time.Now()
	order := &entity.PaymentOrder{
		Id:        uuid.New(),
		OrderID:   orderID,
		Subject:   session.Identity.Subject,
		Tier:      string(tier.ID),
		Amount:    tier.MonthlyCost,
		Status:    entity.PaymentOrderPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: int64(tier.MonthlyCost),
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/app?payment=success", s.clientURL),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: session.Identity.Name,
			Email: session.Identity.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    string(tier.ID),
				Price: int64(tier.MonthlyCost),
				Qty:   1,
				Name:  fmt.Sprintf("%s plan (monthly)", tier.Name),
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := s.snapClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	s.log.Info("payment", "checkout created", map[string]interface{}{
		"order_id": orderID,
		"tier":     string(tier.ID),
		"subject":  session.Identity.Subject,
	})

	return &dto.CheckoutResponse{
		OrderID:     orderID,
		RedirectURL: snapResp.RedirectURL,
		Amount:      tier.MonthlyCost,
	}, nil
}

// HandleNotification verifies the midtrans signature and applies the
// transaction outcome: a settled payment marks the order paid and moves the
// user onto the purchased tier.
func (s *paymentService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if s.serverKey == "" {
		return errors.New("server configuration error")
	}

	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderID + req.StatusCode + req.GrossAmount + s.serverKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))
	if req.SignatureKey != expectedSignature {
		s.log.Warn("payment", "webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderID,
		})
		return errors.New("invalid signature")
	}

	order, err := s.orders.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %s not found", req.OrderID)
	}

	var newStatus entity.PaymentOrderStatus
	switch req.TransactionStatus {
	case "capture", "settlement":
		if req.FraudStatus == "challenge" || req.FraudStatus == "deny" {
			newStatus = entity.PaymentOrderFailed
		} else {
			newStatus = entity.PaymentOrderPaid
		}
	case "deny", "cancel", "expire":
		newStatus = entity.PaymentOrderFailed
	case "pending":
		return nil
	default:
		s.log.Info("payment", "webhook status ignored", map[string]interface{}{
			"order_id": req.OrderID,
			"status":   req.TransactionStatus,
		})
		return nil
	}

	if order.Status == newStatus {
		return nil
	}

	if err := s.orders.UpdateStatus(ctx, req.OrderID, newStatus); err != nil {
		return err
	}

	if newStatus == entity.PaymentOrderPaid {
		if err := s.users.UpdateTier(ctx, order.Subject, order.Tier); err != nil {
			return err
		}

		if s.eventPublisher != nil {
			evt := events.NewTierChangedEvent(order.Subject, "", order.Tier)
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				s.log.Warn("payment", "failed to publish tier change event", map[string]interface{}{
					"order_id": req.OrderID,
					"error":    err.Error(),
				})
			}
		}
	}

	s.log.Info("payment", "webhook processed", map[string]interface{}{
		"order_id": req.OrderID,
		"status":   string(newStatus),
	})
	return nil
}
