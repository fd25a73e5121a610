package service

import (
	"context"
	"encoding/json"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/pkg/logger"
	"visionvoice-be/pkg/events"
	pktNats "visionvoice-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus: every processed document is
// written to the audit log and, when a broker is connected, forwarded to
// NATS for downstream consumers.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	publisher *pktNats.Publisher
	log       logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, topicName string, publisher *pktNats.Publisher, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		publisher: publisher,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.DocumentProcessedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	cs.log.Info("consumer", "document processed", map[string]interface{}{
		"session_id":   payload.SessionID,
		"subject":      payload.Subject,
		"tier":         payload.Tier,
		"uploads_used": payload.UploadsUsed,
		"steps":        payload.Steps,
	})

	if cs.publisher != nil {
		evt := events.NewDocumentProcessedEvent(payload.SessionID, payload.Subject, payload.Tier, payload.UploadsUsed, payload.Steps)
		if err := cs.publisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("consumer", "failed to forward event to NATS", map[string]interface{}{
				"error": err.Error(),
			})
			// The audit log entry above is the source of truth; forwarding
			// is best-effort.
		}
	}

	msg.Ack()
}
