package service

import (
	"context"
	"encoding/json"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/pkg/badge"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process badge queue.
type consumerService struct {
	pubSub  *gochannel.GoChannel
	checker *badge.Checker
	logger  logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, checker *badge.Checker, logger logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub:  pubSub,
		checker: checker,
		logger:  logger,
	}
}

// Consume subscribes and processes messages until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, badge.Topic)
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
	var payload dto.BadgeCheckMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("BADGE", "Failed to unmarshal badge check", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if _, err := cs.checker.Check(ctx, payload.UserId); err != nil {
		if apperror.IsConflict(err) && ctx.Err() == nil {
			msg.Nack()
			return
		}
		cs.logger.Error("BADGE", "Badge check failed", map[string]interface{}{
			"user_id": payload.UserId.String(),
			"error":   err.Error(),
		})
	}
	msg.Ack()
}
