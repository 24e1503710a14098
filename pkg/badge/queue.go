package badge

import (
	"context"
	"encoding/json"

	"eventhub-accounting-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topic carries users whose badges need a re-check.
const Topic = "badge.check"

// Queue hands badge checks to the in-process consumer so a booking never
// waits on them.
type Queue struct {
	pubSub *gochannel.GoChannel
}

func NewQueue(pubSub *gochannel.GoChannel) *Queue {
	return &Queue{pubSub: pubSub}
}

func (q *Queue) Enqueue(ctx context.Context, userId uuid.UUID) error {
	payload, err := json.Marshal(dto.BadgeCheckMessage{UserId: userId})
	if err != nil {
		return err
	}
	return q.pubSub.Publish(Topic, message.NewMessage(watermill.NewUUID(), payload))
}
