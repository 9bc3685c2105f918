// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/memory"
	"pazuzu-registry/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// HandleRemoteEvent reacts to feature events published by other replicas.
	HandleRemoteEvent(ctx context.Context, event events.Event) error
}

// consumerService keeps the plan cache coherent with committed mutations.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	planCache  *memory.PlanCache
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	planCache *memory.PlanCache,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		planCache:  planCache,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.FeatureChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Flush anyway; a stale plan is worse than a cold cache
		cs.logger.Warn("PLAN_CACHE", "Malformed feature change message", map[string]interface{}{"error": err.Error()})
	}

	cs.planCache.Flush()
	cs.logger.Debug("PLAN_CACHE", "Flushed after feature change", map[string]interface{}{
		"event_type": payload.EventType,
		"feature":    payload.Name,
	})
	msg.Ack()
}

func (cs *consumerService) HandleRemoteEvent(ctx context.Context, event events.Event) error {
	cs.planCache.Flush()
	cs.logger.Debug("PLAN_CACHE", "Flushed after remote feature event", map[string]interface{}{
		"event_type": event.EventType(),
	})
	return nil
}
