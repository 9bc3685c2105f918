package events

import (
	"context"
	"time"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/pkg/logger"
	pkgEvents "pazuzu-registry/pkg/events"
)

// Publisher announces committed feature changes to other systems.
// Failures are logged, never returned: the change is already durable.
type Publisher interface {
	PublishFeatureCreated(ctx context.Context, f *entity.Feature)
	PublishFeatureUpdated(ctx context.Context, f *entity.Feature, previousName string)
	PublishFeatureApproved(ctx context.Context, f *entity.Feature)
	PublishFeatureDeleted(ctx context.Context, f *entity.Feature)
}

// EventSink is the transport a Publisher writes to; *nats.Publisher satisfies it.
type EventSink interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// SinkPublisher implements Publisher on top of an EventSink
type SinkPublisher struct {
	sink   EventSink
	logger logger.ILogger
}

// NewSinkPublisher accepts a nil sink, in which case events are dropped.
func NewSinkPublisher(sink EventSink, logger logger.ILogger) *SinkPublisher {
	return &SinkPublisher{
		sink:   sink,
		logger: logger,
	}
}

func (p *SinkPublisher) PublishFeatureCreated(ctx context.Context, f *entity.Feature) {
	p.publish(ctx, pkgEvents.FeatureCreated, f, nil)
}

func (p *SinkPublisher) PublishFeatureUpdated(ctx context.Context, f *entity.Feature, previousName string) {
	p.publish(ctx, pkgEvents.FeatureUpdated, f, map[string]interface{}{"previous_name": previousName})
}

func (p *SinkPublisher) PublishFeatureApproved(ctx context.Context, f *entity.Feature) {
	p.publish(ctx, pkgEvents.FeatureApproved, f, nil)
}

func (p *SinkPublisher) PublishFeatureDeleted(ctx context.Context, f *entity.Feature) {
	p.publish(ctx, pkgEvents.FeatureDeleted, f, nil)
}

func (p *SinkPublisher) publish(ctx context.Context, eventType string, f *entity.Feature, extra map[string]interface{}) {
	if p.sink == nil || f == nil {
		return
	}

	deps := make([]string, 0, len(f.Dependencies))
	for _, d := range f.Dependencies {
		deps = append(deps, d.Name)
	}

	now := time.Now()
	data := map[string]interface{}{
		"feature_id":   f.Id.String(),
		"feature_name": f.Name,
		"approved":     f.Approved,
		"dependencies": deps,
		"entity_type":  "feature",
		"entity_id":    f.Id.String(),
		"occurred_at":  now,
	}
	for k, v := range extra {
		data[k] = v
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}
	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("FEATURE_EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{
			"feature": f.Name,
			"error":   err.Error(),
		})
	}
}
