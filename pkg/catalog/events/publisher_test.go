package events

import (
	"context"
	"errors"
	"testing"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/pkg/logger"
	pkgEvents "pazuzu-registry/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []pkgEvents.Event
	err    error
}

func (s *recordingSink) Publish(ctx context.Context, event pkgEvents.Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestSinkPublisher(t *testing.T) {
	sink := &recordingSink{}
	p := NewSinkPublisher(sink, logger.NewNopLogger())
	f := &entity.Feature{
		Id:           uuid.New(),
		Name:         "app",
		Dependencies: []entity.FeatureRef{{Id: uuid.New(), Name: "base"}},
	}

	p.PublishFeatureCreated(context.Background(), f)
	p.PublishFeatureUpdated(context.Background(), f, "application")
	p.PublishFeatureDeleted(context.Background(), f)

	require.Len(t, sink.events, 3)
	assert.Equal(t, pkgEvents.FeatureCreated, sink.events[0].EventType())
	assert.Equal(t, "app", sink.events[0].Payload()["feature_name"])
	assert.Equal(t, []string{"base"}, sink.events[0].Payload()["dependencies"])
	assert.Equal(t, "application", sink.events[1].Payload()["previous_name"])
	assert.Equal(t, pkgEvents.FeatureDeleted, sink.events[2].EventType())
}

func TestSinkPublisher_FailuresAreSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("nats down")}
	p := NewSinkPublisher(sink, logger.NewNopLogger())

	assert.NotPanics(t, func() {
		p.PublishFeatureApproved(context.Background(), &entity.Feature{Name: "x"})
	})
	assert.Len(t, sink.events, 1)
}

func TestSinkPublisher_NilSink(t *testing.T) {
	p := NewSinkPublisher(nil, logger.NewNopLogger())
	assert.NotPanics(t, func() {
		p.PublishFeatureCreated(context.Background(), &entity.Feature{Name: "x"})
	})
}
