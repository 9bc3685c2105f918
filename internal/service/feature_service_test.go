package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/entity"
	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/memory"
	"pazuzu-registry/pkg/catalog/feature"
	"pazuzu-registry/pkg/catalog/tag"
	"pazuzu-registry/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	eventType string
	name      string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) record(eventType string, f *entity.Feature) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: eventType, name: f.Name})
}

func (p *recordingPublisher) PublishFeatureCreated(ctx context.Context, f *entity.Feature) {
	p.record(events.FeatureCreated, f)
}

func (p *recordingPublisher) PublishFeatureUpdated(ctx context.Context, f *entity.Feature, previousName string) {
	p.record(events.FeatureUpdated, f)
}

func (p *recordingPublisher) PublishFeatureApproved(ctx context.Context, f *entity.Feature) {
	p.record(events.FeatureApproved, f)
}

func (p *recordingPublisher) PublishFeatureDeleted(ctx context.Context, f *entity.Feature) {
	p.record(events.FeatureDeleted, f)
}

type fixture struct {
	service   IFeatureService
	store     *memory.Store
	planCache *memory.PlanCache
	events    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newReplica(t, memory.NewStore())
}

// newReplica builds a service with its own plan cache and event bus on top
// of store, like one of several processes sharing a database.
func newReplica(t *testing.T, store *memory.Store) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	log := logger.NewNopLogger()
	uowFactory := memory.NewRepositoryFactory(store)
	planCache := memory.NewPlanCache(time.Minute)

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	consumer := NewConsumerService(pubSub, "feature-changes", planCache, log)
	require.NoError(t, consumer.Consume(ctx))
	t.Cleanup(func() {
		cancel()
		_ = pubSub.Close()
	})

	recorder := &recordingPublisher{}
	svc := NewFeatureService(
		uowFactory,
		feature.NewManager(tag.NewManager(), log),
		planCache,
		NewPublisherService("feature-changes", pubSub),
		recorder,
		log,
		3,
	)
	return &fixture{service: svc, store: store, planCache: planCache, events: recorder}
}

func (f *fixture) create(t *testing.T, name string, deps ...string) *dto.FeatureResponse {
	t.Helper()
	res, err := f.service.Create(context.Background(), dto.CreateFeatureRequest{Name: name, Dependencies: deps})
	require.NoError(t, err)
	return res
}

func responseNames(res []*dto.FeatureResponse) []string {
	out := make([]string, 0, len(res))
	for _, r := range res {
		out = append(out, r.Name)
	}
	return out
}

func TestFeatureService_Scenarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	base := f.create(t, "base")
	assert.False(t, base.Approved)

	app := f.create(t, "app", "base")
	assert.Equal(t, []string{"base"}, app.Dependencies)

	plan, err := f.service.Sorted(ctx, []string{"app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "app"}, responseNames(plan))

	_, err = f.service.Create(ctx, dto.CreateFeatureRequest{Name: "base"})
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))

	_, err = f.service.Update(ctx, "base", dto.UpdateFeatureRequest{Dependencies: []string{"app"}})
	require.True(t, errors.Is(err, apperrors.ErrRecursiveDependency))
	appErr, _ := apperrors.IsAppError(err)
	assert.Equal(t, []string{"app"}, appErr.Params["names"])

	err = f.service.Delete(ctx, "base")
	require.True(t, errors.Is(err, apperrors.ErrReferenced))
	appErr, _ = apperrors.IsAppError(err)
	assert.Equal(t, []string{"app"}, appErr.Params["names"])
	require.NoError(t, f.service.Delete(ctx, "app"))
	require.NoError(t, f.service.Delete(ctx, "base"))

	_, err = f.service.Create(ctx, dto.CreateFeatureRequest{Name: "x", Dependencies: []string{"nonexistent"}})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	_, err = f.service.Show(ctx, "x")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestFeatureService_RejectedMutationLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "base")

	_, err := f.service.Create(ctx, dto.CreateFeatureRequest{
		Name:         "x",
		Dependencies: []string{"base"},
		Tags:         []dto.TagRequest{{Name: "lang", Value: "go"}, {Name: " "}},
	})
	require.Error(t, err)

	all, err := f.service.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"base"}, responseNames(all))

	tags, err := NewTagService(memory.NewRepositoryFactory(f.store), tag.NewManager(), logger.NewNopLogger(), 0).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	assert.Len(t, f.events.events, 1, "only the successful create is announced")
}

func TestFeatureService_PlanCacheFlushedOnMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "base")
	f.create(t, "app", "base")

	_, err := f.service.Sorted(ctx, []string{"app"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.planCache.ItemCount())

	f.create(t, "runtime")
	assert.Equal(t, 0, f.planCache.ItemCount())

	_, err = f.service.Update(ctx, "app", dto.UpdateFeatureRequest{Dependencies: []string{"runtime", "base"}})
	require.NoError(t, err)

	plan, err := f.service.Sorted(ctx, []string{"app", "APP"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "runtime", "app"}, responseNames(plan))

	cached, err := f.service.Sorted(ctx, []string{"app"})
	require.NoError(t, err)
	assert.Equal(t, responseNames(plan), responseNames(cached))
}

func TestFeatureService_CachedPlanFollowsWritesOfOtherReplicas(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	writer := newReplica(t, store)
	reader := newReplica(t, store)

	writer.create(t, "base")
	writer.create(t, "app", "base")

	plan, err := reader.service.Sorted(ctx, []string{"app"})
	require.NoError(t, err)
	require.Equal(t, []string{"base", "app"}, responseNames(plan))
	require.Equal(t, 1, reader.planCache.ItemCount())

	_, err = writer.service.Update(ctx, "app", dto.UpdateFeatureRequest{Dependencies: []string{}})
	require.NoError(t, err)
	require.NoError(t, writer.service.Delete(ctx, "base"))

	plan, err = reader.service.Sorted(ctx, []string{"app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, responseNames(plan))

	_, err = reader.service.Sorted(ctx, []string{"base"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestFeatureService_SortedEmptyAndUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plan, err := f.service.Sorted(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, plan)

	_, err = f.service.Sorted(ctx, []string{"ghost"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, 0, f.planCache.ItemCount())
}

func TestFeatureService_ApproveAndPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, n := range []string{"c", "a", "b"} {
		f.create(t, n)
	}

	approved, err := f.service.Approve(ctx, "B")
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	page, err := f.service.ListPaged(ctx, dto.ListFeaturesPagedQuery{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Equal(t, []string{"a", "b"}, responseNames(page.Features))
	assert.True(t, page.Features[1].Approved)

	assert.Equal(t, recordedEvent{eventType: events.FeatureApproved, name: "b"}, f.events.events[3])
}

func TestFeatureService_ConcurrentCreatesKeepNamesUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Create(ctx, dto.CreateFeatureRequest{Name: "Shared"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrAlreadyExists):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, dupes)
}

func TestFeatureService_ConcurrentCrossDependenciesStayAcyclic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "a")
	f.create(t, "b")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.service.Update(ctx, "a", dto.UpdateFeatureRequest{Dependencies: []string{"b"}})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.service.Update(ctx, "b", dto.UpdateFeatureRequest{Dependencies: []string{"a"}})
	}()
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, apperrors.ErrRecursiveDependency))
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	_, err := f.service.Sorted(ctx, []string{"a", "b"})
	assert.NoError(t, err)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain error", errors.New("boom"), false},
		{"app error", apperrors.ErrFeatureNameEmpty(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}
