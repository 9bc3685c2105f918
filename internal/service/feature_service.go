package service

import (
	"context"
	"encoding/json"

	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/memory"
	"pazuzu-registry/internal/repository/unitofwork"
	catalogEvents "pazuzu-registry/pkg/catalog/events"
	"pazuzu-registry/pkg/catalog/feature"
	"pazuzu-registry/pkg/catalog/mapper"
	"pazuzu-registry/pkg/events"
)

type IFeatureService interface {
	List(ctx context.Context, name string) ([]*dto.FeatureResponse, error)
	ListPaged(ctx context.Context, query dto.ListFeaturesPagedQuery) (*dto.FeaturesWithTotalCountResponse, error)
	Show(ctx context.Context, name string) (*dto.FeatureResponse, error)
	Create(ctx context.Context, req dto.CreateFeatureRequest) (*dto.FeatureResponse, error)
	Update(ctx context.Context, name string, req dto.UpdateFeatureRequest) (*dto.FeatureResponse, error)
	Approve(ctx context.Context, name string) (*dto.FeatureResponse, error)
	Delete(ctx context.Context, name string) error
	// Sorted returns the named features and everything they depend on,
	// dependencies first.
	Sorted(ctx context.Context, names []string) ([]*dto.FeatureResponse, error)
}

type featureService struct {
	tx               *transactor
	featureManager   *feature.Manager
	planCache        *memory.PlanCache
	publisherService IPublisherService
	eventPublisher   catalogEvents.Publisher
	logger           logger.ILogger
}

func NewFeatureService(
	uowFactory unitofwork.RepositoryFactory,
	featureManager *feature.Manager,
	planCache *memory.PlanCache,
	publisherService IPublisherService,
	eventPublisher catalogEvents.Publisher,
	logger logger.ILogger,
	maxRetries int,
) IFeatureService {
	return &featureService{
		tx: &transactor{
			uowFactory: uowFactory,
			maxRetries: maxRetries,
			logger:     logger,
		},
		featureManager:   featureManager,
		planCache:        planCache,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (s *featureService) List(ctx context.Context, name string) ([]*dto.FeatureResponse, error) {
	var features []*entity.Feature
	err := s.tx.read(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		features, err = s.featureManager.List(ctx, uow, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapper.FeaturesToResponse(features), nil
}

func (s *featureService) ListPaged(ctx context.Context, query dto.ListFeaturesPagedQuery) (*dto.FeaturesWithTotalCountResponse, error) {
	var (
		features []*entity.Feature
		total    int64
	)
	err := s.tx.read(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		features, total, err = s.featureManager.Page(ctx, uow, query.Offset, query.Limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.FeaturesWithTotalCountResponse{
		Features:   mapper.FeaturesToResponse(features),
		TotalCount: total,
	}, nil
}

func (s *featureService) Show(ctx context.Context, name string) (*dto.FeatureResponse, error) {
	var f *entity.Feature
	err := s.tx.read(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		f, err = s.featureManager.Get(ctx, uow, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mapper.FeatureToResponse(f), nil
}

func (s *featureService) Create(ctx context.Context, req dto.CreateFeatureRequest) (*dto.FeatureResponse, error) {
	var f *entity.Feature
	err := s.tx.write(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		f, err = s.featureManager.Create(ctx, uow, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("FEATURE", "Feature created", map[string]interface{}{"name": f.Name, "id": f.Id})
	s.notifyChanged(ctx, events.FeatureCreated, f)
	s.eventPublisher.PublishFeatureCreated(ctx, f)
	return mapper.FeatureToResponse(f), nil
}

func (s *featureService) Update(ctx context.Context, name string, req dto.UpdateFeatureRequest) (*dto.FeatureResponse, error) {
	var f *entity.Feature
	err := s.tx.write(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		f, err = s.featureManager.Update(ctx, uow, name, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("FEATURE", "Feature updated", map[string]interface{}{"name": f.Name, "previous_name": name})
	s.notifyChanged(ctx, events.FeatureUpdated, f)
	s.eventPublisher.PublishFeatureUpdated(ctx, f, name)
	return mapper.FeatureToResponse(f), nil
}

func (s *featureService) Approve(ctx context.Context, name string) (*dto.FeatureResponse, error) {
	var f *entity.Feature
	err := s.tx.write(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		f, err = s.featureManager.Approve(ctx, uow, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("FEATURE", "Feature approved", map[string]interface{}{"name": f.Name})
	s.notifyChanged(ctx, events.FeatureApproved, f)
	s.eventPublisher.PublishFeatureApproved(ctx, f)
	return mapper.FeatureToResponse(f), nil
}

func (s *featureService) Delete(ctx context.Context, name string) error {
	var f *entity.Feature
	err := s.tx.write(ctx, func(uow unitofwork.UnitOfWork) error {
		var err error
		f, err = s.featureManager.Delete(ctx, uow, name)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("FEATURE", "Feature deleted", map[string]interface{}{"name": f.Name})
	s.notifyChanged(ctx, events.FeatureDeleted, f)
	s.eventPublisher.PublishFeatureDeleted(ctx, f)
	return nil
}

func (s *featureService) Sorted(ctx context.Context, names []string) ([]*dto.FeatureResponse, error) {
	key := memory.PlanKey(names)
	if key == "" {
		return []*dto.FeatureResponse{}, nil
	}

	// The revision and the plan come from the same snapshot, so a cached plan
	// is served only if no write was committed since it was computed.
	var plan []*entity.Feature
	err := s.tx.read(ctx, func(uow unitofwork.UnitOfWork) error {
		revision, err := s.featureManager.Revision(ctx, uow)
		if err != nil {
			return err
		}
		if cached, ok := s.planCache.Get(key, revision); ok {
			plan = cached
			return nil
		}

		plan, err = s.featureManager.Linearize(ctx, uow, names)
		if err != nil {
			return err
		}
		s.planCache.Save(key, revision, plan)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapper.FeaturesToResponse(plan), nil
}

// notifyChanged runs after commit. The plan cache consumer drops plans of
// the old revision; Sorted would skip them anyway.
func (s *featureService) notifyChanged(ctx context.Context, eventType string, f *entity.Feature) {
	payload, err := json.Marshal(dto.FeatureChangedMessage{
		EventType: eventType,
		FeatureId: f.Id,
		Name:      f.Name,
	})
	if err == nil {
		err = s.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Error("FEATURE", "Failed to publish feature change, flushing plan cache directly", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
		s.planCache.Flush()
	}
}
