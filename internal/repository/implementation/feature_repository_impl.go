// FILE: internal/repository/implementation/feature_repository_impl.go
// GORM implementation of FeatureRepository
package implementation

import (
	"context"
	"errors"
	"strings"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/mapper"
	"pazuzu-registry/internal/model"
	"pazuzu-registry/internal/repository/contract"
	"pazuzu-registry/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeatureRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeatureMapper
}

func NewFeatureRepository(db *gorm.DB) contract.FeatureRepository {
	return &FeatureRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeatureMapper(),
	}
}

func (r *FeatureRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FeatureRepositoryImpl) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Dependencies").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC, value ASC")
		})
}

func (r *FeatureRepositoryImpl) Create(ctx context.Context, feature *entity.Feature) error {
	m := r.mapper.ToModel(feature)
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	if err := r.insertDependencies(ctx, m.Id, feature.DependencyIds()); err != nil {
		return err
	}
	if err := r.insertTags(ctx, m.Id, feature.Tags); err != nil {
		return err
	}
	if err := r.bumpRevision(ctx); err != nil {
		return err
	}
	feature.Id = m.Id
	feature.CreatedAt = m.CreatedAt
	feature.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *FeatureRepositoryImpl) Update(ctx context.Context, feature *entity.Feature) error {
	m := r.mapper.ToModel(feature)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("feature_id = ?", m.Id).
		Delete(&model.FeatureDependency{}).Error; err != nil {
		return err
	}
	if err := r.insertDependencies(ctx, m.Id, feature.DependencyIds()); err != nil {
		return err
	}
	if err := r.bumpRevision(ctx); err != nil {
		return err
	}
	feature.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *FeatureRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("feature_id = ?", id).Delete(&model.FeatureDependency{}).Error; err != nil {
		return err
	}
	if err := db.Where("feature_id = ?", id).Delete(&model.FeatureTag{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&model.Feature{}, id).Error; err != nil {
		return err
	}
	return r.bumpRevision(ctx)
}

func (r *FeatureRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error) {
	var m model.Feature
	query := r.applySpecifications(r.preloaded(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeatureRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error) {
	var models []*model.Feature
	query := r.applySpecifications(r.preloaded(ctx), specs...).Order("name_key ASC")
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FeatureRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.Feature, error) {
	var m model.Feature
	if err := r.preloaded(ctx).Where("name_key = ?", strings.ToLower(name)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeatureRepositoryImpl) FindAllReferencing(ctx context.Context, id uuid.UUID) ([]*entity.Feature, error) {
	var models []*model.Feature
	referencing := r.db.WithContext(ctx).
		Model(&model.FeatureDependency{}).
		Select("feature_id").
		Where("dependency_id = ?", id)
	if err := r.preloaded(ctx).
		Where("id IN (?)", referencing).
		Order("name_key ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FeatureRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Feature{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FeatureRepositoryImpl) Revision(ctx context.Context) (int64, error) {
	var rev model.CatalogRevision
	if err := r.db.WithContext(ctx).
		Where("id = ?", model.CatalogRevisionId).
		Limit(1).
		Find(&rev).Error; err != nil {
		return 0, err
	}
	return rev.Revision, nil
}

// bumpRevision creates the revision row on first use.
func (r *FeatureRepositoryImpl) bumpRevision(ctx context.Context) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"revision":   gorm.Expr("catalog_revisions.revision + 1"),
			"updated_at": gorm.Expr("now()"),
		}),
	}).Create(&model.CatalogRevision{Id: model.CatalogRevisionId, Revision: 1}).Error
}

func (r *FeatureRepositoryImpl) insertDependencies(ctx context.Context, featureId uuid.UUID, dependencyIds []uuid.UUID) error {
	if len(dependencyIds) == 0 {
		return nil
	}
	rows := make([]model.FeatureDependency, 0, len(dependencyIds))
	for _, depId := range dependencyIds {
		rows = append(rows, model.FeatureDependency{FeatureId: featureId, DependencyId: depId})
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error
}

func (r *FeatureRepositoryImpl) insertTags(ctx context.Context, featureId uuid.UUID, tags []*entity.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]model.FeatureTag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, model.FeatureTag{FeatureId: featureId, TagId: tag.Id})
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error
}
