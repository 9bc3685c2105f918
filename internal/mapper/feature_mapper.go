// FILE: internal/mapper/feature_mapper.go
// Mapper for Feature entity <-> model conversion
package mapper

import (
	"sort"
	"strings"

	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/model"
)

type FeatureMapper struct {
	tagMapper *TagMapper
}

func NewFeatureMapper() *FeatureMapper {
	return &FeatureMapper{tagMapper: NewTagMapper()}
}

// ToEntity converts a model whose Dependencies and Tags were preloaded.
// Dependencies come out sorted by name so responses are stable.
func (m *FeatureMapper) ToEntity(model *model.Feature) *entity.Feature {
	if model == nil {
		return nil
	}
	deps := make([]entity.FeatureRef, 0, len(model.Dependencies))
	for _, d := range model.Dependencies {
		deps = append(deps, entity.FeatureRef{Id: d.Id, Name: d.Name})
	}
	SortRefs(deps)

	return &entity.Feature{
		Id:              model.Id,
		Name:            model.Name,
		DockerData:      model.DockerData,
		TestInstruction: model.TestInstruction,
		Description:     model.Description,
		Approved:        model.Approved,
		Dependencies:    deps,
		Tags:            m.tagMapper.ToEntities(model.Tags),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// ToModel converts the scalar columns only; associations are written by the
// repository as explicit join rows.
func (m *FeatureMapper) ToModel(entity *entity.Feature) *model.Feature {
	if entity == nil {
		return nil
	}
	return &model.Feature{
		Id:              entity.Id,
		Name:            entity.Name,
		NameKey:         strings.ToLower(entity.Name),
		DockerData:      entity.DockerData,
		TestInstruction: entity.TestInstruction,
		Description:     entity.Description,
		Approved:        entity.Approved,
		CreatedAt:       entity.CreatedAt,
		UpdatedAt:       entity.UpdatedAt,
	}
}

func (m *FeatureMapper) ToEntities(models []*model.Feature) []*entity.Feature {
	entities := make([]*entity.Feature, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

// SortRefs orders refs by lower-cased name.
func SortRefs(refs []entity.FeatureRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		return strings.ToLower(refs[i].Name) < strings.ToLower(refs[j].Name)
	})
}
