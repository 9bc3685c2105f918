// FILE: internal/mapper/tag_mapper.go
package mapper

import (
	"pazuzu-registry/internal/entity"
	"pazuzu-registry/internal/model"
)

type TagMapper struct{}

func NewTagMapper() *TagMapper {
	return &TagMapper{}
}

func (m *TagMapper) ToEntity(model *model.Tag) *entity.Tag {
	if model == nil {
		return nil
	}
	return &entity.Tag{
		Id:        model.Id,
		Name:      model.Name,
		Value:     model.Value,
		CreatedAt: model.CreatedAt,
	}
}

func (m *TagMapper) ToModel(entity *entity.Tag) *model.Tag {
	if entity == nil {
		return nil
	}
	return &model.Tag{
		Id:        entity.Id,
		Name:      entity.Name,
		Value:     entity.Value,
		CreatedAt: entity.CreatedAt,
	}
}

func (m *TagMapper) ToEntities(models []*model.Tag) []*entity.Tag {
	entities := make([]*entity.Tag, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

func (m *TagMapper) ToModels(entities []*entity.Tag) []*model.Tag {
	models := make([]*model.Tag, 0, len(entities))
	for _, e := range entities {
		models = append(models, m.ToModel(e))
	}
	return models
}
