package mapper

import (
	"pazuzu-registry/internal/dto"
	"pazuzu-registry/internal/entity"
)

// FeatureToResponse converts entity to feature response DTO
func FeatureToResponse(f *entity.Feature) *dto.FeatureResponse {
	if f == nil {
		return nil
	}
	deps := make([]string, 0, len(f.Dependencies))
	for _, d := range f.Dependencies {
		deps = append(deps, d.Name)
	}
	return &dto.FeatureResponse{
		Id:              f.Id,
		Name:            f.Name,
		DockerData:      f.DockerData,
		TestInstruction: f.TestInstruction,
		Description:     f.Description,
		Approved:        f.Approved,
		Dependencies:    deps,
		Tags:            TagsToResponse(f.Tags),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// FeaturesToResponse keeps the input order; a nil input yields an empty slice.
func FeaturesToResponse(features []*entity.Feature) []*dto.FeatureResponse {
	res := make([]*dto.FeatureResponse, 0, len(features))
	for _, f := range features {
		res = append(res, FeatureToResponse(f))
	}
	return res
}

func TagToResponse(t *entity.Tag) *dto.TagResponse {
	if t == nil {
		return nil
	}
	return &dto.TagResponse{
		Id:    t.Id,
		Name:  t.Name,
		Value: t.Value,
	}
}

func TagsToResponse(tags []*entity.Tag) []*dto.TagResponse {
	res := make([]*dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		res = append(res, TagToResponse(t))
	}
	return res
}
