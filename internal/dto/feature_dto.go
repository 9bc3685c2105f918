// FILE: internal/dto/feature_dto.go
// DTOs for the feature catalog
package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateFeatureRequest adds a feature to the catalog. An empty name is
// rejected by the service with FEATURE_NAME_EMPTY rather than by the validator.
type CreateFeatureRequest struct {
	Name            string       `json:"name"`
	DockerData      *string      `json:"docker_data,omitempty"`
	TestInstruction *string      `json:"test_instruction,omitempty"`
	Description     *string      `json:"description,omitempty"`
	Dependencies    []string     `json:"dependencies,omitempty"`
	Tags            []TagRequest `json:"tags,omitempty" validate:"dive"`
}

// UpdateFeatureRequest changes an existing feature. Nil fields are left
// untouched; a non-nil Dependencies slice (even empty) replaces the whole set.
type UpdateFeatureRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	DockerData      *string  `json:"docker_data,omitempty"`
	TestInstruction *string  `json:"test_instruction,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Dependencies    []string `json:"dependencies"`
}

// FeatureResponse is the full view of a feature.
type FeatureResponse struct {
	Id              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	DockerData      string         `json:"docker_data"`
	TestInstruction *string        `json:"test_instruction,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Approved        bool           `json:"approved"`
	Dependencies    []string       `json:"dependencies"`
	Tags            []*TagResponse `json:"tags"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// FeaturesWithTotalCountResponse is one page of features plus the catalog size.
type FeaturesWithTotalCountResponse struct {
	Features   []*FeatureResponse `json:"features"`
	TotalCount int64              `json:"total_count"`
}

// ListFeaturesPagedQuery is bound from the query string.
type ListFeaturesPagedQuery struct {
	Offset int `query:"offset" validate:"min=0"`
	Limit  int `query:"limit" validate:"min=1,max=500"`
}

// FeatureChangedMessage travels on the in-process bus after a commit.
type FeatureChangedMessage struct {
	EventType string    `json:"event_type"`
	FeatureId uuid.UUID `json:"feature_id"`
	Name      string    `json:"name"`
}
