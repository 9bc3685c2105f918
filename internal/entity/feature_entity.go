// FILE: internal/entity/feature_entity.go
// Domain entity for catalog features
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Feature is a named, reusable fragment of build instructions.
// Dependencies are held by identity, so renaming a feature never breaks an edge.
type Feature struct {
	Id              uuid.UUID
	Name            string // Unique, compared case-insensitively
	DockerData      string
	TestInstruction *string
	Description     *string
	Approved        bool
	Dependencies    []FeatureRef
	Tags            []*Tag
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FeatureRef is a dependency edge target.
type FeatureRef struct {
	Id   uuid.UUID
	Name string
}

// DependencyIds returns the ids of the direct dependencies.
func (f *Feature) DependencyIds() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(f.Dependencies))
	for _, d := range f.Dependencies {
		ids = append(ids, d.Id)
	}
	return ids
}

// Ref returns the edge target pointing at f.
func (f *Feature) Ref() FeatureRef {
	return FeatureRef{Id: f.Id, Name: f.Name}
}

// NameKey is the normalized form used for uniqueness and lookups.
func NameKey(name string) string {
	return strings.ToLower(name)
}
