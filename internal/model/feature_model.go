// FILE: internal/model/feature_model.go
// GORM models for the features table and its join tables
package model

import (
	"time"

	"github.com/google/uuid"
)

// Feature is a catalog entry. NameKey holds the lower-cased name so the unique
// index enforces case-insensitive uniqueness.
type Feature struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string     `gorm:"type:varchar(255);not null"`
	NameKey         string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	DockerData      string     `gorm:"type:text;not null;default:''"`
	TestInstruction *string    `gorm:"type:text"`
	Description     *string    `gorm:"type:text"`
	Approved        bool       `gorm:"default:false"`
	Dependencies    []*Feature `gorm:"many2many:feature_dependencies;joinForeignKey:FeatureId;joinReferences:DependencyId"`
	Tags            []*Tag     `gorm:"many2many:feature_tags;joinForeignKey:FeatureId;joinReferences:TagId"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Feature) TableName() string {
	return "features"
}

// FeatureDependency is the edge table. FeatureId depends on DependencyId.
// The RESTRICT constraint keeps a referenced feature from being deleted even
// if a caller skips the reference check.
type FeatureDependency struct {
	FeatureId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	DependencyId uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Feature      *Feature  `gorm:"foreignKey:FeatureId;constraint:OnDelete:CASCADE"`
	Dependency   *Feature  `gorm:"foreignKey:DependencyId;constraint:OnDelete:RESTRICT"`
}

func (FeatureDependency) TableName() string {
	return "feature_dependencies"
}

// FeatureTag links a feature to a tag.
type FeatureTag struct {
	FeatureId uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagId     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Feature   *Feature  `gorm:"foreignKey:FeatureId;constraint:OnDelete:CASCADE"`
	Tag       *Tag      `gorm:"foreignKey:TagId;constraint:OnDelete:CASCADE"`
}

func (FeatureTag) TableName() string {
	return "feature_tags"
}
