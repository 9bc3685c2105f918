// FILE: internal/model/tag_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tags_name_value"`
	Value     string    `gorm:"type:varchar(255);not null;default:'';uniqueIndex:idx_tags_name_value"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Tag) TableName() string {
	return "tags"
}
